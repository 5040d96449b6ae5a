package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyActionLimit      = "action_limit_per_session"
	KeyMinDelay         = "min_delay"
	KeyMaxDelay         = "max_delay"
	KeyMaxRetries       = "max_retries"
	KeyTimeout          = "timeout"
	KeyProxyTestURL     = "proxy_test_url"
	KeyProxyTestTimeout = "proxy_test_timeout"
	KeyLogDir           = "log_dir"
	KeyHeadless         = "headless"
	KeyLoginURL         = "login_url"
	KeyProfileURL       = "profile_url"
	KeyChromePath       = "chrome_path"
	KeySecretsBackend   = "secrets_backend"

	configName = "config"
	configType = "toml"
	ConfigDir  = ".instaflow"
)

// Config holds the tunables of a run. Durations in the config file and the
// environment are whole seconds.
type Config struct {
	ActionLimit      int
	MinDelay         time.Duration
	MaxDelay         time.Duration
	MaxRetries       int
	Timeout          time.Duration
	ProxyTestURL     string
	ProxyTestTimeout time.Duration
	LogDir           string
	Headless         bool
	LoginURL         string
	ProfileURL       string
	ChromePath       string
	SecretsBackend   string
}

const (
	SecretsAuto = "auto"
	SecretsFile = "file"
	SecretsPass = "pass"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyActionLimit, 100)
	v.SetDefault(KeyMinDelay, 4)
	v.SetDefault(KeyMaxDelay, 9)
	v.SetDefault(KeyMaxRetries, 3)
	v.SetDefault(KeyTimeout, 15)
	v.SetDefault(KeyProxyTestURL, "http://httpbin.org/ip")
	v.SetDefault(KeyProxyTestTimeout, 10)
	v.SetDefault(KeyLogDir, "logs")
	v.SetDefault(KeyHeadless, false)
	v.SetDefault(KeyLoginURL, "https://www.instagram.com/accounts/login/")
	v.SetDefault(KeyProfileURL, "https://www.instagram.com/%s/")
	v.SetDefault(KeyChromePath, "")
	v.SetDefault(KeySecretsBackend, SecretsAuto)
}

// Load reads ~/.instaflow/config.toml when present, then lets unprefixed
// environment variables (ACTION_LIMIT_PER_SESSION, MIN_DELAY, ...) override
// it.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ConfigDir))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Config{
		ActionLimit:      v.GetInt(KeyActionLimit),
		MinDelay:         seconds(v.GetFloat64(KeyMinDelay)),
		MaxDelay:         seconds(v.GetFloat64(KeyMaxDelay)),
		MaxRetries:       v.GetInt(KeyMaxRetries),
		Timeout:          seconds(v.GetFloat64(KeyTimeout)),
		ProxyTestURL:     strings.TrimSpace(v.GetString(KeyProxyTestURL)),
		ProxyTestTimeout: seconds(v.GetFloat64(KeyProxyTestTimeout)),
		LogDir:           strings.TrimSpace(v.GetString(KeyLogDir)),
		Headless:         v.GetBool(KeyHeadless),
		LoginURL:         strings.TrimSpace(v.GetString(KeyLoginURL)),
		ProfileURL:       strings.TrimSpace(v.GetString(KeyProfileURL)),
		ChromePath:       strings.TrimSpace(v.GetString(KeyChromePath)),
		SecretsBackend:   strings.ToLower(strings.TrimSpace(v.GetString(KeySecretsBackend))),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ActionLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", strings.ToUpper(KeyActionLimit), c.ActionLimit))
	}
	if c.MinDelay < 0 || c.MaxDelay < 0 {
		errs = append(errs, fmt.Errorf("delays must not be negative"))
	}
	if c.MinDelay > c.MaxDelay {
		errs = append(errs, fmt.Errorf("MIN_DELAY %s exceeds MAX_DELAY %s", c.MinDelay, c.MaxDelay))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.MaxRetries))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("TIMEOUT must be positive"))
	}
	if c.ProxyTestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PROXY_TEST_TIMEOUT must be positive"))
	}
	if c.LogDir == "" {
		errs = append(errs, fmt.Errorf("LOG_DIR is empty"))
	}
	if !strings.Contains(c.ProfileURL, "%s") {
		errs = append(errs, fmt.Errorf("PROFILE_URL must contain a %%s placeholder"))
	}

	switch c.SecretsBackend {
	case SecretsAuto, SecretsFile, SecretsPass:
	default:
		errs = append(errs, fmt.Errorf("SECRETS_BACKEND must be one of auto, file, pass, got %q", c.SecretsBackend))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
