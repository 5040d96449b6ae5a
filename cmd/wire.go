package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/instaflow/internal/adapters/browser/chrome"
	"github.com/bnema/instaflow/internal/adapters/proxy/httpcheck"
	"github.com/bnema/instaflow/internal/adapters/render/summary"
	tomlrepo "github.com/bnema/instaflow/internal/adapters/repo/toml"
	"github.com/bnema/instaflow/internal/adapters/secrets/chain"
	filestore "github.com/bnema/instaflow/internal/adapters/secrets/file"
	passstore "github.com/bnema/instaflow/internal/adapters/secrets/pass"
	"github.com/bnema/instaflow/internal/application"
	"github.com/bnema/instaflow/internal/config"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const secretsDirName = "secrets"

type app struct {
	cfg      config.Config
	repo     *tomlrepo.Repository
	accounts *application.AccountService
	verbose  bool

	newDrivers   func(config.Config, *zap.Logger) ports.DriverFactory
	newValidator func(config.Config, *zap.Logger) ports.ProxyValidator
	render       func(application.BatchReport, summary.RenderOptions) (string, error)
	now          func() time.Time
}

func wireApp() (*app, error) {
	v := viper.New()
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	repo, err := tomlrepo.NewRepository(v)
	if err != nil {
		return nil, err
	}

	secrets, err := newSecretStore(cfg.SecretsBackend)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:          cfg,
		repo:         repo,
		accounts:     application.NewAccountService(repo, secrets),
		newDrivers:   newChromeFactory,
		newValidator: newHTTPValidator,
		render:       summary.Render,
		now:          time.Now,
	}, nil
}

func newSecretStore(backend string) (ports.SecretStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	fileRoot := filepath.Join(homeDir, config.ConfigDir, secretsDirName)

	switch backend {
	case config.SecretsFile:
		return filestore.NewStore(fileRoot), nil
	case config.SecretsPass:
		return passstore.NewStore(), nil
	default:
		return chain.NewPassFirstWithFileFallback(fileRoot, nil)
	}
}

func newChromeFactory(cfg config.Config, logger *zap.Logger) ports.DriverFactory {
	return chrome.NewFactory(chrome.Options{
		Headless:   cfg.Headless,
		Timeout:    cfg.Timeout,
		LoginURL:   cfg.LoginURL,
		ProfileURL: cfg.ProfileURL,
		ExecPath:   cfg.ChromePath,
	}, logger)
}

func newHTTPValidator(cfg config.Config, logger *zap.Logger) ports.ProxyValidator {
	return httpcheck.New(cfg.ProxyTestURL, cfg.ProxyTestTimeout, logger)
}
