package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

type AccountsCSV struct {
	path string
}

var _ ports.AccountSource = (*AccountsCSV)(nil)

func NewAccountsCSV(path string) *AccountsCSV {
	return &AccountsCSV{path: path}
}

// LoadAccounts reads a CSV with header username,password[,proxy]. Rows with
// an empty username are skipped.
func (s *AccountsCSV) LoadAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := readCSV(ctx, s.path, []string{"username", "password"}, []string{"proxy"})
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		account := domain.Account{
			Username: strings.TrimSpace(row["username"]),
			Password: row["password"],
			Proxy:    strings.TrimSpace(row["proxy"]),
		}
		if account.Username == "" {
			continue
		}
		if err := account.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.path, err)
		}
		accounts = append(accounts, account)
	}

	return accounts, nil
}

type TargetsCSV struct {
	path string
}

var _ ports.TargetSource = (*TargetsCSV)(nil)

func NewTargetsCSV(path string) *TargetsCSV {
	return &TargetsCSV{path: path}
}

// LoadTargets reads a CSV with header username,action. Actions are kept raw;
// unknown ones are skipped at run time.
func (s *TargetsCSV) LoadTargets(ctx context.Context) ([]domain.TargetRecord, error) {
	rows, err := readCSV(ctx, s.path, []string{"username", "action"}, nil)
	if err != nil {
		return nil, err
	}

	targets := make([]domain.TargetRecord, 0, len(rows))
	for _, row := range rows {
		targets = append(targets, domain.TargetRecord{Identity: row["username"], Action: row["action"]})
	}

	return targets, nil
}

type TargetsYAML struct {
	path string
}

var _ ports.TargetSource = (*TargetsYAML)(nil)

func NewTargetsYAML(path string) *TargetsYAML {
	return &TargetsYAML{path: path}
}

type yamlTarget struct {
	Username string `yaml:"username"`
	Action   string `yaml:"action"`
}

type yamlTargetsDocument struct {
	Targets []yamlTarget `yaml:"targets"`
}

// LoadTargets accepts either a top-level list or a document with a targets
// key.
func (s *TargetsYAML) LoadTargets(ctx context.Context) ([]domain.TargetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read targets %s: %w", s.path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode targets %s: %w", s.path, err)
	}
	if len(node.Content) == 0 {
		return []domain.TargetRecord{}, nil
	}

	var items []yamlTarget
	switch node.Content[0].Kind {
	case yaml.SequenceNode:
		err = node.Content[0].Decode(&items)
	case yaml.MappingNode:
		var doc yamlTargetsDocument
		err = node.Content[0].Decode(&doc)
		items = doc.Targets
	default:
		err = fmt.Errorf("expected a list of targets")
	}
	if err != nil {
		return nil, fmt.Errorf("decode targets %s: %w", s.path, err)
	}

	targets := make([]domain.TargetRecord, 0, len(items))
	for _, item := range items {
		targets = append(targets, domain.TargetRecord{Identity: item.Username, Action: item.Action})
	}

	return targets, nil
}

// TargetsFor picks a target loader from the file extension.
func TargetsFor(path string) (ports.TargetSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewTargetsCSV(path), nil
	case ".yaml", ".yml":
		return NewTargetsYAML(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readCSV(ctx context.Context, path string, required, optional []string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%s: missing column %q", path, name)
		}
	}

	wanted := append(append([]string{}, required...), optional...)
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if blankRecord(record) {
			continue
		}

		row := make(map[string]string, len(wanted))
		for _, name := range wanted {
			if i, ok := columns[name]; ok && i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func blankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
