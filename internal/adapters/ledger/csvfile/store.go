package csvfile

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/instaflow/internal/adapters/fsatomic"
	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
)

const (
	artifactFileMode  = 0o600
	artifactTimestamp = "20060102_150405"
)

var header = []string{"target", "action", "timestamp", "status"}

// Store writes one CSV artifact per non-empty ledger partition.
type Store struct {
	dir   string
	clock ports.Clock
}

var _ ports.LedgerStore = (*Store)(nil)

func NewStore(dir string, clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Store{dir: filepath.Clean(dir), clock: clock}
}

func (s *Store) Save(ctx context.Context, sessionID string, ledger domain.Ledger) ([]string, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is empty")
	}

	stamp := s.clock.Now().Format(artifactTimestamp)
	var written []string
	for _, partition := range ledger.Partitions() {
		if len(partition.Outcomes) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}

		data, err := encode(partition.Outcomes)
		if err != nil {
			return written, fmt.Errorf("encode %s ledger: %w", partition.Status, err)
		}

		path := filepath.Join(s.dir, fmt.Sprintf("%s_%s_%s.csv", partition.Status, sessionID, stamp))
		if err := fsatomic.WriteFile(path, data, artifactFileMode); err != nil {
			return written, fmt.Errorf("write %s ledger: %w", partition.Status, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func encode(outcomes []domain.ActionOutcome) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, o := range outcomes {
		if err := w.Write([]string{o.Target, string(o.Action), o.Timestamp.Format(time.RFC3339), string(o.Status)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
