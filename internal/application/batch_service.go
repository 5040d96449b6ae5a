package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const sessionIDLayout = "20060102_150405"

type SessionRunnerAPI interface {
	Run(ctx context.Context, req SessionRequest) (domain.Ledger, error)
}

type CredentialResolver interface {
	ResolveCredentials(ctx context.Context, account domain.Account) (domain.Credentials, error)
}

type BatchService struct {
	runner      SessionRunnerAPI
	credentials CredentialResolver
	ledgers     ports.LedgerStore
	clock       ports.Clock
	logger      *zap.Logger
	newRunID    func() string
}

func NewBatchService(runner SessionRunnerAPI, credentials CredentialResolver, ledgers ports.LedgerStore, clock ports.Clock, logger *zap.Logger) *BatchService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BatchService{
		runner:      runner,
		credentials: credentials,
		ledgers:     ledgers,
		clock:       clock,
		logger:      logger,
		newRunID:    uuid.NewString,
	}
}

func SessionID(username string, startedAt time.Time) string {
	return fmt.Sprintf("%s_%s", username, startedAt.Format(sessionIDLayout))
}

// Run executes one session per account. A failing session never aborts its
// siblings; its error is carried in the report. Once ctx is cancelled no new
// session starts and the returned error is ctx.Err().
func (s *BatchService) Run(ctx context.Context, cmd RunBatchCommand) (BatchReport, error) {
	report := BatchReport{RunID: s.newRunID()}
	log := s.logger.With(zap.String("run_id", report.RunID))
	log.Info("batch started",
		zap.Int("accounts", len(cmd.Accounts)),
		zap.Int("targets", len(cmd.Targets)),
		zap.Int("parallel", max(cmd.Parallel, 1)),
	)

	results := make([]*SessionReport, len(cmd.Accounts))

	var group errgroup.Group
	group.SetLimit(max(cmd.Parallel, 1))

	for i, account := range cmd.Accounts {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			result := s.runSession(ctx, log, account, cmd.Targets)
			results[i] = &result
			return nil
		})
	}
	_ = group.Wait()

	for _, result := range results {
		if result != nil {
			report.Sessions = append(report.Sessions, *result)
		}
	}

	succeeded, failed := report.Totals()
	log.Info("batch finished",
		zap.Int("sessions", len(report.Sessions)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)

	return report, ctx.Err()
}

func (s *BatchService) runSession(ctx context.Context, log *zap.Logger, account domain.Account, targets []domain.TargetRecord) SessionReport {
	startedAt := s.clock.Now()
	result := SessionReport{
		SessionID: SessionID(account.Username, startedAt),
		Account:   account.Username,
		StartedAt: startedAt,
	}
	log = log.With(zap.String("session", result.SessionID))

	creds, err := s.credentials.ResolveCredentials(ctx, account)
	if err != nil {
		log.Error("resolve credentials", zap.Error(err))
		result.Err = err
		return result
	}

	ledger, runErr := s.runner.Run(ctx, SessionRequest{
		SessionID:   result.SessionID,
		Credentials: creds,
		Proxy:       account.Proxy,
		Targets:     targets,
	})
	result.Succeeded = len(ledger.Success)
	result.Failed = len(ledger.Failure)
	result.Err = runErr

	// Partial ledgers of cancelled sessions are persisted too.
	artifacts, err := s.ledgers.Save(context.WithoutCancel(ctx), result.SessionID, ledger)
	if err != nil {
		log.Error("persist ledger", zap.Error(err))
		if result.Err == nil {
			result.Err = fmt.Errorf("persist ledger: %w", err)
		}
	}
	result.Artifacts = artifacts

	log.Info("session finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Strings("artifacts", artifacts),
	)

	return result
}
