package domain

import "time"

type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusFailure OutcomeStatus = "failure"
)

type ActionOutcome struct {
	Target    string
	Action    ActionKind
	Timestamp time.Time
	Status    OutcomeStatus
}

func NewActionOutcome(target Target, status OutcomeStatus, at time.Time) ActionOutcome {
	return ActionOutcome{
		Target:    target.Identity,
		Action:    target.Action,
		Timestamp: at,
		Status:    status,
	}
}

// Ledger is the append-only outcome record of one session. Each partition
// keeps processing order.
type Ledger struct {
	Success []ActionOutcome
	Failure []ActionOutcome
}

func NewLedger() Ledger {
	return Ledger{
		Success: []ActionOutcome{},
		Failure: []ActionOutcome{},
	}
}

func (l *Ledger) Append(outcome ActionOutcome) {
	if outcome.Status == StatusSuccess {
		l.Success = append(l.Success, outcome)
		return
	}
	l.Failure = append(l.Failure, outcome)
}

func (l Ledger) Len() int {
	return len(l.Success) + len(l.Failure)
}

func (l Ledger) Empty() bool {
	return l.Len() == 0
}

// Partitions returns the ledger keyed by status, in a fixed order.
func (l Ledger) Partitions() []LedgerPartition {
	return []LedgerPartition{
		{Status: StatusSuccess, Outcomes: l.Success},
		{Status: StatusFailure, Outcomes: l.Failure},
	}
}

type LedgerPartition struct {
	Status   OutcomeStatus
	Outcomes []ActionOutcome
}
