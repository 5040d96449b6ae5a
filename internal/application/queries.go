package application

import (
	"time"
)

// SessionReport summarizes one finished (or aborted) session.
type SessionReport struct {
	SessionID string
	Account   string
	StartedAt time.Time
	Succeeded int
	Failed    int
	Artifacts []string
	Err       error
}

func (r SessionReport) Total() int {
	return r.Succeeded + r.Failed
}

type BatchReport struct {
	RunID    string
	Sessions []SessionReport
}

func (r BatchReport) Totals() (succeeded, failed int) {
	for _, session := range r.Sessions {
		succeeded += session.Succeeded
		failed += session.Failed
	}
	return succeeded, failed
}

func (r BatchReport) Errored() int {
	n := 0
	for _, session := range r.Sessions {
		if session.Err != nil {
			n++
		}
	}
	return n
}
