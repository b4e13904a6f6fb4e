package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"faultwatch/internal/models"
	"faultwatch/internal/report"
)

// ErrNotConfigured marks a notification skipped because sender, credential
// or recipients were not resolved. It is a warning, never a crash: the
// pipeline continues to completion without sending.
var ErrNotConfigured = errors.New("notification not configured")

// SessionState is the one piece of state shared across pipeline runs
// within a session. It starts false, flips to true after the first
// successful dispatch, and is never reset for the session's lifetime even
// if the underlying data changes. The mutex serializes dispatches racing
// in from parallel requests of the same session.
type SessionState struct {
	mu       sync.Mutex
	notified bool
}

// Notified reports whether the session's report has already been sent.
func (s *SessionState) Notified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notified
}

// Dispatcher renders and emails the report, guaranteeing at most one send
// per session no matter how often the pipeline re-executes.
type Dispatcher struct {
	mailer     Mailer
	recipients []string
}

func NewDispatcher(mailer Mailer, recipients []string) *Dispatcher {
	return &Dispatcher{mailer: mailer, recipients: recipients}
}

// Configured reports whether a send could be attempted at all.
func (d *Dispatcher) Configured() bool {
	return d.mailer != nil && len(d.recipients) > 0
}

// Dispatch attempts one report delivery for the session.
//
// Already-sent sessions are a no-op. Missing configuration returns
// ErrNotConfigured without an attempt. On transport failure the state
// stays false so a later pipeline re-execution can retry; there is no
// internal retry loop. Returns true only when a send actually happened.
func (d *Dispatcher) Dispatch(ctx context.Context, records []models.PredictionRecord, state *SessionState) (bool, error) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.notified {
		return false, nil
	}
	if !d.Configured() {
		return false, ErrNotConfigured
	}

	body := report.RenderBody(records)
	if err := d.mailer.Send(ctx, report.Subject, body, d.recipients); err != nil {
		return false, fmt.Errorf("dispatch report: %w", err)
	}

	state.notified = true
	log.Printf("report dispatched to %d recipients", len(d.recipients))
	return true, nil
}
