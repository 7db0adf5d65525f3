// Package poller drives a create-then-poll lifecycle of an asynchronous vendor job
package poller

import (
	"context"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/wb-go/wbf/retry"
)

// DefaultStrategy - 60 попыток с паузой 5 секунд, без backoff
var DefaultStrategy = retry.Strategy{
	Attempts: 60,
	Delay:    5 * time.Second,
	Backoff:  1,
}

// Status is one classified poll response.
type Status struct {
	Status       model.JobStatus
	AssetURL     string
	ThumbnailURL string
}

// StatusFetcher - один запрос статуса задачи у вендора
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*Status, error)
}

// Outcome is the terminal state of one Run.
type Outcome struct {
	State        model.JobState
	Job          model.JobHandle
	AssetURL     string
	ThumbnailURL string
	LastErr      error
}

// Transition is reported on every state change.
type Transition func(from, to model.JobState, job model.JobHandle)

type Poller struct {
	strategy   retry.Strategy
	wait       func(ctx context.Context, d time.Duration) error
	transition Transition
}

type Option func(*Poller)

// WithWait replaces the timed wait, tests use it to skip real sleeping.
func WithWait(wait func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) { p.wait = wait }
}

func WithTransition(fn Transition) Option {
	return func(p *Poller) { p.transition = fn }
}

func New(strategy retry.Strategy, opts ...Option) *Poller {
	if strategy.Attempts <= 0 {
		strategy.Attempts = DefaultStrategy.Attempts
	}
	if strategy.Delay < 0 {
		strategy.Delay = 0
	}

	p := &Poller{strategy: strategy, wait: sleep}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts in CREATED and stops at SUCCEEDED, FAILED or EXHAUSTED.
// Every attempt waits the fixed delay first, fetch errors only consume an attempt.
// A cancelled ctx interrupts the wait and ends the run as EXHAUSTED so the job id is still returned.
func (p *Poller) Run(ctx context.Context, fetcher StatusFetcher, jobID string) Outcome {
	out := Outcome{State: model.StateCreated, Job: model.JobHandle{ID: jobID}}
	p.move(&out, model.StatePolling)

	for out.Job.Attempts < p.strategy.Attempts {
		if err := p.wait(ctx, p.strategy.Delay); err != nil {
			out.LastErr = err
			break
		}

		out.Job.Attempts++
		st, err := fetcher.JobStatus(ctx, jobID)
		if err != nil {
			out.LastErr = err
			continue
		}

		switch st.Status {
		case model.JobSucceeded:
			out.AssetURL = st.AssetURL
			out.ThumbnailURL = st.ThumbnailURL
			p.move(&out, model.StateSucceeded)
			return out
		case model.JobFailed:
			p.move(&out, model.StateFailed)
			return out
		}
	}

	p.move(&out, model.StateExhausted)
	return out
}

func (p *Poller) move(out *Outcome, to model.JobState) {
	from := out.State
	out.State = to
	if p.transition != nil {
		p.transition(from, to, out.Job)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
