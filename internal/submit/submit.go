// Package submit runs a finished result through validation and, for signed-in
// players, a single idempotent write.
package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verte-zerg/typeforge/internal/anticheat"
	"github.com/verte-zerg/typeforge/internal/model"
)

const (
	GuestMessage      = "Guest result validated but not saved. Sign up or use demo login to save history."
	SaveFailedMessage = "Result validated but not saved. Submit again to retry."
)

// Sink persists accepted results. Saving the same result ID twice must store
// it once and return the stored row.
type Sink interface {
	SaveResult(ctx context.Context, r model.Result) (model.Result, error)
}

// Notifier is told about every stored result.
type Notifier interface {
	ResultSaved(r model.Result)
}

// Outcome reports what happened to a submission. Accepted and Saved are
// independent: a guest result can be accepted without being saved.
type Outcome struct {
	Accepted bool
	Saved    bool
	Rule     anticheat.Rule
	Reason   string
	Message  string
	Record   *model.Result
	// SaveErr is set when an accepted result could not be stored.
	SaveErr error
}

// Service validates and stores results.
type Service struct {
	policy   anticheat.Policy
	sink     Sink
	notifier Notifier
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier registers a listener for stored results.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service applying policy and writing to sink.
func NewService(policy anticheat.Policy, sink Sink, opts ...Option) *Service {
	s := &Service{policy: policy, sink: sink, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the thresholds in force.
func (s *Service) Policy() anticheat.Policy {
	return s.policy
}

// Submit validates p and stores it when identity is non-nil. The returned error
// is non-nil only for schema violations (anticheat.ErrInvalidPayload).
//
// The write is detached from ctx cancellation: a session that already finished
// is stored even if the caller goes away mid-request.
func (s *Service) Submit(ctx context.Context, identity *model.Identity, p model.ResultPayload) (Outcome, error) {
	if err := anticheat.CheckSchema(p); err != nil {
		return Outcome{}, err
	}
	verdict := s.policy.Validate(p)
	if !verdict.Accepted {
		return Outcome{Rule: verdict.Rule, Reason: verdict.Reason}, nil
	}
	if identity == nil || identity.UserID == "" {
		return Outcome{Accepted: true, Message: GuestMessage}, nil
	}

	rec := model.ResultFromPayload(p)
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	rec.UserID = identity.UserID
	rec.DisplayName = identity.DisplayName()
	rec.CreatedAt = s.now().UTC()

	stored, err := s.sink.SaveResult(context.WithoutCancel(ctx), rec)
	if err != nil {
		return Outcome{
			Accepted: true,
			Message:  SaveFailedMessage,
			SaveErr:  fmt.Errorf("save result %s: %w", rec.ID, err),
		}, nil
	}
	if s.notifier != nil {
		s.notifier.ResultSaved(stored)
	}
	return Outcome{Accepted: true, Saved: true, Record: &stored}, nil
}
