// Package form models the activity submission flow: collect fields, validate,
// submit, then reset on success or preserve everything for a retry on failure.
package form

import (
	"context"
	"errors"
	"time"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
)

// State tracks where a submission is in its lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
)

var (
	// ErrInvalid indicates field validation failed; see FieldErrors.
	ErrInvalid = errors.New("submission has invalid fields")
	// ErrNotSignedIn indicates there is no authenticated user to own the record.
	ErrNotSignedIn = errors.New("you must be signed in to log activities")
)

// Submitter persists a validated submission.
type Submitter interface {
	LogActivity(ctx context.Context, input domain.LogActivityInput) (*domain.Activity, error)
}

// Submission is one in-flight activity form. The zero value is not usable;
// construct with New.
type Submission struct {
	activityType domain.ActivityType
	count        int
	notes        string
	timestamp    time.Time
	loID         string

	state       State
	fieldErrors map[string]string

	now func() time.Time
}

// New returns a Submission with default field values: type call, count 1,
// timestamp now.
func New() *Submission {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Submission {
	s := &Submission{state: StateIdle, now: now}
	s.reset()
	return s
}

func (s *Submission) reset() {
	s.activityType = domain.DefaultType
	s.count = 1
	s.notes = ""
	s.timestamp = s.now().UTC()
}

// SetType selects the activity type. Membership is checked at submit time so
// the field error can be reported alongside the others.
func (s *Submission) SetType(t domain.ActivityType) { s.activityType = t }

// SetCount records the count, coerced to an integer of at least 1.
func (s *Submission) SetCount(n int) { s.count = domain.ClampCount(n) }

// SetCountRaw records raw count input; empty, negative and non-numeric
// values all coerce to 1.
func (s *Submission) SetCountRaw(raw string) { s.count = domain.ParseCount(raw) }

// SetNotes records the free-text notes.
func (s *Submission) SetNotes(notes string) { s.notes = notes }

// SetTimestamp overrides the default "now" timestamp.
func (s *Submission) SetTimestamp(t time.Time) { s.timestamp = t }

// SetLoanOfficer picks an explicit loan officer. Only honored for admins and
// owners; loan officers always submit under their own attribution.
func (s *Submission) SetLoanOfficer(id string) { s.loID = id }

// Type returns the currently selected type.
func (s *Submission) Type() domain.ActivityType { return s.activityType }

// Count returns the current count value.
func (s *Submission) Count() int { return s.count }

// Notes returns the current notes value.
func (s *Submission) Notes() string { return s.notes }

// Timestamp returns the current timestamp value.
func (s *Submission) Timestamp() time.Time { return s.timestamp }

// State reports the current lifecycle state.
func (s *Submission) State() State { return s.state }

// FieldErrors returns per-field messages from the last validation run.
func (s *Submission) FieldErrors() map[string]string { return s.fieldErrors }

// Validate checks required fields synchronously and records per-field errors.
func (s *Submission) Validate() map[string]string {
	errs := make(map[string]string)
	if s.activityType == "" {
		errs["type"] = "Activity type is required"
	} else if !s.activityType.Valid() {
		errs["type"] = "Unknown activity type"
	}
	if s.timestamp.IsZero() {
		errs["timestamp"] = "Date is required"
	}
	s.fieldErrors = errs
	return errs
}

// Submit runs the full flow for the given user. Validation failures and a
// missing user abort before any store call. On success the form resets to its
// defaults; on a store failure every entered value is preserved so the same
// submission can be retried as-is.
func (s *Submission) Submit(ctx context.Context, svc Submitter, user *domain.User, prof *domain.Profile) (*domain.Activity, error) {
	s.state = StateValidating
	if errs := s.Validate(); len(errs) > 0 {
		s.state = StateIdle
		return nil, ErrInvalid
	}

	if user == nil || user.ID == "" {
		s.state = StateIdle
		return nil, ErrNotSignedIn
	}

	s.state = StateSubmitting
	input := domain.LogActivityInput{
		Type:      s.activityType,
		Timestamp: s.timestamp,
		Notes:     s.notes,
		UserID:    user.ID,
		LOID:      s.resolveLoanOfficer(user, prof),
	}
	if s.activityType.Countable() {
		count := s.count
		input.Count = &count
	}

	activity, err := svc.LogActivity(ctx, input)
	s.state = StateIdle
	if err != nil {
		return nil, err
	}

	s.reset()
	return activity, nil
}

func (s *Submission) resolveLoanOfficer(user *domain.User, prof *domain.Profile) string {
	if s.loID != "" && user.Role != domain.RoleLoanOfficer {
		return s.loID
	}
	if prof != nil {
		return prof.LoanOfficerID()
	}
	return user.ID
}
