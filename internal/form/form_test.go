package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
)

type fakeSubmitter struct {
	calls  int
	input  domain.LogActivityInput
	result *domain.Activity
	err    error
}

func (f *fakeSubmitter) LogActivity(ctx context.Context, input domain.LogActivityInput) (*domain.Activity, error) {
	f.calls++
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.Activity{ID: "act-1", Type: input.Type, UserID: input.UserID}, nil
}

func signedInUser() *domain.User {
	return &domain.User{ID: "user-1", Email: "jdoe@example.com", Role: domain.RoleLoanOfficer}
}

func TestMissingTypeAndTimestampYieldTwoErrorsAndNoCall(t *testing.T) {
	svc := &fakeSubmitter{}
	sub := New()
	sub.SetType("")
	sub.SetTimestamp(time.Time{})

	_, err := sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.ErrorIs(t, err, ErrInvalid)
	require.Len(t, sub.FieldErrors(), 2)
	require.Contains(t, sub.FieldErrors(), "type")
	require.Contains(t, sub.FieldErrors(), "timestamp")
	require.Zero(t, svc.calls, "validation failure must not reach the store")
	require.Equal(t, StateIdle, sub.State())
}

func TestUnknownTypeIsRejected(t *testing.T) {
	svc := &fakeSubmitter{}
	sub := New()
	sub.SetType("phone")

	_, err := sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.ErrorIs(t, err, ErrInvalid)
	require.Len(t, sub.FieldErrors(), 1)
	require.Zero(t, svc.calls)
}

func TestSubmitWithoutUserMakesNoCall(t *testing.T) {
	svc := &fakeSubmitter{}
	sub := New()

	_, err := sub.Submit(context.Background(), svc, nil, nil)
	require.ErrorIs(t, err, ErrNotSignedIn)
	require.Empty(t, sub.FieldErrors())
	require.Zero(t, svc.calls, "unauthenticated submit must not reach the store")
}

func TestCountCoercionOnEveryEdit(t *testing.T) {
	sub := New()

	sub.SetCount(-3)
	require.Equal(t, 1, sub.Count())
	sub.SetCount(0)
	require.Equal(t, 1, sub.Count())
	sub.SetCountRaw("")
	require.Equal(t, 1, sub.Count())
	sub.SetCountRaw("abc")
	require.Equal(t, 1, sub.Count())
	sub.SetCountRaw("9")
	require.Equal(t, 9, sub.Count())
}

func TestNonCountableSubmissionOmitsCount(t *testing.T) {
	svc := &fakeSubmitter{}
	sub := New()
	sub.SetType(domain.TypeMeeting)
	sub.SetCount(5)

	_, err := sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.NoError(t, err)
	require.Nil(t, svc.input.Count, "meeting submissions must omit count entirely")
}

func TestCountableSubmissionCarriesCount(t *testing.T) {
	svc := &fakeSubmitter{}
	sub := New()
	sub.SetType(domain.TypeEmail)
	sub.SetCount(7)

	_, err := sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.NoError(t, err)
	require.NotNil(t, svc.input.Count)
	require.Equal(t, 7, *svc.input.Count)
}

func TestSuccessResetsFormToDefaults(t *testing.T) {
	before := time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC)
	svc := &fakeSubmitter{}
	sub := newWithClock(time.Now)
	sub.SetType(domain.TypeProposal)
	sub.SetCount(3)
	sub.SetNotes("sent two drafts")
	sub.SetTimestamp(before)

	user := signedInUser()
	_, err := sub.Submit(context.Background(), svc, user, nil)
	require.NoError(t, err)

	require.Equal(t, domain.DefaultType, sub.Type())
	require.Equal(t, 1, sub.Count())
	require.Empty(t, sub.Notes())
	require.True(t, sub.Timestamp().After(before), "timestamp should reset to now")
	require.Equal(t, "user-1", user.ID, "the signed-in user must be untouched")
}

func TestFailurePreservesEnteredValues(t *testing.T) {
	when := time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC)
	svc := &fakeSubmitter{err: errors.New("connection refused")}
	sub := New()
	sub.SetType(domain.TypeFollowUp)
	sub.SetCount(4)
	sub.SetNotes("chased the appraisal")
	sub.SetTimestamp(when)

	_, err := sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.Error(t, err)

	require.Equal(t, domain.TypeFollowUp, sub.Type())
	require.Equal(t, 4, sub.Count())
	require.Equal(t, "chased the appraisal", sub.Notes())
	require.Equal(t, when, sub.Timestamp())

	// The identical submission can be retried without re-entering data.
	svc.err = nil
	_, err = sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.NoError(t, err)
	require.Equal(t, 2, svc.calls)
}

func TestLoanOfficerAttribution(t *testing.T) {
	svc := &fakeSubmitter{}

	// A loan officer's explicit selection is ignored; the profile lo_id wins.
	sub := New()
	sub.SetLoanOfficer("lo-other")
	prof := &domain.Profile{UID: "user-1", LOID: "lo-55"}
	_, err := sub.Submit(context.Background(), svc, signedInUser(), prof)
	require.NoError(t, err)
	require.Equal(t, "lo-55", svc.input.LOID)

	// Admins may attribute to another loan officer.
	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	sub = New()
	sub.SetLoanOfficer("lo-other")
	_, err = sub.Submit(context.Background(), svc, admin, nil)
	require.NoError(t, err)
	require.Equal(t, "lo-other", svc.input.LOID)

	// Without a profile row the submitter's own id is used.
	sub = New()
	_, err = sub.Submit(context.Background(), svc, signedInUser(), nil)
	require.NoError(t, err)
	require.Equal(t, "user-1", svc.input.LOID)
}
