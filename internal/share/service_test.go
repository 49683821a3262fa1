package share

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/database"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/scope"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/secrets"
)

// fakeStore mirrors the conditional-update semantics of the real store so the
// service can be exercised without a database.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	now      func() time.Time
	shares   map[string]*models.Share
	profiles map[int64]models.ProfileData

	createErrs []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:      time.Now,
		shares:   make(map[string]*models.Share),
		profiles: make(map[int64]models.ProfileData),
	}
}

func (f *fakeStore) CreateShare(ctx context.Context, arg database.CreateShareParams) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if _, ok := f.shares[arg.Token]; ok {
		return nil, database.ErrTokenTaken
	}

	f.nextID++
	now := f.now()
	sh := &models.Share{
		ID:             f.nextID,
		Token:          arg.Token,
		CodeHash:       arg.CodeHash,
		OwnerID:        arg.OwnerID,
		Scope:          arg.Scope,
		Snapshot:       arg.Snapshot,
		Editable:       arg.Editable,
		RecipientName:  arg.RecipientName,
		Status:         models.ShareStatusActive,
		PendingStatus:  models.PendingStatusNone,
		LastAccessedAt: now,
		CreatedAt:      now,
	}
	f.shares[arg.Token] = sh
	cp := *sh
	return &cp, nil
}

func (f *fakeStore) GetShareByToken(ctx context.Context, token string) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (f *fakeStore) ListActiveSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Share{}
	for _, sh := range f.shares {
		if sh.OwnerID == ownerID && sh.Status == models.ShareStatusActive {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Share{}
	for _, sh := range f.shares {
		if sh.OwnerID == ownerID && sh.PendingStatus == models.PendingStatusPending {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (f *fakeStore) TouchShare(ctx context.Context, token string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok || sh.Status != models.ShareStatusActive {
		return false, nil
	}
	sh.LastAccessedAt = at
	return true, nil
}

func (f *fakeStore) MarkShareExpired(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok || sh.Status != models.ShareStatusActive {
		return false, nil
	}
	sh.Status = models.ShareStatusExpired
	return true, nil
}

func (f *fakeStore) RevokeShare(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok || sh.Status != models.ShareStatusActive {
		return false, nil
	}
	sh.Status = models.ShareStatusRevoked
	return true, nil
}

func (f *fakeStore) SubmitPendingEdits(ctx context.Context, token string, edits models.ProfileData, at time.Time) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok || sh.Status != models.ShareStatusActive {
		return nil, database.ErrShareNotActive
	}
	cp := edits
	sh.PendingEdits = &cp
	sh.PendingStatus = models.PendingStatusPending
	pendingAt := at
	sh.PendingAt = &pendingAt
	sh.LastAccessedAt = at
	out := *sh
	return &out, nil
}

func (f *fakeStore) ApprovePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok {
		return nil, database.ErrShareNotFound
	}
	if sh.OwnerID != ownerID {
		return nil, database.ErrNotShareOwner
	}
	if sh.Status != models.ShareStatusActive {
		return nil, database.ErrShareNotActive
	}
	if sh.PendingStatus != models.PendingStatusPending || sh.PendingEdits == nil {
		return nil, database.ErrNoPendingEdits
	}

	filtered := scope.Filter(*sh.PendingEdits, sh.Scope)
	f.profiles[ownerID] = scope.Merge(f.profiles[ownerID], filtered)
	sh.Snapshot = scope.Merge(sh.Snapshot, filtered)
	sh.PendingEdits = nil
	sh.PendingAt = nil
	sh.PendingStatus = models.PendingStatusAccepted
	out := *sh
	return &out, nil
}

func (f *fakeStore) DeclinePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.shares[token]
	if !ok {
		return nil, database.ErrShareNotFound
	}
	if sh.OwnerID != ownerID {
		return nil, database.ErrNotShareOwner
	}
	if sh.PendingStatus != models.PendingStatusPending {
		return nil, database.ErrNoPendingEdits
	}
	sh.PendingEdits = nil
	sh.PendingAt = nil
	sh.PendingStatus = models.PendingStatusDeclined
	sh.Status = models.ShareStatusRevoked
	out := *sh
	return &out, nil
}

func (f *fakeStore) GetProfile(ctx context.Context, ownerID int64) (models.ProfileData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[ownerID], nil
}

func (f *fakeStore) get(token string) models.Share {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.shares[token]
}

type recordedEvent struct {
	Type    string
	OwnerID int64
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(eventType string, ownerID int64, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: eventType, OwnerID: ownerID})
}

func (f *fakeNotifier) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

type fakeLimiter struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func newFakeLimiter(max int) *fakeLimiter {
	return &fakeLimiter{failures: make(map[string]int), max: max}
}

func (f *fakeLimiter) Allow(ctx context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failures[token] < f.max, nil
}

func (f *fakeLimiter) Fail(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[token]++
	return nil
}

func (f *fakeLimiter) Reset(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, token)
	return nil
}

const testTimeout = 10 * time.Minute

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	svc      *Service
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newFakeStore(),
		notifier: &fakeNotifier{},
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store.now = func() time.Time { return f.clock }
	f.svc = NewService(f.store, f.notifier, nil, testTimeout)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func ownerProfile() models.ProfileData {
	return models.ProfileData{
		Sections: map[string]json.RawMessage{
			"address": json.RawMessage(`{"city":"Gdansk"}`),
			"vehicle": json.RawMessage(`{"plate":"GD1234"}`),
		},
		Products: map[string]map[string]json.RawMessage{
			"loan-1": {"limits": json.RawMessage(`{"max":1000}`)},
		},
	}
}

func (f *fixture) createShare(t *testing.T, sel scope.Selection, editable bool, recipientName *string) *CreateResult {
	t.Helper()
	f.store.profiles[1] = ownerProfile()
	res, err := f.svc.Create(context.Background(), CreateParams{
		OwnerID:       1,
		Selection:     sel,
		Editable:      editable,
		RecipientName: recipientName,
	})
	require.NoError(t, err)
	return res
}

func addressSelection() scope.Selection {
	return scope.Selection{Sections: []string{"address"}}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	require.Len(t, res.Share.Token, secrets.TokenLength)
	require.Regexp(t, `^[0-9]{4}$`, res.AccessCode)
	// Only the hash is stored.
	require.Equal(t, secrets.HashCode(res.AccessCode), res.Share.CodeHash)
	require.Equal(t, models.ShareStatusActive, res.Share.Status)
	require.Equal(t, models.PendingStatusNone, res.Share.PendingStatus)

	// The snapshot only carries what the scope exposes.
	require.Contains(t, res.Share.Snapshot.Sections, "address")
	require.NotContains(t, res.Share.Snapshot.Sections, "vehicle")
	require.Empty(t, res.Share.Snapshot.Products)

	require.Equal(t, []string{EventShareCreated}, f.notifier.types())
}

func TestCreateTrimsRecipientName(t *testing.T) {
	f := newFixture(t)
	name := "  Jan   Kowalski "
	res := f.createShare(t, addressSelection(), false, &name)

	require.NotNil(t, res.Share.RecipientName)
	require.Equal(t, "Jan   Kowalski", *res.Share.RecipientName)
}

func TestCreateRejectsBlankRecipientName(t *testing.T) {
	f := newFixture(t)
	f.store.profiles[1] = ownerProfile()
	blank := "   "
	_, err := f.svc.Create(context.Background(), CreateParams{
		OwnerID:       1,
		Selection:     addressSelection(),
		RecipientName: &blank,
	})

	var shareErr *Error
	require.ErrorAs(t, err, &shareErr)
	require.Equal(t, "validation", shareErr.Kind)
	require.Equal(t, "recipient_name", shareErr.Field)
}

func TestCreateRetriesOnTokenCollision(t *testing.T) {
	f := newFixture(t)
	f.store.createErrs = []error{database.ErrTokenTaken, database.ErrTokenTaken}

	res := f.createShare(t, addressSelection(), false, nil)
	require.NotNil(t, res.Share)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	view, err := f.svc.Verify(context.Background(), res.Share.Token, res.AccessCode, "", true)
	require.NoError(t, err)
	require.Equal(t, res.Share.Token, view.Token)
	require.True(t, view.Editable)
	require.Contains(t, view.Snapshot.Sections, "address")
}

func TestVerifyUnknownToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Verify(context.Background(), "no-such-token", "0000", "", true)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyWrongCode(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	wrong := "0000"
	if wrong == res.AccessCode {
		wrong = "0001"
	}
	f.advance(time.Minute)
	_, err := f.svc.Verify(context.Background(), res.Share.Token, wrong, "", true)
	require.ErrorIs(t, err, ErrInvalidCode)

	// A failed attempt must not extend the inactivity window.
	require.Equal(t, res.Share.LastAccessedAt, f.store.get(res.Share.Token).LastAccessedAt)
}

func TestVerifySlidingWindow(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	// Each verification within the window pushes the window forward.
	f.advance(testTimeout - time.Second)
	_, err := f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.NoError(t, err)

	f.advance(testTimeout - time.Second)
	_, err = f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.NoError(t, err)

	// A gap longer than the window ends the session.
	f.advance(testTimeout + time.Second)
	_, err = f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Equal(t, models.ShareStatusExpired, f.store.get(res.Share.Token).Status)

	// Expiry is sticky: coming back quickly does not resurrect the share.
	f.advance(time.Second)
	_, err = f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestVerifyNameFactor(t *testing.T) {
	f := newFixture(t)
	name := "Jan Kowalski"
	res := f.createShare(t, addressSelection(), true, &name)
	ctx := context.Background()

	before := f.store.get(res.Share.Token).LastAccessedAt
	f.advance(time.Minute)

	_, err := f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "Anna Nowak", true)
	require.ErrorIs(t, err, ErrNameMismatch)
	// A name mismatch leaves the access clock untouched.
	require.Equal(t, before, f.store.get(res.Share.Token).LastAccessedAt)

	// Matching is case- and whitespace-insensitive.
	_, err = f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "  jan   KOWALSKI ", true)
	require.NoError(t, err)
}

func TestVerifyWithoutTouchLeavesClock(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	before := f.store.get(res.Share.Token).LastAccessedAt
	f.advance(time.Minute)
	_, err := f.svc.Verify(context.Background(), res.Share.Token, res.AccessCode, "", false)
	require.NoError(t, err)
	require.Equal(t, before, f.store.get(res.Share.Token).LastAccessedAt)
}

func TestVerifyRateLimited(t *testing.T) {
	f := newFixture(t)
	limiter := newFakeLimiter(2)
	f.svc = NewService(f.store, f.notifier, limiter, testTimeout)
	f.svc.now = func() time.Time { return f.clock }
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	wrong := "0000"
	if wrong == res.AccessCode {
		wrong = "0001"
	}
	for i := 0; i < 2; i++ {
		_, err := f.svc.Verify(ctx, res.Share.Token, wrong, "", true)
		require.ErrorIs(t, err, ErrInvalidCode)
	}

	// Even the correct code is refused once the limiter kicks in.
	_, err := f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestVerifyResetsLimiterOnSuccess(t *testing.T) {
	f := newFixture(t)
	limiter := newFakeLimiter(2)
	f.svc = NewService(f.store, f.notifier, limiter, testTimeout)
	f.svc.now = func() time.Time { return f.clock }
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	wrong := "0000"
	if wrong == res.AccessCode {
		wrong = "0001"
	}
	_, err := f.svc.Verify(ctx, res.Share.Token, wrong, "", true)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.NoError(t, err)
	require.Zero(t, limiter.failures[res.Share.Token])
}

func TestVerifyForClose(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	err := f.svc.VerifyForClose(context.Background(), res.Share.Token, res.AccessCode, "")
	require.NoError(t, err)
	require.Equal(t, models.ShareStatusRevoked, f.store.get(res.Share.Token).Status)
	require.Contains(t, f.notifier.types(), EventAccessRevoked)
}

func TestSubmitEditsNotEditable(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), false, nil)

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(context.Background(), res.Share.Token, res.AccessCode, "", edits)
	require.ErrorIs(t, err, ErrEditingDisabled)
	require.Equal(t, models.PendingStatusNone, f.store.get(res.Share.Token).PendingStatus)
}

func TestSubmitEditsNothingInScope(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"vehicle": json.RawMessage(`{"plate":"XX0000"}`)},
	}
	_, err := f.svc.SubmitEdits(context.Background(), res.Share.Token, res.AccessCode, "", edits)
	require.ErrorIs(t, err, ErrEmptyScope)
}

func TestSubmitEditsFiltersToScope(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{
			"address": json.RawMessage(`{"city":"Sopot"}`),
			"vehicle": json.RawMessage(`{"plate":"XX0000"}`),
		},
	}
	view, err := f.svc.SubmitEdits(context.Background(), res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)
	require.Equal(t, models.PendingStatusPending, view.PendingStatus)
	require.NotNil(t, view.PendingAt)

	stored := f.store.get(res.Share.Token)
	require.NotNil(t, stored.PendingEdits)
	require.Contains(t, stored.PendingEdits.Sections, "address")
	require.NotContains(t, stored.PendingEdits.Sections, "vehicle")

	require.Contains(t, f.notifier.types(), EventEditsSubmitted)
}

func TestApproveMergesOnlyScopedEdits(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	updated, err := f.svc.Approve(ctx, res.Share.Token, 1)
	require.NoError(t, err)
	require.Equal(t, models.PendingStatusAccepted, updated.PendingStatus)
	require.Nil(t, updated.PendingEdits)
	require.Equal(t, models.ShareStatusActive, updated.Status)
	require.JSONEq(t, `{"city":"Sopot"}`, string(updated.Snapshot.Sections["address"]))

	// Only the scoped section moved into the live profile.
	profile := f.store.profiles[1]
	require.JSONEq(t, `{"city":"Sopot"}`, string(profile.Sections["address"]))
	require.JSONEq(t, `{"plate":"GD1234"}`, string(profile.Sections["vehicle"]))

	require.Contains(t, f.notifier.types(), EventEditsApproved)
}

func TestApproveWithoutProposal(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	_, err := f.svc.Approve(context.Background(), res.Share.Token, 1)
	require.ErrorIs(t, err, ErrNoPendingEdits)
}

func TestApproveTwice(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, res.Share.Token, 1)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, res.Share.Token, 1)
	require.ErrorIs(t, err, ErrNoPendingEdits)
}

func TestConcurrentApproves(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	const callers = 4
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Approve(ctx, res.Share.Token, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// Exactly one caller consumes the proposal.
	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNoPendingEdits):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, callers-1, conflicted)
}

func TestApproveByNonOwner(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, res.Share.Token, 99)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDecline(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err := f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	updated, err := f.svc.Decline(ctx, res.Share.Token, 1)
	require.NoError(t, err)
	require.Equal(t, models.PendingStatusDeclined, updated.PendingStatus)
	require.Equal(t, models.ShareStatusRevoked, updated.Status)
	require.Nil(t, updated.PendingEdits)

	// The proposal never reached the live profile.
	require.JSONEq(t, `{"city":"Gdansk"}`, string(f.store.profiles[1].Sections["address"]))
	require.Contains(t, f.notifier.types(), EventAccessRevoked)
}

func TestDeclineWithoutProposal(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	_, err := f.svc.Decline(context.Background(), res.Share.Token, 1)
	require.ErrorIs(t, err, ErrNoPendingEdits)
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.Revoke(ctx, res.Share.Token, 1))
	require.Equal(t, models.ShareStatusRevoked, f.store.get(res.Share.Token).Status)

	// Revoked shares refuse verification even with the right code.
	_, err := f.svc.Verify(ctx, res.Share.Token, res.AccessCode, "", true)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestRevokeByNonOwner(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)

	err := f.svc.Revoke(context.Background(), res.Share.Token, 99)
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, models.ShareStatusActive, f.store.get(res.Share.Token).Status)
}

func TestRevokeAlreadyEnded(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.Revoke(ctx, res.Share.Token, 1))
	err := f.svc.Revoke(ctx, res.Share.Token, 1)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestListActiveAppliesLazyExpiry(t *testing.T) {
	f := newFixture(t)
	fresh := f.createShare(t, addressSelection(), true, nil)
	stale := f.createShare(t, addressSelection(), true, nil)

	// Age only the second share past the window.
	f.advance(testTimeout + time.Second)
	_, err := f.store.TouchShare(context.Background(), fresh.Share.Token, f.clock)
	require.NoError(t, err)

	live, err := f.svc.ListActive(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, fresh.Share.Token, live[0].Token)

	// The stale one was persisted as expired, not just hidden.
	require.Equal(t, models.ShareStatusExpired, f.store.get(stale.Share.Token).Status)
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	res := f.createShare(t, addressSelection(), true, nil)
	ctx := context.Background()

	pending, err := f.svc.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, pending)

	edits := models.ProfileData{
		Sections: map[string]json.RawMessage{"address": json.RawMessage(`{"city":"Sopot"}`)},
	}
	_, err = f.svc.SubmitEdits(ctx, res.Share.Token, res.AccessCode, "", edits)
	require.NoError(t, err)

	pending, err = f.svc.ListPending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, res.Share.Token, pending[0].Token)
}

func TestNormalizeRecipientName(t *testing.T) {
	require.Equal(t, "jan kowalski", NormalizeRecipientName("  Jan   KOWALSKI "))
	require.Equal(t, "", NormalizeRecipientName("   "))
	require.Equal(t, "anna", NormalizeRecipientName("Anna"))
}

func TestLimiterFailureFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.svc = NewService(f.store, f.notifier, brokenLimiter{}, testTimeout)
	f.svc.now = func() time.Time { return f.clock }
	res := f.createShare(t, addressSelection(), true, nil)

	_, err := f.svc.Verify(context.Background(), res.Share.Token, res.AccessCode, "", true)
	require.NoError(t, err)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, token string) (bool, error) {
	return false, errors.New("redis unreachable")
}
func (brokenLimiter) Fail(ctx context.Context, token string) error {
	return errors.New("redis unreachable")
}
func (brokenLimiter) Reset(ctx context.Context, token string) error {
	return errors.New("redis unreachable")
}
