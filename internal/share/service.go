// Package share implements the sharing core: code-verified recipient access
// to a scoped profile snapshot and the propose/approve edit workflow on top
// of it.
package share

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/database"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/scope"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/secrets"
)

// DefaultTimeout is the sliding inactivity window after which a share expires.
const DefaultTimeout = 10 * time.Minute

// Event types emitted toward the owner's notification feed.
const (
	EventShareCreated   = "share_created"
	EventEditsSubmitted = "share_edits_submitted"
	EventEditsApproved  = "share_edits_approved"
	EventAccessRevoked  = "share_access_revoked"
)

// Store is the persistence surface the service needs. *database.Store
// satisfies it.
type Store interface {
	CreateShare(ctx context.Context, arg database.CreateShareParams) (*models.Share, error)
	GetShareByToken(ctx context.Context, token string) (*models.Share, error)
	ListActiveSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error)
	ListPendingSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error)
	TouchShare(ctx context.Context, token string, at time.Time) (bool, error)
	MarkShareExpired(ctx context.Context, token string) (bool, error)
	RevokeShare(ctx context.Context, token string) (bool, error)
	SubmitPendingEdits(ctx context.Context, token string, edits models.ProfileData, at time.Time) (*models.Share, error)
	ApprovePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error)
	DeclinePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error)
	GetProfile(ctx context.Context, ownerID int64) (models.ProfileData, error)
}

// Notifier delivers best-effort events to the owner. Implementations must not
// block: the service calls it after the state transition has committed and
// ignores its outcome.
type Notifier interface {
	Notify(eventType string, ownerID int64, payload interface{})
}

// Limiter throttles repeated failed code checks per token.
type Limiter interface {
	Allow(ctx context.Context, token string) (bool, error)
	Fail(ctx context.Context, token string) error
	Reset(ctx context.Context, token string) error
}

type Service struct {
	store    Store
	notifier Notifier
	limiter  Limiter
	timeout  time.Duration
	now      func() time.Time
}

// NewService wires the sharing core. notifier and limiter may be nil.
func NewService(store Store, notifier Notifier, limiter Limiter, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		store:    store,
		notifier: notifier,
		limiter:  limiter,
		timeout:  timeout,
		now:      time.Now,
	}
}

// NormalizeRecipientName lower-cases and collapses whitespace so the name
// factor is compared leniently.
func NormalizeRecipientName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

type CreateParams struct {
	OwnerID       int64
	Selection     scope.Selection
	Editable      bool
	RecipientName *string
}

// CreateResult carries the plaintext access code exactly once; it is never
// persisted or returned again.
type CreateResult struct {
	Share      *models.Share
	AccessCode string
}

func (s *Service) Create(ctx context.Context, arg CreateParams) (*CreateResult, error) {
	var recipientName *string
	if arg.RecipientName != nil {
		if NormalizeRecipientName(*arg.RecipientName) == "" {
			return nil, validationError("recipient_name", "recipient name cannot be empty")
		}
		trimmed := strings.TrimSpace(*arg.RecipientName)
		recipientName = &trimmed
	}

	sc := scope.Build(arg.Selection)

	profile, err := s.store.GetProfile(ctx, arg.OwnerID)
	if err != nil {
		return nil, s.internal("read profile for snapshot", err)
	}
	snapshot := scope.Filter(profile, sc)

	code, err := secrets.NewAccessCode()
	if err != nil {
		return nil, s.internal("generate access code", err)
	}

	var created *models.Share
	for attempt := 0; attempt < 3; attempt++ {
		token, err := secrets.NewToken()
		if err != nil {
			return nil, s.internal("generate share token", err)
		}
		created, err = s.store.CreateShare(ctx, database.CreateShareParams{
			Token:         token,
			CodeHash:      secrets.HashCode(code),
			OwnerID:       arg.OwnerID,
			Scope:         sc,
			Snapshot:      snapshot,
			Editable:      arg.Editable,
			RecipientName: recipientName,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, database.ErrTokenTaken) {
			return nil, s.internal("create share", err)
		}
	}
	if created == nil {
		return nil, s.internal("create share", errors.New("token collisions on every attempt"))
	}

	s.notify(EventShareCreated, arg.OwnerID, map[string]interface{}{
		"token":    created.Token,
		"editable": created.Editable,
	})

	return &CreateResult{Share: created, AccessCode: code}, nil
}

// View is what a verified recipient is allowed to see. It never carries the
// access code or its hash.
type View struct {
	Token         string             `json:"token"`
	Scope         models.Scope       `json:"scope"`
	Snapshot      models.ProfileData `json:"snapshot"`
	Editable      bool               `json:"editable"`
	Status        string             `json:"status"`
	PendingStatus string             `json:"pending_status"`
	PendingAt     *time.Time         `json:"pending_at,omitempty"`
}

func newView(sh *models.Share) *View {
	return &View{
		Token:         sh.Token,
		Scope:         sh.Scope,
		Snapshot:      sh.Snapshot,
		Editable:      sh.Editable,
		Status:        sh.Status,
		PendingStatus: sh.PendingStatus,
		PendingAt:     sh.PendingAt,
	}
}

// checkAccess runs the full verification sequence: lookup, lazy expiry, code
// check, optional name check. It does not touch the access clock.
func (s *Service) checkAccess(ctx context.Context, token, code, name string) (*models.Share, error) {
	sh, err := s.store.GetShareByToken(ctx, token)
	if err != nil {
		return nil, s.internal("look up share", err)
	}
	if sh == nil {
		return nil, ErrNotFound
	}

	if !s.allowAttempt(ctx, token) {
		return nil, ErrTooManyAttempts
	}

	now := s.now()
	if sh.MarkExpiredIfStale(now, s.timeout) {
		if _, err := s.store.MarkShareExpired(ctx, token); err != nil {
			log.Printf("ERROR: Failed to persist expiry for share %s: %v", token, err)
		}
		return nil, ErrSessionExpired
	}
	if sh.Status != models.ShareStatusActive {
		return nil, ErrSessionExpired
	}

	if !secrets.CodeMatches(code, sh.CodeHash) {
		s.failAttempt(ctx, token)
		return nil, ErrInvalidCode
	}

	if sh.RecipientName != nil {
		if NormalizeRecipientName(name) != NormalizeRecipientName(*sh.RecipientName) {
			s.failAttempt(ctx, token)
			return nil, ErrNameMismatch
		}
	}

	s.resetAttempts(ctx, token)
	return sh, nil
}

// Verify authenticates a recipient against a share. When touch is set, a
// successful verification extends the sliding inactivity window.
func (s *Service) Verify(ctx context.Context, token, code, name string, touch bool) (*View, error) {
	sh, err := s.checkAccess(ctx, token, code, name)
	if err != nil {
		return nil, err
	}

	if touch {
		now := s.now()
		touched, err := s.store.TouchShare(ctx, token, now)
		if err != nil {
			return nil, s.internal("touch share", err)
		}
		if touched {
			sh.LastAccessedAt = now
		}
	}

	return newView(sh), nil
}

// VerifyForClose lets a recipient voluntarily end their own session. It runs
// the same checks as Verify but revokes the share instead of touching it.
func (s *Service) VerifyForClose(ctx context.Context, token, code, name string) error {
	sh, err := s.checkAccess(ctx, token, code, name)
	if err != nil {
		return err
	}

	if _, err := s.store.RevokeShare(ctx, token); err != nil {
		return s.internal("revoke share", err)
	}

	s.notify(EventAccessRevoked, sh.OwnerID, map[string]interface{}{
		"token":  sh.Token,
		"reason": "closed_by_recipient",
	})
	return nil
}

// SubmitEdits files a recipient proposal. The payload is filtered against the
// share scope before anything reaches storage; a submission with nothing in
// scope is rejected rather than stored empty.
func (s *Service) SubmitEdits(ctx context.Context, token, code, name string, edits models.ProfileData) (*View, error) {
	sh, err := s.checkAccess(ctx, token, code, name)
	if err != nil {
		return nil, err
	}

	if !sh.Editable {
		return nil, ErrEditingDisabled
	}

	filtered := scope.Filter(edits, sh.Scope)
	if filtered.IsEmpty() {
		return nil, ErrEmptyScope
	}

	updated, err := s.store.SubmitPendingEdits(ctx, token, filtered, s.now())
	if err != nil {
		if errors.Is(err, database.ErrShareNotActive) {
			return nil, ErrSessionExpired
		}
		return nil, s.internal("store pending edits", err)
	}

	s.notify(EventEditsSubmitted, sh.OwnerID, map[string]interface{}{
		"token":      sh.Token,
		"pending_at": updated.PendingAt,
	})

	return newView(updated), nil
}

// Approve merges the pending proposal into the live profile and snapshot.
// A transient merge failure is retried once before being surfaced.
func (s *Service) Approve(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	updated, err := s.store.ApprovePendingEdits(ctx, token, ownerID)
	if err != nil && !isStoreSentinel(err) {
		log.Printf("WARN: Approve merge failed for share %s, retrying once: %v", token, err)
		updated, err = s.store.ApprovePendingEdits(ctx, token, ownerID)
	}
	if err != nil {
		return nil, s.mapStoreError("approve pending edits", err)
	}

	s.notify(EventEditsApproved, ownerID, map[string]interface{}{
		"token": updated.Token,
	})
	return updated, nil
}

// Decline discards the pending proposal and ends the sharing session.
func (s *Service) Decline(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	updated, err := s.store.DeclinePendingEdits(ctx, token, ownerID)
	if err != nil {
		return nil, s.mapStoreError("decline pending edits", err)
	}

	s.notify(EventAccessRevoked, ownerID, map[string]interface{}{
		"token":  updated.Token,
		"reason": "proposal_declined",
	})
	return updated, nil
}

// Revoke ends a share on the owner's request. Pending proposal fields are
// preserved for audit.
func (s *Service) Revoke(ctx context.Context, token string, ownerID int64) error {
	sh, err := s.store.GetShareByToken(ctx, token)
	if err != nil {
		return s.internal("look up share", err)
	}
	if sh == nil {
		return ErrNotFound
	}
	if sh.OwnerID != ownerID {
		return ErrForbidden
	}

	revoked, err := s.store.RevokeShare(ctx, token)
	if err != nil {
		return s.internal("revoke share", err)
	}
	if !revoked {
		return ErrSessionExpired
	}

	s.notify(EventAccessRevoked, ownerID, map[string]interface{}{
		"token":  token,
		"reason": "revoked_by_owner",
	})
	return nil
}

// ListActive returns the owner's shares that are still live, applying the
// lazy expiry rule on the way: a stale share is persisted as expired and
// dropped from the result.
func (s *Service) ListActive(ctx context.Context, ownerID int64) ([]models.Share, error) {
	shares, err := s.store.ListActiveSharesForOwner(ctx, ownerID)
	if err != nil {
		return nil, s.internal("list active shares", err)
	}

	now := s.now()
	live := make([]models.Share, 0, len(shares))
	for _, sh := range shares {
		if sh.MarkExpiredIfStale(now, s.timeout) {
			if _, err := s.store.MarkShareExpired(ctx, sh.Token); err != nil {
				log.Printf("ERROR: Failed to persist expiry for share %s: %v", sh.Token, err)
			}
			continue
		}
		live = append(live, sh)
	}
	return live, nil
}

func (s *Service) ListPending(ctx context.Context, ownerID int64) ([]models.Share, error) {
	shares, err := s.store.ListPendingSharesForOwner(ctx, ownerID)
	if err != nil {
		return nil, s.internal("list pending shares", err)
	}
	return shares, nil
}

func isStoreSentinel(err error) bool {
	return errors.Is(err, database.ErrShareNotFound) ||
		errors.Is(err, database.ErrShareNotActive) ||
		errors.Is(err, database.ErrNotShareOwner) ||
		errors.Is(err, database.ErrNoPendingEdits)
}

func (s *Service) mapStoreError(op string, err error) error {
	switch {
	case errors.Is(err, database.ErrShareNotFound):
		return ErrNotFound
	case errors.Is(err, database.ErrNotShareOwner):
		return ErrForbidden
	case errors.Is(err, database.ErrShareNotActive):
		return ErrSessionExpired
	case errors.Is(err, database.ErrNoPendingEdits):
		return ErrNoPendingEdits
	default:
		return s.internal(op, err)
	}
}

func (s *Service) internal(op string, err error) error {
	log.Printf("ERROR: Failed to %s: %v", op, err)
	return ErrInternal
}

func (s *Service) notify(eventType string, ownerID int64, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(eventType, ownerID, payload)
}

func (s *Service) allowAttempt(ctx context.Context, token string) bool {
	if s.limiter == nil {
		return true
	}
	allowed, err := s.limiter.Allow(ctx, token)
	if err != nil {
		// The limiter is a hardening layer; fail open rather than lock
		// everyone out when it is unreachable.
		log.Printf("WARN: Attempt limiter unavailable: %v", err)
		return true
	}
	return allowed
}

func (s *Service) failAttempt(ctx context.Context, token string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Fail(ctx, token); err != nil {
		log.Printf("WARN: Attempt limiter unavailable: %v", err)
	}
}

func (s *Service) resetAttempts(ctx context.Context, token string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, token); err != nil {
		log.Printf("WARN: Attempt limiter unavailable: %v", err)
	}
}
