package database

import (
	"context"
	"errors"
	"time"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/scope"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrShareNotFound = errors.New("share not found")
var ErrShareNotActive = errors.New("share is not active")
var ErrNotShareOwner = errors.New("user is not the owner of this share")
var ErrNoPendingEdits = errors.New("share has no pending edits")
var ErrTokenTaken = errors.New("share token already exists")

const shareColumns = `
	id, token, code_hash, owner_id, scope, snapshot, editable, recipient_name,
	status, pending_status, pending_edits, pending_at, last_accessed_at, created_at`

func scanShare(row pgx.Row) (*models.Share, error) {
	var share models.Share
	err := row.Scan(
		&share.ID,
		&share.Token,
		&share.CodeHash,
		&share.OwnerID,
		&share.Scope,
		&share.Snapshot,
		&share.Editable,
		&share.RecipientName,
		&share.Status,
		&share.PendingStatus,
		&share.PendingEdits,
		&share.PendingAt,
		&share.LastAccessedAt,
		&share.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}

type CreateShareParams struct {
	Token         string
	CodeHash      string
	OwnerID       int64
	Scope         models.Scope
	Snapshot      models.ProfileData
	Editable      bool
	RecipientName *string
}

func (q *Queries) CreateShare(ctx context.Context, arg CreateShareParams) (*models.Share, error) {
	query := `
		INSERT INTO shares (token, code_hash, owner_id, scope, snapshot, editable, recipient_name, last_accessed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING` + shareColumns

	now := time.Now()
	row := q.db.QueryRow(ctx, query,
		arg.Token,
		arg.CodeHash,
		arg.OwnerID,
		arg.Scope,
		arg.Snapshot,
		arg.Editable,
		arg.RecipientName,
		now,
	)

	share, err := scanShare(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrTokenTaken
		}
		return nil, err
	}

	return share, nil
}

func (q *Queries) GetShareByToken(ctx context.Context, token string) (*models.Share, error) {
	query := `SELECT` + shareColumns + ` FROM shares WHERE token = $1`

	share, err := scanShare(q.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return share, nil
}

func (q *Queries) getShareByTokenForUpdate(ctx context.Context, token string) (*models.Share, error) {
	query := `SELECT` + shareColumns + ` FROM shares WHERE token = $1 FOR UPDATE`

	share, err := scanShare(q.db.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return share, nil
}

func (q *Queries) listShares(ctx context.Context, query string, args ...interface{}) ([]models.Share, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, *share)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if shares == nil {
		return []models.Share{}, nil
	}

	return shares, nil
}

func (q *Queries) ListActiveSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error) {
	query := `
		SELECT` + shareColumns + `
		FROM shares
		WHERE owner_id = $1 AND status = 'active'
		ORDER BY created_at DESC`
	return q.listShares(ctx, query, ownerID)
}

func (q *Queries) ListPendingSharesForOwner(ctx context.Context, ownerID int64) ([]models.Share, error) {
	query := `
		SELECT` + shareColumns + `
		FROM shares
		WHERE owner_id = $1 AND pending_status = 'pending'
		ORDER BY pending_at DESC`
	return q.listShares(ctx, query, ownerID)
}

// TouchShare extends the sliding inactivity window. The status guard makes
// concurrent touches against a revoked or expired share no-ops.
func (q *Queries) TouchShare(ctx context.Context, token string, at time.Time) (bool, error) {
	query := `UPDATE shares SET last_accessed_at = $2 WHERE token = $1 AND status = 'active'`
	res, err := q.db.Exec(ctx, query, token, at)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// MarkShareExpired persists a lazily-observed expiry so it becomes sticky.
func (q *Queries) MarkShareExpired(ctx context.Context, token string) (bool, error) {
	query := `UPDATE shares SET status = 'expired' WHERE token = $1 AND status = 'active'`
	res, err := q.db.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// RevokeShare moves an active share to revoked. Pending proposal fields are
// deliberately left in place for owner audit.
func (q *Queries) RevokeShare(ctx context.Context, token string) (bool, error) {
	query := `UPDATE shares SET status = 'revoked' WHERE token = $1 AND status = 'active'`
	res, err := q.db.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

// SubmitPendingEdits stores a scope-filtered proposal in a single conditional
// update. A share that is no longer active gets ErrShareNotActive.
func (q *Queries) SubmitPendingEdits(ctx context.Context, token string, edits models.ProfileData, at time.Time) (*models.Share, error) {
	query := `
		UPDATE shares
		SET pending_edits = $2, pending_status = 'pending', pending_at = $3, last_accessed_at = $3
		WHERE token = $1 AND status = 'active'
		RETURNING` + shareColumns

	share, err := scanShare(q.db.QueryRow(ctx, query, token, edits, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareNotActive
		}
		return nil, err
	}
	return share, nil
}

// ApprovePendingEdits merges the pending proposal into the live profile and
// the share snapshot in one transaction. The row lock plus the pending-status
// check make concurrent approvals mutually exclusive: the loser gets
// ErrNoPendingEdits.
func (s *Store) ApprovePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	var updated *models.Share

	txErr := s.ExecTx(ctx, func(q *Queries) error {
		share, err := q.getShareByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		if share == nil {
			return ErrShareNotFound
		}
		if share.OwnerID != ownerID {
			return ErrNotShareOwner
		}
		if share.Status != models.ShareStatusActive {
			return ErrShareNotActive
		}
		if share.PendingStatus != models.PendingStatusPending || share.PendingEdits == nil {
			return ErrNoPendingEdits
		}

		// The profile merge re-validates against the share scope instead of
		// trusting that intake filtering already happened.
		if _, err := q.MergeIntoProfile(ctx, share.OwnerID, *share.PendingEdits, share.Scope); err != nil {
			return err
		}

		filtered := scope.Filter(*share.PendingEdits, share.Scope)
		snapshot := scope.Merge(share.Snapshot, filtered)

		query := `
			UPDATE shares
			SET snapshot = $2, pending_edits = NULL, pending_at = NULL, pending_status = 'accepted'
			WHERE token = $1
			RETURNING` + shareColumns

		updated, err = scanShare(q.db.QueryRow(ctx, query, token, snapshot))
		return err
	})

	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}

// DeclinePendingEdits discards the proposal and ends the sharing session: a
// decline always forces the share to revoked.
func (s *Store) DeclinePendingEdits(ctx context.Context, token string, ownerID int64) (*models.Share, error) {
	var updated *models.Share

	txErr := s.ExecTx(ctx, func(q *Queries) error {
		share, err := q.getShareByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		if share == nil {
			return ErrShareNotFound
		}
		if share.OwnerID != ownerID {
			return ErrNotShareOwner
		}
		if share.PendingStatus != models.PendingStatusPending {
			return ErrNoPendingEdits
		}

		query := `
			UPDATE shares
			SET pending_edits = NULL, pending_at = NULL, pending_status = 'declined', status = 'revoked'
			WHERE token = $1
			RETURNING` + shareColumns

		updated, err = scanShare(q.db.QueryRow(ctx, query, token))
		return err
	})

	if txErr != nil {
		return nil, txErr
	}
	return updated, nil
}
