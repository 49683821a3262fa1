package database

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/models"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/scope"

	"github.com/jackc/pgx/v5"
)

func (q *Queries) GetProfile(ctx context.Context, ownerID int64) (models.ProfileData, error) {
	query := `SELECT sections, products FROM profiles WHERE owner_id = $1`

	var data models.ProfileData
	err := q.db.QueryRow(ctx, query, ownerID).Scan(&data.Sections, &data.Products)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProfileData{}, nil
		}
		return models.ProfileData{}, err
	}
	return data, nil
}

func (q *Queries) getProfileForUpdate(ctx context.Context, ownerID int64) (models.ProfileData, error) {
	query := `SELECT sections, products FROM profiles WHERE owner_id = $1 FOR UPDATE`

	var data models.ProfileData
	err := q.db.QueryRow(ctx, query, ownerID).Scan(&data.Sections, &data.Products)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ProfileData{}, nil
		}
		return models.ProfileData{}, err
	}
	return data, nil
}

func (q *Queries) UpsertProfile(ctx context.Context, ownerID int64, data models.ProfileData) error {
	query := `
		INSERT INTO profiles (owner_id, sections, products, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner_id)
		DO UPDATE SET sections = EXCLUDED.sections, products = EXCLUDED.products, updated_at = now()`

	sections := data.Sections
	if sections == nil {
		sections = map[string]json.RawMessage{}
	}
	products := data.Products
	if products == nil {
		products = map[string]map[string]json.RawMessage{}
	}

	_, err := q.db.Exec(ctx, query, ownerID, sections, products)
	return err
}

// MergeIntoProfile applies scoped edits to the live profile. Keys outside the
// allowed scope are rejected here regardless of what the caller already
// filtered; sections replace wholesale, product responses replace per
// (instance, subsection) pair.
func (q *Queries) MergeIntoProfile(ctx context.Context, ownerID int64, edits models.ProfileData, allowed models.Scope) (models.ProfileData, error) {
	base, err := q.getProfileForUpdate(ctx, ownerID)
	if err != nil {
		return models.ProfileData{}, err
	}

	filtered := scope.Filter(edits, allowed)
	merged := scope.Merge(base, filtered)

	if err := q.UpsertProfile(ctx, ownerID, merged); err != nil {
		return models.ProfileData{}, err
	}
	return merged, nil
}
