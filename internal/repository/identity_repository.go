package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/boatmemories/backend/internal/models"
)

type IdentityRepository struct {
	db *sql.DB
}

func NewIdentityRepository(db *sql.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	const query = `
INSERT INTO identities (id, email, is_anonymous)
VALUES (?, NULLIF(?, ''), ?)`
	anon := 0
	if identity.Anonymous {
		anon = 1
	}
	if _, err := r.db.ExecContext(ctx, query, identity.ID, identity.Email, anon); err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) Get(ctx context.Context, id string) (*models.Identity, error) {
	const query = `
SELECT id, COALESCE(email, ''), is_anonymous, created_at, updated_at
FROM identities WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var identity models.Identity
	var anon int
	if err := row.Scan(&identity.ID, &identity.Email, &anon, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	identity.Anonymous = anon != 0
	return &identity, nil
}

// SetEmail upgrades an identity with a confirmed email address and clears the
// anonymous flag.
func (r *IdentityRepository) SetEmail(ctx context.Context, id, email string) error {
	const query = `UPDATE identities SET email = ?, is_anonymous = 0, updated_at = NOW() WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, email, id); err != nil {
		return fmt.Errorf("set identity email: %w", err)
	}
	return nil
}
