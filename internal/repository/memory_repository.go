package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/boatmemories/backend/internal/models"
)

type MemoryRepository struct {
	db *sql.DB
}

func NewMemoryRepository(db *sql.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

const memoryColumns = `id, owner_id, location, photo_urls, preview_url, watermarked_url, source_url,
COALESCE(final_url, ''), payment_status, payment_amount, COALESCE(purchaser_email, ''), COALESCE(tier, ''), created_at`

// Insert persists a new memory. The record must already carry its generated
// preview; a memory without artwork is never written.
func (r *MemoryRepository) Insert(ctx context.Context, m *models.Memory) error {
	photos, err := json.Marshal(m.PhotoURLs)
	if err != nil {
		return fmt.Errorf("marshal photo urls: %w", err)
	}
	const query = `
INSERT INTO memories (id, owner_id, location, photo_urls, preview_url, watermarked_url, source_url, payment_status, payment_amount)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.OwnerID, m.Location, photos, m.PreviewURL, m.WatermarkedURL, m.SourceURL, models.PaymentPending, 0); err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrConflict
		}
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// Get returns the memory or nil when absent. Ownership is checked by the
// caller; the repository is keyed by id alone.
func (r *MemoryRepository) Get(ctx context.Context, id string) (*models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	m, err := scanMemory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan memory: %w", err)
	}
	return m, nil
}

// ListByOwner returns the owner's memories, newest first.
func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM memories WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	var memories []models.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

// MarkPaid is the single mutation allowed after Insert: a compare-and-set
// from pending to paid that also records the deliverable and the purchase
// details. A concurrent or repeated purchase loses the race and gets
// ErrAlreadyPurchased; no other transition exists.
func (r *MemoryRepository) MarkPaid(ctx context.Context, id string, finalURL string, amount int, email string, tier models.Tier) error {
	if finalURL == "" || amount <= 0 {
		return ErrInvalidTransition
	}
	const query = `
UPDATE memories
SET payment_status = ?, payment_amount = ?, purchaser_email = ?, tier = ?, final_url = ?
WHERE id = ? AND payment_status = ?`
	res, err := r.db.ExecContext(ctx, query, models.PaymentPaid, amount, email, tier, finalURL, id, models.PaymentPending)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark paid rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	existing, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return sql.ErrNoRows
	}
	return ErrAlreadyPurchased
}

// Reassign moves every memory owned by fromOwner to toOwner. Used when an
// anonymous identity is merged into an authenticated one.
func (r *MemoryRepository) Reassign(ctx context.Context, fromOwner, toOwner string) error {
	const query = `UPDATE memories SET owner_id = ? WHERE owner_id = ?`
	if _, err := r.db.ExecContext(ctx, query, toOwner, fromOwner); err != nil {
		return fmt.Errorf("reassign memories: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*models.Memory, error) {
	var m models.Memory
	var photos []byte
	var status string
	var tier string
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Location, &photos, &m.PreviewURL, &m.WatermarkedURL,
		&m.SourceURL, &m.FinalURL, &status, &m.PaymentAmount, &m.PurchaserEmail, &tier, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(photos, &m.PhotoURLs); err != nil {
		return nil, fmt.Errorf("unmarshal photo urls: %w", err)
	}
	m.PaymentStatus = models.PaymentStatus(status)
	m.Tier = models.Tier(tier)
	return &m, nil
}
