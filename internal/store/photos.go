package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/taller/internal/imaging"
	"github.com/erazemk/taller/internal/model"
)

// SavePhoto stores a processed photo for an employee's item and returns its ID.
func SavePhoto(ctx context.Context, db *sql.DB, empCode, itemCode string, p *imaging.Photo) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (id, emp_code, item_code, mime, width, height, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, empCode, itemCode, p.MIME, p.Width, p.Height, p.Data,
	)
	if err != nil {
		return "", fmt.Errorf("saving photo: %w", err)
	}
	return id, nil
}

// GetPhoto returns a stored photo, or nil if it doesn't exist.
func GetPhoto(ctx context.Context, db *sql.DB, id string) (*model.StoredPhoto, error) {
	p := &model.StoredPhoto{}
	err := db.QueryRowContext(ctx,
		`SELECT id, emp_code, item_code, mime, width, height, data, created_at
		 FROM photos WHERE id = ?`, id,
	).Scan(&p.ID, &p.EmpCode, &p.ItemCode, &p.MIME, &p.Width, &p.Height, &p.Data, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting photo: %w", err)
	}
	return p, nil
}

// DeletePhoto removes a photo owned by empCode unless a submitted revision of
// that employee still references it. Deleting a missing photo is not an error.
func DeletePhoto(ctx context.Context, db *sql.DB, empCode, id string) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM photos WHERE id = ? AND emp_code = ?
		 AND NOT EXISTS (
		     SELECT 1 FROM revisions WHERE emp_code = ? AND instr(state, ?) > 0
		 )`,
		id, empCode, empCode, id,
	)
	if err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	return nil
}
