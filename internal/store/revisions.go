package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/taller/internal/model"
	"github.com/erazemk/taller/internal/revision"
)

// SaveRevision stores a snapshot of a finished inspection.
func SaveRevision(ctx context.Context, db *sql.DB, empCode string, citaCode int, state revision.State) (*model.Revision, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encoding revision: %w", err)
	}

	items, failed, photos := state.Summary()
	r := &model.Revision{
		ID:          uuid.NewString(),
		EmpCode:     empCode,
		CitaCode:    citaCode,
		ItemsTotal:  items,
		ItemsFailed: failed,
		Photos:      photos,
		State:       data,
		SubmittedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO revisions (id, emp_code, cita_code, items_total, items_failed, photos, state, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.EmpCode, nullInt(r.CitaCode), r.ItemsTotal, r.ItemsFailed, r.Photos, string(r.State), r.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("saving revision: %w", err)
	}
	return r, nil
}

// GetRevision returns an employee's revision by ID, or nil if it doesn't
// exist.
func GetRevision(ctx context.Context, db *sql.DB, empCode, id string) (*model.Revision, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, emp_code, cita_code, items_total, items_failed, photos, state, submitted_at
		 FROM revisions WHERE id = ? AND emp_code = ?`, id, empCode,
	)
	r, err := scanRevision(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting revision: %w", err)
	}
	return r, nil
}

// ListRevisions returns an employee's revisions, newest first, without their
// state snapshots.
func ListRevisions(ctx context.Context, db *sql.DB, empCode string) ([]model.Revision, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, emp_code, cita_code, items_total, items_failed, photos, '', submitted_at
		 FROM revisions WHERE emp_code = ? ORDER BY submitted_at DESC, rowid DESC`, empCode,
	)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var revisions []model.Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		r.State = nil
		revisions = append(revisions, *r)
	}
	return revisions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(s scanner) (*model.Revision, error) {
	r := &model.Revision{}
	var cita sql.NullInt64
	var state string
	err := s.Scan(&r.ID, &r.EmpCode, &cita, &r.ItemsTotal, &r.ItemsFailed, &r.Photos, &state, &r.SubmittedAt)
	if err != nil {
		return nil, err
	}
	r.CitaCode = int(cita.Int64)
	r.State = []byte(state)
	return r, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
