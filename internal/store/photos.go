package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SavePhoto stores processed image data and returns its reference.
func SavePhoto(ctx context.Context, db sqlx.ExtContext, data []byte, mime string) (string, error) {
	ref := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO photos (ref, data, mime) VALUES (?, ?, ?)`,
		ref, data, mime,
	)
	if err != nil {
		return "", fmt.Errorf("saving photo: %w", err)
	}
	return ref, nil
}

// GetPhoto returns a photo's data and MIME type.
func GetPhoto(ctx context.Context, db sqlx.ExtContext, ref string) ([]byte, string, error) {
	var row struct {
		Data []byte `db:"data"`
		Mime string `db:"mime"`
	}
	err := sqlx.GetContext(ctx, db, &row, `SELECT data, mime FROM photos WHERE ref = ?`, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting photo: %w", err)
	}
	return row.Data, row.Mime, nil
}
