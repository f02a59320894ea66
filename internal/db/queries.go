package db

import (
	"context"
	"database/sql"

	"github.com/hpungsan/sicon/internal/errors"
)

// Download is one row of the history ledger.
type Download struct {
	ID        string  `json:"id"`
	Query     string  `json:"query"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Format    string  `json:"format"`
	Path      string  `json:"path"`
	Color     *string `json:"color,omitempty"`
	Size      int     `json:"size"`
	Bytes     int64   `json:"bytes"`
	Exact     bool    `json:"exact"`
	Score     float64 `json:"score"`
	CreatedAt int64   `json:"created_at"`
}

// ListFilter narrows a history listing.
type ListFilter struct {
	Slug   string // optional exact slug
	Limit  int
	Offset int
}

// Insert records a download.
func Insert(ctx context.Context, db *sql.DB, d *Download) error {
	query := `
		INSERT INTO downloads (
			id, query, slug, title, format, path, color,
			size, bytes, exact, score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		d.ID, d.Query, d.Slug, d.Title, d.Format, d.Path, toNullString(d.Color),
		d.Size, d.Bytes, boolToInt(d.Exact), d.Score, d.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// List returns downloads newest first, plus the total matching the filter.
func List(ctx context.Context, db *sql.DB, f ListFilter) ([]Download, int, error) {
	where := ""
	var args []any
	if f.Slug != "" {
		where = "WHERE slug = ?"
		args = append(args, f.Slug)
	}

	var total int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM downloads "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `
		SELECT id, query, slug, title, format, path, color,
			size, bytes, exact, score, created_at
		FROM downloads ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	rows, err := db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []Download
	for rows.Next() {
		var (
			d     Download
			color sql.NullString
			exact int
		)
		if err := rows.Scan(&d.ID, &d.Query, &d.Slug, &d.Title, &d.Format, &d.Path, &color,
			&d.Size, &d.Bytes, &exact, &d.Score, &d.CreatedAt); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		d.Color = fromNullString(color)
		d.Exact = exact != 0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return out, total, nil
}

// Clear deletes every download and returns how many were removed.
func Clear(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM downloads")
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
