package postgres

import (
	"context"
	"database/sql"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
)

const maxBookmarks = 500

type BookmarkRepo struct {
	db *sql.DB
}

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo { return &BookmarkRepo{db: db} }

func (r *BookmarkRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createBookmarksSQL)
	return err
}

func (r *BookmarkRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Upsert stores b, refreshing the event snapshot of an existing bookmark.
// CreatedAt is set from the stored row; created reports a new insert.
func (r *BookmarkRepo) Upsert(ctx context.Context, b *domain.Bookmark) (bool, error) {
	row := r.db.QueryRowContext(ctx, upsertBookmarkSQL,
		b.UserID, b.EventID, b.Title, b.EventDate,
		b.Address, b.Image, b.SiteURL, b.CreatedAt,
	)
	var created bool
	if err := row.Scan(&b.CreatedAt, &created); err != nil {
		return false, err
	}
	return created, nil
}

func (r *BookmarkRepo) Delete(ctx context.Context, userID string, eventID int64) error {
	res, err := r.db.ExecContext(ctx, deleteBookmarkSQL, userID, eventID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("bookmark not found")
	}
	return nil
}

func (r *BookmarkRepo) ListByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, listBookmarksSQL, userID, maxBookmarks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Bookmark{}
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(
			&b.UserID, &b.EventID, &b.Title, &b.EventDate,
			&b.Address, &b.Image, &b.SiteURL, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
