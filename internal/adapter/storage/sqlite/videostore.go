package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/port"
)

const videoColumns = `id, owner_id, tenant_id, original_name, stored_name, mime_type,
	size_bytes, status, sensitivity, progress, duration_seconds, categories, notes,
	created_at, updated_at`

// videoSelect joins the uploader so reads carry the owner's name and email.
// The join is LEFT so videos of deleted accounts still list.
const videoSelect = `SELECT v.id, v.owner_id, v.tenant_id, v.original_name, v.stored_name,
	v.mime_type, v.size_bytes, v.status, v.sensitivity, v.progress, v.duration_seconds,
	v.categories, v.notes, v.created_at, v.updated_at, u.name, u.email
	FROM videos v LEFT JOIN users u ON u.id = v.owner_id`

func (s *Store) Create(ctx context.Context, v *domain.Video) error {
	categories, err := json.Marshal(v.Categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO videos (`+videoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.TenantID, v.OriginalName, v.StoredName, v.MimeType,
		v.SizeBytes, string(v.Status), string(v.Sensitivity), v.Progress,
		durationValue(v.DurationSeconds), string(categories), v.Notes,
		v.CreatedAt, v.UpdatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, tenantID, id string) (*domain.Video, error) {
	row := s.db.QueryRowContext(ctx,
		videoSelect+` WHERE v.tenant_id = ? AND v.id = ?`,
		tenantID, id)
	return scanVideo(row)
}

func (s *Store) List(ctx context.Context, tenantID string, filter domain.VideoFilter) ([]*domain.Video, error) {
	query := videoSelect + ` WHERE v.tenant_id = ?`
	args := []any{tenantID}

	if filter.Status != "" {
		query += ` AND v.status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Sensitivity != "" {
		query += ` AND v.sensitivity = ?`
		args = append(args, string(filter.Sensitivity))
	}
	if filter.Search != "" {
		query += ` AND v.original_name LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Search)+"%")
	}
	if filter.MinSize != nil {
		query += ` AND v.size_bytes >= ?`
		args = append(args, *filter.MinSize)
	}
	if filter.MaxSize != nil {
		query += ` AND v.size_bytes <= ?`
		args = append(args, *filter.MaxSize)
	}
	if filter.DateFrom != nil {
		query += ` AND v.created_at >= ?`
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		// Include the entire end day.
		query += ` AND v.created_at < ?`
		args = append(args, filter.DateTo.AddDate(0, 0, 1))
	}

	query += ` ORDER BY v.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*domain.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *Store) UpdateProgress(ctx context.Context, tenantID, id string, progress int) error {
	return execScoped(ctx, s.db,
		`UPDATE videos SET progress = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		progress, time.Now().UTC(), tenantID, id)
}

// UpdateDuration only fills a missing duration; a second probe result for
// the same video is a no-op, not an error.
func (s *Store) UpdateDuration(ctx context.Context, tenantID, id string, seconds int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE videos SET duration_seconds = ?, updated_at = ? WHERE tenant_id = ? AND id = ? AND duration_seconds IS NULL`,
		seconds, time.Now().UTC(), tenantID, id)
	return err
}

func (s *Store) UpdateTerminal(ctx context.Context, tenantID, id string, status domain.VideoStatus, sensitivity domain.Sensitivity, progress int) error {
	return execScoped(ctx, s.db,
		`UPDATE videos SET status = ?, sensitivity = ?, progress = ?, updated_at = ? WHERE tenant_id = ? AND id = ?`,
		string(status), string(sensitivity), progress, time.Now().UTC(), tenantID, id)
}

func (s *Store) Delete(ctx context.Context, tenantID, id string) error {
	return execScoped(ctx, s.db,
		`DELETE FROM videos WHERE tenant_id = ? AND id = ?`,
		tenantID, id)
}

// execScoped runs a tenant-scoped mutation and maps a zero-row result to
// ErrNotFound, so cross-tenant writes are indistinguishable from missing
// records.
func execScoped(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*domain.Video, error) {
	var (
		v                     domain.Video
		duration              sql.NullInt64
		categories            string
		ownerName, ownerEmail sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.TenantID, &v.OriginalName, &v.StoredName, &v.MimeType,
		&v.SizeBytes, &v.Status, &v.Sensitivity, &v.Progress, &duration, &categories,
		&v.Notes, &v.CreatedAt, &v.UpdatedAt, &ownerName, &ownerEmail,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if duration.Valid {
		v.DurationSeconds = &duration.Int64
	}
	if ownerName.Valid {
		v.Owner = &domain.VideoOwner{Name: ownerName.String, Email: ownerEmail.String}
	}
	if err := json.Unmarshal([]byte(categories), &v.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return &v, nil
}

func durationValue(d *int64) any {
	if d == nil {
		return nil
	}
	return *d
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

var _ port.VideoStore = (*Store)(nil)
