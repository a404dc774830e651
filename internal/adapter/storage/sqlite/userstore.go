package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pulsevideo/pulse/internal/domain"
	"github.com/pulsevideo/pulse/internal/port"
)

const userColumns = `id, email, password_hash, name, tenant_id, role, created_at`

// UserStore shares the Store's database handle so users and videos live
// in one migrated file.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(s *Store) *UserStore {
	return &UserStore{db: s.db}
}

func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.TenantID, string(u.Role), u.CreatedAt,
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
		return domain.ErrEmailTaken
	}
	return err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *UserStore) ListByTenant(ctx context.Context, tenantID string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tenant_id = ? ORDER BY created_at ASC`,
		tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) UpdateRole(ctx context.Context, tenantID, id string, role domain.Role) error {
	return execScoped(ctx, s.db,
		`UPDATE users SET role = ? WHERE tenant_id = ? AND id = ?`,
		string(role), tenantID, id)
}

func (s *UserStore) Delete(ctx context.Context, tenantID, id string) error {
	return execScoped(ctx, s.db,
		`DELETE FROM users WHERE tenant_id = ? AND id = ?`,
		tenantID, id)
}

func (s *UserStore) CountAdmins(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE tenant_id = ? AND role = ?`,
		tenantID, string(domain.RoleAdmin)).Scan(&n)
	return n, err
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.TenantID, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ port.UserStore = (*UserStore)(nil)
