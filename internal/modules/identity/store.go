// README: User/department store backed by PostgreSQL.
package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motorpool/internal/types"
)

type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id types.ID) (*User, error)
	SetPendingRebook(ctx context.Context, id types.ID, pending bool) error
	ListSupervisors(ctx context.Context, departmentID types.ID) ([]*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	CreateDepartment(ctx context.Context, d *Department) error
	GetDepartment(ctx context.Context, id types.ID) (*Department, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateUser(ctx context.Context, u *User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (
			employee_id, name, email, role, department_id,
			license_number, license_expires_at, has_pending_rebook
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(u.EmployeeID), u.Name, u.Email, string(u.Role),
		idPtr(u.DepartmentID), u.LicenseNumber, u.LicenseExpiresAt, u.HasPendingRebook,
	)
	return err
}

func (s *PGStore) GetUser(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT employee_id, name, email, role, department_id,
		       license_number, license_expires_at, has_pending_rebook
		FROM users WHERE employee_id = $1`, string(id))
	return scanUser(row)
}

func (s *PGStore) SetPendingRebook(ctx context.Context, id types.ID, pending bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET has_pending_rebook = $1 WHERE employee_id = $2`,
		pending, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) ListSupervisors(ctx context.Context, departmentID types.ID) ([]*User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT employee_id, name, email, role, department_id,
		       license_number, license_expires_at, has_pending_rebook
		FROM users WHERE department_id = $1 AND role = $2`,
		string(departmentID), string(RoleSupervisor))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PGStore) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	rows, err := s.db.Query(ctx, `
		SELECT employee_id, name, email, role, department_id,
		       license_number, license_expires_at, has_pending_rebook
		FROM users WHERE role = $1`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (s *PGStore) CreateDepartment(ctx context.Context, d *Department) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO departments (id, name, supervisor_id) VALUES ($1, $2, $3)`,
		string(d.ID), d.Name, string(d.SupervisorID))
	return err
}

func (s *PGStore) GetDepartment(ctx context.Context, id types.ID) (*Department, error) {
	row := s.db.QueryRow(ctx,
		`SELECT id, name, supervisor_id FROM departments WHERE id = $1`, string(id))
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.SupervisorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var deptID *string
	err := row.Scan(&u.EmployeeID, &u.Name, &u.Email, &u.Role, &deptID,
		&u.LicenseNumber, &u.LicenseExpiresAt, &u.HasPendingRebook)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if deptID != nil {
		d := types.ID(*deptID)
		u.DepartmentID = &d
	}
	return &u, nil
}

func scanUsers(rows pgx.Rows) ([]*User, error) {
	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
