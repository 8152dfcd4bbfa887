package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, email, username, password_hash, role, is_approved,
		address, mobile_number, vendor_details, version, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	details, err := marshalDetails(u.VendorDetails)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, role, is_approved, address, mobile_number, vendor_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at
	`, u.Email, u.Username, u.PasswordHash, u.Role, u.IsApproved, u.Address, u.MobileNumber, details)

	if err := row.Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
		LIMIT 1
	`, email)
	return scanUser(row)
}

func (r *UserRepository) GetByEmailInPartition(ctx context.Context, email string, p entity.Partition) (*entity.User, error) {
	// The two partitions are customer accounts and everything else; the
	// predicate here must stay in lockstep with the partial unique indexes.
	var row pgx.Row
	if p == entity.PartitionCustomer {
		row = r.pool.QueryRow(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE email = $1 AND role = $2
		`, email, entity.RoleCustomer)
	} else {
		row = r.pool.QueryRow(ctx, `
			SELECT `+userColumns+`
			FROM users
			WHERE email = $1 AND role <> $2
		`, email, entity.RoleCustomer)
	}
	return scanUser(row)
}

func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	details, err := marshalDetails(u.VendorDetails)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, role = $4, is_approved = $5,
		    address = $6, mobile_number = $7, vendor_details = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11
	`, u.Email, u.Username, u.PasswordHash, u.Role, u.IsApproved,
		u.Address, u.MobileNumber, details, u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrStaleRecord
	}
	u.Version++
	return nil
}

func (r *UserRepository) SetApproval(ctx context.Context, id string, approved bool) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_approved = $1, version = version + 1, updated_at = now()
		WHERE id = $2 AND role = $3
	`, approved, id, entity.RoleCustomer)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var details []byte

	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.IsApproved,
		&u.Address, &u.MobileNumber, &details, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(details) > 0 {
		vd := &entity.VendorDetails{}
		if err := json.Unmarshal(details, vd); err != nil {
			return nil, err
		}
		if vd.Reputation.Comments == nil {
			vd.Reputation.Comments = []entity.Comment{}
		}
		u.VendorDetails = vd
	}
	return u, nil
}

func marshalDetails(vd *entity.VendorDetails) ([]byte, error) {
	if vd == nil {
		return nil, nil
	}
	return json.Marshal(vd)
}

var _ repository.UserRepository = (*UserRepository)(nil)
