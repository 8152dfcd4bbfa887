package repository

import (
	"context"
	"errors"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
)

var (
	// ErrDuplicateEmail is returned by Create when the store's partitioned
	// uniqueness constraint rejects the insert.
	ErrDuplicateEmail = errors.New("email already exists in partition")

	// ErrStaleRecord is returned by Replace when the record's version no
	// longer matches the one that was read, i.e. a concurrent writer got
	// there first and the caller must redo its read-modify-write cycle.
	ErrStaleRecord = errors.New("record version is stale")
)

// UserRepository is the contract for the authoritative user store.
// Lookup misses are reported as a nil user with a nil error.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByEmailInPartition(ctx context.Context, email string, p entity.Partition) (*entity.User, error)

	// Replace overwrites the whole record, guarded by u.Version. On success
	// the version on u is bumped to the stored one.
	Replace(ctx context.Context, u *entity.User) error

	// SetApproval flips the approval flag on a customer record. It reports
	// whether exactly one record was modified; unknown ids and non-customer
	// records are a no-op, not an error.
	SetApproval(ctx context.Context, id string, approved bool) (bool, error)

	Delete(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]*entity.User, error)
}
