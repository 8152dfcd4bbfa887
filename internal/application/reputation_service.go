package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
	repo "github.com/venduo/marketplace-identity/internal/domain/repository"
)

var (
	ErrVendorNotFound  = errors.New("vendor not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidRating   = errors.New("rating out of range")
)

const (
	MinRating = 1
	MaxRating = 5

	// replaceAttempts bounds the read-recompute-replace retries when a
	// concurrent writer bumps the vendor's version first.
	replaceAttempts = 3
)

// ReputationService maintains the comment ledger and the cached average
// rating on vendor profiles. Every mutation recomputes the average from the
// full comment set and persists through a version-guarded whole-record
// replace, so concurrent writers cannot silently drop each other's comments.
type ReputationService struct {
	Repo   repo.UserRepository
	Logger *logrus.Logger
}

func NewReputationService(r repo.UserRepository, logger *logrus.Logger) *ReputationService {
	return &ReputationService{Repo: r, Logger: logger}
}

// AddComment appends a comment with a fresh id to the vendor's ledger and
// recomputes the average rating.
func (s *ReputationService) AddComment(ctx context.Context, vendorID, text string, rating float64) (*entity.User, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}

	for attempt := 0; attempt < replaceAttempts; attempt++ {
		u, err := s.loadVendor(ctx, vendorID)
		if err != nil {
			return nil, err
		}

		u.VendorDetails.Reputation.Add(entity.Comment{
			ID:        uuid.NewString(),
			Text:      text,
			Rating:    rating,
			CreatedAt: time.Now(),
		})

		if err := s.replace(ctx, u, attempt); err != nil {
			if errors.Is(err, repo.ErrStaleRecord) {
				continue
			}
			return nil, err
		}
		return u, nil
	}
	return nil, ErrConflict
}

// UpdateComment replaces the text of an existing comment. The rating is not
// editable through this operation; the average is still recomputed from the
// full set so the cached aggregate never drifts from its source.
func (s *ReputationService) UpdateComment(ctx context.Context, vendorID, commentID, newText string) (*entity.User, error) {
	for attempt := 0; attempt < replaceAttempts; attempt++ {
		u, err := s.loadVendor(ctx, vendorID)
		if err != nil {
			return nil, err
		}

		c := u.VendorDetails.Reputation.Find(commentID)
		if c == nil {
			return nil, ErrCommentNotFound
		}
		c.Text = newText
		u.VendorDetails.Reputation.Recalculate()

		if err := s.replace(ctx, u, attempt); err != nil {
			if errors.Is(err, repo.ErrStaleRecord) {
				continue
			}
			return nil, err
		}
		return u, nil
	}
	return nil, ErrConflict
}

// loadVendor resolves a user that can receive comments. A missing record, a
// non-vendor role, and a vendor without a reputation sub-entity are all the
// same not-found outcome.
func (s *ReputationService) loadVendor(ctx context.Context, vendorID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if !u.IsVendor() {
		return nil, ErrVendorNotFound
	}
	return u, nil
}

func (s *ReputationService) replace(ctx context.Context, u *entity.User, attempt int) error {
	err := s.Repo.Replace(ctx, u)
	if errors.Is(err, repo.ErrStaleRecord) && s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"vendor_id": u.ID, "attempt": attempt + 1}).
			Debug("vendor record changed concurrently, retrying")
	}
	return err
}
