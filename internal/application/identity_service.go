package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/venduo/marketplace-identity/internal/domain/entity"
	repo "github.com/venduo/marketplace-identity/internal/domain/repository"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

var (
	// ErrInvalidCredentials covers both a lookup miss and a password
	// mismatch so callers cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	// ErrConflict reports a lost update: the record changed between the
	// read and the replace and retries were exhausted.
	ErrConflict = errors.New("record modified concurrently")
)

// PasswordHasher is the credential verifier contract.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// RefreshTokenStore persists the refresh token issued to a user.
type RefreshTokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// ApprovalNotifier announces customer registrations awaiting approval.
// Delivery is best-effort; failures never fail the registration.
type ApprovalNotifier interface {
	NotifyPendingApproval(ctx context.Context, u *entity.User) error
}

// IdentityService owns registration, authentication and the customer
// approval workflow on top of the user repository.
type IdentityService struct {
	Repo         repo.UserRepository
	Hasher       PasswordHasher
	JWT          *helpers.JWTManager
	Tokens       RefreshTokenStore
	Notifier     ApprovalNotifier
	Logger       *logrus.Logger
	GCS          *storage.Client
	GCSBucket    string
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewIdentityService(r repo.UserRepository, hasher PasswordHasher, jwt *helpers.JWTManager,
	tokens RefreshTokenStore, notifier ApprovalNotifier, logger *logrus.Logger) *IdentityService {
	return &IdentityService{
		Repo:     r,
		Hasher:   hasher,
		JWT:      jwt,
		Tokens:   tokens,
		Notifier: notifier,
		Logger:   logger,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	Role         entity.Role
	Address      string
	MobileNumber string
}

// Register creates an account. Email uniqueness is checked within the role's
// partition; the store's partial unique indexes backstop the check-then-insert
// window, so a concurrent duplicate still comes back as ErrEmailTaken.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	existing, err := s.Repo.GetByEmailInPartition(ctx, in.Email, in.Role.Partition())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		IsApproved:   in.Role != entity.RoleCustomer,
		Address:      in.Address,
		MobileNumber: in.MobileNumber,
	}
	if in.Role == entity.RoleVendor {
		u.VendorDetails = entity.NewVendorDetails()
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if u.Role == entity.RoleCustomer && s.Notifier != nil {
		if nErr := s.Notifier.NotifyPendingApproval(ctx, u); nErr != nil && s.Logger != nil {
			s.Logger.WithError(nErr).WithField("user_id", u.ID).Warn("approval notification failed")
		}
	}

	s.indexUser(ctx, u)
	return u, nil
}

// Authenticate resolves the user through the same partition rule used for
// uniqueness and verifies the password. A miss and a mismatch are
// indistinguishable in the result.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string, role entity.Role) (*entity.User, error) {
	u, err := s.Repo.GetByEmailInPartition(ctx, email, role.Partition())
	if err != nil {
		return nil, err
	}
	if u == nil || !s.Hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login authenticates and issues an access/refresh token pair. The refresh
// token is persisted against the user id so it can be checked on rotation.
func (s *IdentityService) Login(ctx context.Context, email, password string, role entity.Role) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password, role)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *IdentityService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Role.String())
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Role.String())
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Tokens.Save(ctx, u.ID, refresh, s.JWT.RefreshTTL); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the token pair if the presented refresh token matches the
// stored one for its user.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	stored, err := s.Tokens.Get(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if stored == "" || stored != refreshToken {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	if u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, u)
}

// Logout revokes the stored refresh token.
func (s *IdentityService) Logout(ctx context.Context, userID string) error {
	return s.Tokens.Delete(ctx, userID)
}

// SetCustomerApproval flips the approval gate on a customer account. It
// reports false without error when the id is unknown or not a customer.
// Both directions are allowed; the gate is a plain boolean.
func (s *IdentityService) SetCustomerApproval(ctx context.Context, id string, approved bool) (bool, error) {
	return s.Repo.SetApproval(ctx, id, approved)
}

func (s *IdentityService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *IdentityService) LookupByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	Username     string
	Address      string
	MobileNumber string
}

// UpdateProfile replaces the whole record with the mutated copy, guarded by
// the version read. A stale version surfaces as ErrConflict; callers retry.
func (s *IdentityService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if in.Username != "" {
		u.Username = in.Username
	}
	if in.Address != "" {
		u.Address = in.Address
	}
	if in.MobileNumber != "" {
		u.MobileNumber = in.MobileNumber
	}
	if err := s.Repo.Replace(ctx, u); err != nil {
		if errors.Is(err, repo.ErrStaleRecord) {
			return nil, ErrConflict
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

func (s *IdentityService) DeleteUser(ctx context.Context, id string) error {
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}

func (s *IdentityService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.ListAll(ctx)
}

// UploadVendorLogo stores the image in GCS and records its public URL on the
// vendor profile through the same versioned replace as comment writes.
func (s *IdentityService) UploadVendorLogo(ctx context.Context, vendorID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("object storage not configured")
	}
	u, err := s.Repo.GetByID(ctx, vendorID)
	if err != nil {
		return "", err
	}
	if !u.IsVendor() {
		return "", ErrUserNotFound
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("logos", vendorID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.VendorDetails.LogoURL = url
	if err := s.Repo.Replace(ctx, u); err != nil {
		if errors.Is(err, repo.ErrStaleRecord) {
			return "", ErrConflict
		}
		return "", err
	}
	s.indexUser(ctx, u)
	return url, nil
}
