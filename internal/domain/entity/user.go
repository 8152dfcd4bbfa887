package entity

import (
	"errors"
	"time"
)

// Role is the closed set of account roles. Email uniqueness and the login
// lookup are scoped by partition, not by exact role (see Partition).
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a wire-level role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

func (r Role) String() string { return string(r) }

// Partition is the uniqueness scope for email addresses: customer accounts
// form one partition, all staff roles (vendor, admin, ...) form the other.
type Partition string

const (
	PartitionCustomer Partition = "customer"
	PartitionStaff    Partition = "staff"
)

func (r Role) Partition() Partition {
	if r == RoleCustomer {
		return PartitionCustomer
	}
	return PartitionStaff
}

// User is the aggregate root for the identity domain.
// PasswordHash is a bcrypt hash; Version guards whole-record replaces.
type User struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	Role          Role
	IsApproved    bool
	Address       string
	MobileNumber  string
	VendorDetails *VendorDetails
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsVendor reports whether the user carries a vendor profile that can
// receive comments.
func (u *User) IsVendor() bool {
	return u != nil && u.Role == RoleVendor && u.VendorDetails != nil
}

// VendorDetails is present only on users with RoleVendor.
type VendorDetails struct {
	LogoURL    string     `json:"logo_url,omitempty"`
	Reputation Reputation `json:"reputation"`
}

// NewVendorDetails returns an empty vendor profile ready to receive comments.
func NewVendorDetails() *VendorDetails {
	return &VendorDetails{Reputation: Reputation{Comments: []Comment{}}}
}
