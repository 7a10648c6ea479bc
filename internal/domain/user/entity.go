// internal/domain/user/entity.go
package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role is the authorization role of a user
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User is the identity anchor: one per phone number
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Phone        string    `gorm:"uniqueIndex;not null;size:20" json:"phone"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	Email        *string   `gorm:"size:255" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRole rows grant roles; an admin row is authoritative
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	Role      Role      `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_roles_user_role" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

// Profile holds display and contact attributes. Its ID is the user ID.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  *string   `gorm:"size:255" json:"full_name"`
	Email     *string   `gorm:"size:255" json:"email"`
	Phone     *string   `gorm:"size:20" json:"phone"`
	Address   *string   `gorm:"type:text" json:"address"`
	City      *string   `gorm:"size:100" json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE;" json:"-"`
}

// LoyaltyPoints is the per-user running balance accrued from completed orders
type LoyaltyPoints struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Points         int64     `gorm:"not null;default:0" json:"points"`
	LifetimePoints int64     `gorm:"not null;default:0" json:"lifetime_points"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (User) TableName() string          { return "users" }
func (UserRole) TableName() string      { return "user_roles" }
func (Profile) TableName() string       { return "profiles" }
func (LoyaltyPoints) TableName() string { return "loyalty_points" }

// Principal is the authenticated caller with its role resolved once per request.
type Principal struct {
	ID      uuid.UUID
	Phone   string
	IsAdmin bool
}

// Role returns the principal's role
func (p Principal) Role() Role {
	if p.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

// CanAccess reports whether the principal may see a resource owned by ownerID.
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.IsAdmin || p.ID == ownerID
}

// PointsFor is the loyalty accrual for a completed order total: one point per
// 100 currency units, rounded down.
func PointsFor(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Div(decimal.NewFromInt(100)).Floor().IntPart()
}
