// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service handles signup, login and role lookups
type Service struct {
	db              *gorm.DB
	config          *config.Config
	log             *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		log:             log,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// SignupRequest accepts either a full phone or a country code plus local number
type SignupRequest struct {
	Phone           string `json:"phone"`
	CountryCode     string `json:"countryCode"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword"`
	FullName        string `json:"full_name"`
	Email           string `json:"email" binding:"omitempty,email"`
}

// LoginRequest represents login data
type LoginRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"countryCode"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password" binding:"required"`
}

// AccountView is the public shape of a user
type AccountView struct {
	ID       uuid.UUID `json:"id"`
	Phone    string    `json:"phone"`
	Email    *string   `json:"email"`
	FullName *string   `json:"full_name"`
	Role     Role      `json:"role"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User  AccountView `json:"user"`
	Token string      `json:"token"`
}

func (s *Service) resolvePhone(phone, countryCode, local string) (string, error) {
	p := auth.ComposePhone(phone, countryCode, local)
	if p == "" {
		return "", apperror.Validation("Phone number is required")
	}
	if !auth.ValidPhone(p) {
		return "", apperror.Validation("%s", auth.ErrInvalidPhone.Error())
	}
	return p, nil
}

func (s *Service) initialRole(phone string) Role {
	if auth.IsAllowlisted(phone, s.config.Security.AdminPhones) {
		return RoleAdmin
	}
	return RoleCustomer
}

// Signup creates a user, its role and its profile in one transaction.
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	phone, err := s.resolvePhone(req.Phone, req.CountryCode, req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, apperror.Validation("Password must be at least 6 characters")
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.Password {
		return nil, apperror.Validation("Passwords do not match")
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Persistence("failed to hash password", err)
	}

	u := User{Phone: phone, PasswordHash: hash, Email: optional(req.Email)}
	role := s.initialRole(phone)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("phone = ?", phone).Count(&count).Error; err != nil {
			return apperror.Persistence("failed to check phone", err)
		}
		if count > 0 {
			return apperror.Conflict("Phone number already registered")
		}
		if err := tx.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperror.Conflict("Phone number already registered")
			}
			return apperror.Persistence("failed to create user", err)
		}
		if err := tx.Create(&UserRole{UserID: u.ID, Role: role}).Error; err != nil {
			return apperror.Persistence("failed to assign role", err)
		}
		profile := Profile{ID: u.ID, FullName: optional(req.FullName), Email: u.Email, Phone: &phone}
		if err := tx.Create(&profile).Error; err != nil {
			return apperror.Persistence("failed to create profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Phone)
	if err != nil {
		return nil, apperror.Persistence("failed to issue token", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "role": role}).Info("user signed up")

	return &AuthResponse{
		User:  AccountView{ID: u.ID, Phone: u.Phone, Email: u.Email, FullName: optional(req.FullName), Role: role},
		Token: token,
	}, nil
}

// Login verifies credentials. Allowlisted phones get their admin role repaired.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	phone, err := s.resolvePhone(req.Phone, req.CountryCode, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var u User
	if err := db.Where("phone = ?", phone).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("Invalid phone number or password")
		}
		return nil, apperror.Persistence("failed to load user", err)
	}
	if err := s.passwordManager.VerifyPassword(req.Password, u.PasswordHash); err != nil {
		return nil, apperror.Unauthorized("Invalid phone number or password")
	}

	if auth.IsAllowlisted(phone, s.config.Security.AdminPhones) {
		if err := s.repairAdminRole(ctx, u.ID); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("failed to repair admin role")
		}
	}

	view, err := s.Account(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Phone)
	if err != nil {
		return nil, apperror.Persistence("failed to issue token", err)
	}

	return &AuthResponse{User: *view, Token: token}, nil
}

func (s *Service) repairAdminRole(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND role <> ?", userID, RoleAdmin).Delete(&UserRole{}).Error; err != nil {
			return fmt.Errorf("failed to clear roles: %w", err)
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&UserRole{UserID: userID, Role: RoleAdmin}).Error
	})
}

// IsAdmin reports whether the user holds an admin role row.
func (s *Service) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&UserRole{}).
		Where("user_id = ? AND role = ?", userID, RoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, apperror.Persistence("failed to resolve role", err)
	}
	return count > 0, nil
}

// Account returns the merged user, profile and role view.
func (s *Service) Account(ctx context.Context, userID uuid.UUID) (*AccountView, error) {
	db := s.db.WithContext(ctx)

	var u User
	if err := db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Persistence("failed to load user", err)
	}

	var p Profile
	if err := db.Where("id = ?", userID).Limit(1).Find(&p).Error; err != nil {
		return nil, apperror.Persistence("failed to load profile", err)
	}

	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	role := RoleCustomer
	if admin {
		role = RoleAdmin
	}

	email := u.Email
	if email == nil {
		email = p.Email
	}
	return &AccountView{ID: u.ID, Phone: u.Phone, Email: email, FullName: p.FullName, Role: role}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
