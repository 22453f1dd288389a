package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/WorldBankfinancials/ledger-api/internal/auth"
	"github.com/WorldBankfinancials/ledger-api/internal/domain"
	"github.com/WorldBankfinancials/ledger-api/internal/logging"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	SetVerified(ctx context.Context, id uuid.UUID, verified bool) error
}

type UserService struct {
	users      userRepo
	audit      adminActionRepo
	jwtSecret  string
	jwtExpiry  time.Duration
	bcryptCost int
}

func NewUserService(users userRepo, audit adminActionRepo, jwtSecret string, jwtExpiry time.Duration, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		audit:      audit,
		jwtSecret:  jwtSecret,
		jwtExpiry:  jwtExpiry,
		bcryptCost: bcryptCost,
	}
}

type RegisterRequest struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Country  string
	Address  string
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("Register: email: %w", domain.ErrInvalidRequest)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("Register: password too short: %w", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("Register: full name: %w", domain.ErrInvalidRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("Register: hash: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		Role:         domain.UserRoleCustomer,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	setOptional(&user.Phone, req.Phone)
	setOptional(&user.Country, req.Country)
	setOptional(&user.Address, req.Address)

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and mints a JWT. Unknown email and wrong
// password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
		}
		return nil, "", fmt.Errorf("Login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("Login: %w", domain.ErrInvalidCredentials)
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("Login: %w", domain.ErrUserInactive)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role, s.jwtSecret, s.jwtExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("Login: token: %w", err)
	}
	return user, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return user, nil
}

func (s *UserService) ListCustomers(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	users, total, err := s.users.ListCustomers(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListCustomers: %w", err)
	}
	return users, total, nil
}

// VerifyCustomer flips the verified flag and records who did it.
func (s *UserService) VerifyCustomer(ctx context.Context, customerID, adminID uuid.UUID, verified bool) error {
	user, err := s.users.GetByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("VerifyCustomer: %w", err)
	}
	if user.Role != domain.UserRoleCustomer {
		return fmt.Errorf("VerifyCustomer: %w", domain.ErrInvalidRequest)
	}

	if err := s.users.SetVerified(ctx, customerID, verified); err != nil {
		return fmt.Errorf("VerifyCustomer: %w", err)
	}

	note := fmt.Sprintf("verified=%t", verified)
	if err := s.audit.Create(ctx, nil, &domain.AdminAction{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     domain.AdminActionVerifyCustomer,
		TargetType: "user",
		TargetID:   customerID,
		Notes:      &note,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("VerifyCustomer: audit: %w", err)
	}

	logging.FromContext(ctx).Info("customer verification updated",
		"customer_id", customerID,
		"admin_id", adminID,
		"verified", verified,
	)
	return nil
}

func setOptional(dst **string, v string) {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		*dst = &trimmed
	}
}
