package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
)

type User struct {
	ID              uuid.UUID
	Email           string
	FullName        string
	Phone           *string
	Country         *string
	Address         *string
	PasswordHash    string
	TransferPinHash *string
	Role            UserRole
	IsVerified      bool
	IsActive        bool
	CreatedAt       time.Time
}
