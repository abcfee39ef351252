package domain

import "time"

// User roles and statuses.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	UserStatusActive   = "ACTIVE"
	UserStatusDisabled = "DISABLED"
)

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Email        *string    `json:"email,omitempty" dynamodbav:"email"`
	Phone        *string    `json:"phone,omitempty" dynamodbav:"phone"`
	Name         string     `json:"name" dynamodbav:"name"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	Status       string     `json:"status" dynamodbav:"status"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}
