package domain

import "time"

type User struct {
	UserID         string    `json:"id" dynamodbav:"user_id"`
	FullName       string    `json:"full_name" dynamodbav:"full_name"`
	Email          string    `json:"email" dynamodbav:"email"`
	PasswordHash   string    `json:"-" dynamodbav:"password_hash"`
	Role           string    `json:"role" dynamodbav:"role"`
	EmailConfirmed bool      `json:"email_confirmed" dynamodbav:"email_confirmed"`
	Enable         int       `json:"enable" dynamodbav:"enable"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RegisterRequest is the raw registration submission. Nothing in it is
// trusted until it has been through the registration pipeline.
type RegisterRequest struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email" validate:"required,email"`
}
