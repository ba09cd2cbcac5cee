package auth

import "time"

// RegisterRequest is the request body for registration
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse echoes the stored record. The plaintext password is
// never part of it.
type RegisterResponse struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// LoginRequest carries credentials taken from query or form fields.
type LoginRequest struct {
	Username string
	Password string
}

type LoginResponse struct {
	Message string `json:"message"`
}

// StudentRegistered is published after a student account is created.
type StudentRegistered struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}
