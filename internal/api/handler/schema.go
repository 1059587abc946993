package handler

import "time"

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email"    validate:"required,email,max=150"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"    validate:"required,max=20"`
	Role     string `json:"role"     validate:"omitempty,oneof=Customer"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type balanceResponse struct {
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	Role     string  `json:"role"`
}

type errorResponse struct {
	Error string `json:"error"`
}
