package user

import "time"

type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the customer-editable part of an account. Empty fields keep
// their current values on update.
type Profile struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// SignupRequest payload of registration.
// swagger:model SignupRequest
type SignupRequest struct {
	Username  string `json:"username"   example:"jdoe"`
	Password  string `json:"password"   example:"s3cret"`
	FirstName string `json:"first_name" example:"Jane"`
	LastName  string `json:"last_name"  example:"Doe"`
	Email     string `json:"email"      example:"jane@example.com"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// LoginRequest payload of authentication.
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" example:"jdoe"`
	Password string `json:"password" example:"s3cret"`
}

// UpdateRequest payload of profile update. A password change requires the
// current password.
// swagger:model UpdateRequest
type UpdateRequest struct {
	Profile
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
