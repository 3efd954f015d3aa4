package models

import "time"

// User is a confirmed registrant. Email, phone and ID number are unique
// across all users for the lifetime of the system.
type User struct {
	ID           int64     `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	IDNumber     string    `db:"id_number" json:"id_number"`
	Role         Role      `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IDImage      *string   `db:"id_image" json:"id_image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID        int64     `json:"id" example:"42"`
	FirstName string    `json:"first_name" example:"John"`
	LastName  string    `json:"last_name" example:"Doe"`
	Email     string    `json:"email" example:"john@example.com"`
	Phone     string    `json:"phone" example:"66850080"`
	IDNumber  string    `json:"id_number" example:"295072100108"`
	Role      Role      `json:"role" enums:"SuperAdmin,Admin,Voter"`
	IDImage   *string   `json:"id_image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		IDNumber:  u.IDNumber,
		Role:      u.Role,
		IDImage:   u.IDImage,
		CreatedAt: u.CreatedAt,
	}
}

// CreateUserRequest is the administrator direct-create payload. Unlike
// public registration it may carry any valid role and bypasses the OTP flow.
type CreateUserRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	IDNumber  string `form:"id_number" json:"id_number"`
	Role      string `form:"role" json:"role"`
	Password  string `form:"password" json:"password"`
}

// UpdateUserRequest carries a profile update. Zero-valued fields are left
// untouched; a non-empty password is re-hashed. Role changes are honored
// only when the caller is an administrator.
type UpdateUserRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	Role      string `form:"role" json:"role"`
	Password  string `form:"password" json:"password"`
}

// LoginRequest authenticates by email or phone plus password.
type LoginRequest struct {
	Identifier string `json:"email_or_phone" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and the public user fields.
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// ContactRequest is the public contact-form payload relayed by email.
type ContactRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	IDNumber  string `json:"id_number" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// ExistsResponse answers a uniqueness pre-check.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}
