package models

import "time"

// PendingRegistration is a staged, unconfirmed registration. It is never
// created without an OTP and an expiry, and it self-expires in Redis once
// ExpiresAt is reached. The password is hashed before staging; plaintext
// never reaches the store.
type PendingRegistration struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	IDNumber     string    `json:"id_number"`
	PasswordHash string    `json:"password_hash"`
	IDImage      *string   `json:"id_image,omitempty"`
	OTP          string    `json:"otp"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the OTP window has lapsed. The store-level TTL
// normally removes the record first; this is the check-on-read backstop.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// InitiateRequest is the public registration payload. The optional ID
// document travels as a separate multipart file.
type InitiateRequest struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	Email     string `form:"email" json:"email"`
	Phone     string `form:"phone" json:"phone"`
	IDNumber  string `form:"id_number" json:"id_number"`
	Password  string `form:"password" json:"password"`
}

// InitiateResponse returns the staging id the client confirms against.
type InitiateResponse struct {
	PendingID string `json:"pending_id"`
}

// VerifyRequest submits the emailed code for a staged registration.
type VerifyRequest struct {
	PendingID string `json:"pending_id" binding:"required"`
	Code      string `json:"otp" binding:"required"`
}

// VerifyResult distinguishes a wrong code from an expired or absent
// record, so the client can offer the right remediation.
type VerifyResult struct {
	Matched bool `json:"matched"`
	Expired bool `json:"expired"`
}
