package models

import "time"

// Athlete is a registered competitor. ID number is unique among athletes.
type Athlete struct {
	ID          int64     `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	IDNumber    string    `db:"id_number" json:"id_number"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Event       string    `db:"event" json:"event"`
	Description string    `db:"description" json:"description"`
	Image       *string   `db:"image" json:"image,omitempty"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	UpdatedBy   *int64    `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Display names of the creating/updating user, filled by list/get joins.
	CreatedByName string `db:"created_by_name" json:"created_by_name,omitempty"`
	UpdatedByName string `db:"updated_by_name" json:"updated_by_name,omitempty"`
}

// CreateAthleteRequest carries a new athlete. The image travels as a
// separate multipart file.
type CreateAthleteRequest struct {
	FirstName   string `form:"first_name" json:"first_name"`
	LastName    string `form:"last_name" json:"last_name"`
	IDNumber    string `form:"id_number" json:"id_number"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth"`
	Event       string `form:"event" json:"event"`
	Description string `form:"description" json:"description"`
}

// UpdateAthleteRequest carries a partial update; zero-valued fields are
// left untouched.
type UpdateAthleteRequest struct {
	FirstName   string `form:"first_name" json:"first_name"`
	LastName    string `form:"last_name" json:"last_name"`
	DateOfBirth string `form:"date_of_birth" json:"date_of_birth"`
	Event       string `form:"event" json:"event"`
	Description string `form:"description" json:"description"`
}
