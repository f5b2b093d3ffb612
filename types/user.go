package types

import "time"

// User roles.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account in the system.
// It contains identity, contact, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the user's unique email address, used for login.
	Email string `json:"email" db:"email"`

	// Name is the user's display or full name.
	Name string `json:"name" db:"name"`

	// Role indicates the user's authorization level within the
	// system ("customer" or "admin").
	Role string `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ImageURL is the public URL of the user's profile image, if any.
	ImageURL string `json:"image_url,omitempty" db:"image_url"`

	// PhoneNumber is the number flood alerts are sent to. Users without
	// one are skipped during alert broadcasts.
	PhoneNumber string `json:"phone_number,omitempty" db:"phone_number"`

	// Location is a free-text area description, matched by substring
	// when targeting alerts.
	Location string `json:"location" db:"location"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
