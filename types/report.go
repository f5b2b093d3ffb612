package types

import "time"

// Report is a user-submitted disaster incident report.
type Report struct {
	ID int `json:"id" db:"id"`

	// UserID references the account that submitted the report.
	UserID int `json:"user_id" db:"user_id"`

	// DisasterType classifies the incident, e.g. "flood" or "landslide".
	DisasterType string `json:"disaster_type" db:"disaster_type"`

	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`

	// Location is a free-text description of where the incident occurred.
	Location string `json:"location" db:"location"`

	// ContactInfo is optional reporter contact details.
	ContactInfo string `json:"contact_info,omitempty" db:"contact_info"`

	// ImageURL is the public URL of an attached photo, if any.
	ImageURL string `json:"image_url,omitempty" db:"image_url"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
