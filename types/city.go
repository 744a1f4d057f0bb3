package types

import "time"

// City is a tracked city together with its last-known weather reading.
// Each row belongs to exactly one user; the same user cannot track the
// same city name twice.
type City struct {
	// ID is the unique identifier of the tracked city row.
	ID int `json:"id" db:"id"`

	// Name is the city name as entered by the user.
	Name string `json:"city_name" db:"city_name"`

	// Temperature is the last fetched temperature in Celsius, rounded to
	// three decimal places and stored as text.
	Temperature string `json:"temperature" db:"temperature"`

	// Icon is the weather icon code reported by the weather API.
	Icon string `json:"icon" db:"icon"`

	// Description is the short weather description reported by the API.
	Description string `json:"description" db:"description"`

	// FetchedAt is when the snapshot above was last refreshed.
	FetchedAt time.Time `json:"fetched_at" db:"fetched_at"`

	// UserID is the owning user.
	UserID int `json:"user_id" db:"user_id"`
}
