package models

import "time"

// Role values for a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Temperature unit values for user settings.
const (
	UnitFahrenheit = "fahrenheit"
	UnitCelsius    = "celsius"
)

// Place is a saved location reference. PlaceID is unique within a user's
// saved set.
type Place struct {
	PlaceID  string `json:"placeId" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// Settings holds per-user display and notification preferences.
type Settings struct {
	Unit         string `json:"unit" validate:"required,oneof=fahrenheit celsius"`
	EnableAlerts bool   `json:"enableAlerts"`
}

// DefaultSettings returns the settings applied to new accounts.
func DefaultSettings() Settings {
	return Settings{Unit: UnitFahrenheit, EnableAlerts: false}
}

// User represents a user account in the system.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Role         string     `json:"role"`
	Deactivated  bool       `json:"deactivated"`
	DefaultPlace *Place     `json:"defaultPlace,omitempty"`
	Places       []Place    `json:"places"`
	Settings     Settings   `json:"settings"`
	ResetToken   *string    `json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FullName returns the user's display name, used in token claims.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasPlace reports whether the user already saved the given place.
func (u User) HasPlace(placeID string) bool {
	for _, p := range u.Places {
		if p.PlaceID == placeID {
			return true
		}
	}
	return false
}
