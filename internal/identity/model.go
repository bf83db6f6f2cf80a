package identity

import "time"

// User is a registered farmer account. PasswordHash never leaves the service
// boundary; handlers render profiles through their own response types.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	FarmLocation *string
	FarmSize     *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration carries the fields accepted when creating an account.
type Registration struct {
	Name         string
	Email        string
	Password     string
	Phone        string
	FarmLocation *string
	FarmSize     *float64
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	Name         *string
	Phone        *string
	FarmLocation *string
	FarmSize     *float64
}
