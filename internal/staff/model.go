package staff

import "github.com/tableserve/api/internal/auth"

type User struct {
	ID           string    `json:"id"`
	VenueID      string    `json:"venueId"`
	Role         auth.Role `json:"role"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
}
