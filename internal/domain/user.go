package domain

import "time"

// User es el registro persistido de un usuario. PasswordHash nunca se serializa.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SanitizedUser es la unica vista de usuario que cruza los limites del servicio.
type SanitizedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Sanitize descarta el hash de la contraseña.
func (u User) Sanitize() SanitizedUser {
	return SanitizedUser{ID: u.ID, Email: u.Email}
}
