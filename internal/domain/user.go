package domain

import "time"

type User struct {
	ID                    string    `json:"id"`
	Email                 string    `json:"email"`
	PasswordHash          string    `json:"-"`
	Superuser             bool      `json:"is_superuser"`
	Active                bool      `json:"is_active"`
	ChangePasswordOnLogin bool      `json:"changePasswordOnLogin"`
	CreatedAt             time.Time `json:"created_at"`
}
