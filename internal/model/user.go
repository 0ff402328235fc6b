package model

import "time"

// User is a staff account this service authenticates against. Account
// management itself lives elsewhere; this table only has to be enough for
// login and re-authentication.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Name         string    `gorm:"size:256;not null" json:"name"`
	Role         string    `gorm:"size:64;not null" json:"role"`
	PasswordHash string    `gorm:"size:256;not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"-"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}
