package models

import "time"

// Credential is a username/password pair seen on the control channel,
// shared across attackers. Count tracks how often the pair was tried.
type Credential struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex:idx_credentials_pair;not null" json:"username"`
	Password  string    `gorm:"uniqueIndex:idx_credentials_pair;not null" json:"password"`
	Count     uint      `gorm:"not null;default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Credential model
func (Credential) TableName() string {
	return "credentials"
}
