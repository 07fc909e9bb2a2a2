package models

import "time"

// AttackerCredential links an attacker to every credential pair it tried
// before admission, one row per distinct pair.
type AttackerCredential struct {
	AttackerID   uint      `gorm:"primaryKey" json:"attacker_id"`
	CredentialID uint      `gorm:"primaryKey" json:"credential_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the table name for the AttackerCredential model
func (AttackerCredential) TableName() string {
	return "attacker_credentials"
}
