package models

import (
	"time"

	"github.com/marmos91/ftpot/pkg/vfs"
)

// Attacker is one remote host observed on the control channel, keyed by
// source IP. LoginCount tracks PASS attempts across sessions; once the
// attempt threshold is reached the credential pair in use is bound via
// CredentialID and a deception filesystem is provisioned.
type Attacker struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	IP           string          `gorm:"uniqueIndex;not null" json:"ip"`
	LoginCount   uint            `gorm:"not null;default:0" json:"login_count"`
	CredentialID *uint           `gorm:"index" json:"credential_id"`
	FileSystem   *vfs.FileSystem `gorm:"serializer:json" json:"file_system"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Credential *Credential `gorm:"foreignKey:CredentialID" json:"credential,omitempty"`
}

// TableName returns the table name for the Attacker model
func (Attacker) TableName() string {
	return "attackers"
}

// IsBound reports whether the attacker has been admitted and has a bound
// credential pair.
func (a *Attacker) IsBound() bool {
	return a.CredentialID != nil
}
