package models

import "time"

// UploadedFile records one STOR transfer. Location is set only when real
// uploads are kept on disk; Hash is the hex SHA-256 of the received bytes.
// VirusTotalResult stays nil until the housekeeper enriches the row.
type UploadedFile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AttackerID       uint      `gorm:"index;not null" json:"attacker_id"`
	Filename         string    `gorm:"not null" json:"filename"`
	Location         *string   `json:"location"`
	Hash             string    `gorm:"index;not null" json:"hash"`
	Size             int64     `gorm:"not null" json:"size"`
	VirusTotalResult *string   `json:"virus_total_result"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Attacker *Attacker `gorm:"foreignKey:AttackerID" json:"attacker,omitempty"`
}

// TableName returns the table name for the UploadedFile model
func (UploadedFile) TableName() string {
	return "uploaded_files"
}
