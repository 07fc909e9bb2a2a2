// Package models defines the persistence model of the honeypot: attackers,
// the credential pairs they try, and the files they upload.
package models

// AllModels returns all models for database migration
func AllModels() []any {
	return []any{
		&Attacker{},
		&Credential{},
		&AttackerCredential{},
		&UploadedFile{},
	}
}
