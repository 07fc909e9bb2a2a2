package models

import "errors"

var (
	// ErrAttackerNotFound is returned when an attacker does not exist
	ErrAttackerNotFound = errors.New("attacker not found")

	// ErrCredentialNotFound is returned when a credential pair does not exist
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrFileNotFound is returned when an uploaded file does not exist
	ErrFileNotFound = errors.New("uploaded file not found")

	// ErrDuplicateAttacker is returned when an attacker with the same IP already exists
	ErrDuplicateAttacker = errors.New("attacker already exists")

	// ErrDuplicateLink is returned when an attacker/credential link already exists
	ErrDuplicateLink = errors.New("attacker credential link already exists")
)
