package mongodb

import "errors"

// Sentinel errors the service layer maps into its own taxonomy.
var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
)
