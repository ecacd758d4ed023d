package admin

import "errors"

// Sentinel errors for admin operations.
var (
	ErrMissingID = errors.New("admin: record id is required")
	ErrNilClient = errors.New("admin: api and query clients are required")

	ErrReservedFilter = errors.New("admin: filter name is reserved")
)
