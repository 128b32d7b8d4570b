package errs

import (
	"errors"
)

var (
	// MT: Constant after initialization; immutable
	ErrNoFlowMapping = errors.New("Unable to get flow info")
	ErrNotFound      = errors.New("Entity not found")
	ErrBadRecord     = errors.New("Malformed entity record")
	ErrStoreClosed   = errors.New("TimelineStore is closed")
)
