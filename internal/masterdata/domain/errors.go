package masterdata

import "errors"

// ErrNotFound signals a missing masterdata record.
var ErrNotFound = errors.New("masterdata: not found")
