package domain

import "errors"

// ErrStoreUnavailable marks persistence failures. It is retryable and is
// never turned into one of the business denials.
var ErrStoreUnavailable = errors.New("store unavailable")
