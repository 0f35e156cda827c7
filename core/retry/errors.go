package retry

import "errors"

// ErrRetryExhausted is wrapped, together with the last transport error, into
// the error returned once every attempt has failed at the connection level.
//
// Example:
//
//	if errors.Is(err, retry.ErrRetryExhausted) {
//	    // all attempts failed
//	}
var ErrRetryExhausted = errors.New("all retry attempts exhausted")
