package port

import "errors"

// ErrUnprocessable marks a delivery that can never succeed (malformed
// payload); the consumer parks it immediately instead of retrying.
var ErrUnprocessable = errors.New("unprocessable message")
