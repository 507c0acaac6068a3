// Package errs provides the error types handlers use to report failures
// that are safe to show to the caller.
package errs

import "errors"

// Response is the body sent back for any failed request.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error whose message can be shown to the caller, paired
// with the HTTP status to respond with.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps the error with the status to respond with. Handlers use
// it for expected failures such as bad input or a conflicting chain state.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap lets errors.Is see the ledger error underneath.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted reports whether a Trusted error is in the chain.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the Trusted error in the chain or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
