package remote

import "errors"

// Transport error taxonomy. Permission-denied and not-authenticated are
// non-fatal to every caller: coordinators fall back to the cache silently.
var (
	ErrNotFound         = errors.New("remote: document not found")
	ErrPermissionDenied = errors.New("remote: permission denied")
	ErrNotAuthenticated = errors.New("remote: no authenticated session")
)

// Silent reports whether an error must be swallowed rather than logged at
// error level (the session is simply not entitled to the collection).
func Silent(err error) bool {
	return errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrNotAuthenticated)
}
