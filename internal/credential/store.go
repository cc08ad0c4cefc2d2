package credential

import "errors"

// ErrMissing means no cookie is configured for the requested account. This is
// a deployment problem, not a transient fetch failure, and is never retried.
var ErrMissing = errors.New("credential: no cookie configured for account")

// Store resolves an account uid to a logged-in session cookie.
type Store interface {
	Lookup(uid string) (string, error)
}

// Map is a Store backed by the config cookie map.
type Map map[string]string

func (m Map) Lookup(uid string) (string, error) {
	cookie, ok := m[uid]
	if !ok || cookie == "" {
		return "", ErrMissing
	}
	return cookie, nil
}
