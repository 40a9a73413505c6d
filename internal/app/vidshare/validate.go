package vidshare

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

var ErrInvalidExpiry = errors.New("invalid expiry date")
var ErrInvalidEmail = errors.New("invalid email address")

// ParseExpiry turns an expiry string into an absolute timestamp. Accepts
// RFC 3339 or a bare date (interpreted as UTC midnight). Empty input means
// "never expires" and yields nil.
func ParseExpiry(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	return nil, ErrInvalidExpiry
}

// ValidateEmail is the minimal check used by the check-email endpoint.
// Access-list entries are stored as supplied; dedup and formatting are the
// creation UI's concern.
func ValidateEmail(raw string) error {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return ErrInvalidEmail
	}
	if addr.Address != raw {
		return ErrInvalidEmail
	}
	return nil
}
