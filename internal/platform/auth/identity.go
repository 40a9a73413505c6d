package auth

import "context"

// Identity is the verified caller identity attached to a request context.
// Email is only populated when the identity provider has verified it.
type Identity struct {
	UserID        string
	Name          string
	Email         string
	EmailVerified bool
	Role          string
}

// VerifiedEmail returns the caller's verified email address, if any.
// Access-list checks must only ever see verified emails.
func (id Identity) VerifiedEmail() (string, bool) {
	if !id.EmailVerified || id.Email == "" {
		return "", false
	}
	return id.Email, true
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey{})
	id, ok := v.(Identity)
	return id, ok
}
