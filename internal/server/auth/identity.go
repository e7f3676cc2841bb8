package auth

import (
	"context"

	"github.com/dmitrijs2005/medtrack/internal/server/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID     string
	Role       models.Role
	MedTrackID string
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
