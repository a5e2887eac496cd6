package auth

import (
	"context"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/enums"
)

type identityContextKey string

const identityKey identityContextKey = "auth_identity"

// Identity is the authenticated caller resolved to a local user row.
type Identity struct {
	UserID     int64
	ExternalID string
	Role       enums.Role
}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
