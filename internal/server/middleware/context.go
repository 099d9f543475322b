package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeySessionID   contextKey = "session_id"
	ContextKeyUserID      contextKey = "user_id"
	ContextKeyAccessToken contextKey = "access_token"
)

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeySessionID).(uuid.UUID)
	return v, ok
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(string)
	return v, ok
}

func AccessTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyAccessToken).(string)
	return v, ok
}
