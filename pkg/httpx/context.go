package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID  ctxKey = "user_id"
	CtxKeyRole    ctxKey = "role"
	CtxKeyChapter ctxKey = "chapter"
	CtxKeyClaims  ctxKey = "claims"
)

// UserIDFromCtx returns the authenticated user's ID, or "" if anonymous.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// RoleFromCtx returns the authenticated user's role, or "" if anonymous.
func RoleFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}

// ChapterFromCtx returns the authenticated user's chapter ID, or "".
func ChapterFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyChapter).(string); ok {
		return v
	}
	return ""
}
