package middleware

import "context"

// SetRequestIDForTest stores id as the request id of ctx without running the
// RequestID middleware.
func SetRequestIDForTest(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}
