package models

import "context"

// Requester identifies the user behind a request.
type Requester struct {
	UserID    int64
	SessionID string
}

type requesterKey struct{}

// WithRequester stores r in ctx.
func WithRequester(ctx context.Context, r Requester) context.Context {
	return context.WithValue(ctx, requesterKey{}, r)
}

// RequesterFromContext returns the requester stored by WithRequester.
func RequesterFromContext(ctx context.Context) (Requester, bool) {
	r, ok := ctx.Value(requesterKey{}).(Requester)
	return r, ok
}
