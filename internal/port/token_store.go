package port

import "context"

// TokenStore holds the session's bearer token. Implementations are read on
// every outgoing request, so a change takes effect on the next call.
type TokenStore interface {
	// Token returns the current token, or "" when there is no session.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}
