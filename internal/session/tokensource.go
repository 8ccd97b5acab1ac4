package session

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenSource adapts a Store to an oauth2.TokenSource so the session token can
// be attached to outgoing requests as a bearer credential. The token is read
// from the store on every request, so a login or logout in the same process is
// picked up without rebuilding the HTTP client.
func TokenSource(ctx context.Context, store Store) oauth2.TokenSource {
	return &storeTokenSource{ctx: ctx, store: store}
}

type storeTokenSource struct {
	ctx   context.Context
	store Store
}

func (sts *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := sts.store.Get(sts.ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
