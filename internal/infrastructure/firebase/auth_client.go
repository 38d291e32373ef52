package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

// TokenInfo is the caller identity extracted from a verified ID token.
type TokenInfo struct {
	UID   string
	Email string
}

func (a *AuthClient) VerifyToken(ctx context.Context, idToken string) (*TokenInfo, error) {
	token, err := a.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	info := &TokenInfo{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		info.Email = email
	}

	return info, nil
}
