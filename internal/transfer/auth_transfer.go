package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// OAuthStateClaims rides through the Twitter authorize redirect as the
// signed state parameter, carrying the PKCE verifier back to the callback
// without server-side session state.
type OAuthStateClaims struct {
	UserID   string `json:"user_id"`
	Verifier string `json:"verifier"`
	jwt.RegisteredClaims
}

// ConnectionInfo is the public view of a linked Twitter account.
type ConnectionInfo struct {
	Connected bool      `json:"connected"`
	Username  string    `json:"username,omitempty"`
	ExpiresAt time.Time `json:"token_expires_at,omitempty"`
}
