package admin

import (
	"time"

	"github.com/akeren/multiverse-waitlist/pkg/auth"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func ToLoginResponse(token *auth.Token) LoginResponse {
	return LoginResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
