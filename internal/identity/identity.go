// Package identity resolves bearer credentials into the caller's subject.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/Radennn1/tutoring-backend/pkg/utils"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the verified caller.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

type Verifier interface {
	VerifyCredential(ctx context.Context, token string) (*Identity, error)
}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) VerifyCredential(_ context.Context, token string) (*Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" || v.secret == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := utils.ValidateToken(token, v.secret)
	if err != nil {
		return nil, errors.Join(ErrUnauthenticated, err)
	}
	return &Identity{
		Subject: claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}
