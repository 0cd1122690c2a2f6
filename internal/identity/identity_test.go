package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/Radennn1/tutoring-backend/pkg/utils"
)

func TestJWTVerifierResolvesIdentity(t *testing.T) {
	token, err := utils.GenerateToken("tutor-1", "tutor@example.com", "tutor", "secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	got, err := NewJWTVerifier("secret").VerifyCredential(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyCredential: %v", err)
	}
	if got.Subject != "tutor-1" || got.Email != "tutor@example.com" || got.Role != "tutor" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestJWTVerifierRejects(t *testing.T) {
	token, err := utils.GenerateToken("tutor-1", "", "", "secret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	cases := map[string]struct {
		secret string
		token  string
	}{
		"empty token":   {secret: "secret", token: ""},
		"wrong secret":  {secret: "other", token: token},
		"garbage":       {secret: "secret", token: "not-a-jwt"},
		"no secret set": {secret: "", token: token},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewJWTVerifier(tc.secret).VerifyCredential(context.Background(), tc.token)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}
