package firebase

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/service"
	"taskcommadmin/pkg/errors"
)

// tokenVerifier is the part of *auth.Client used for identity checks.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type FirebaseAuthClient struct {
	client tokenVerifier
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

var _ service.IdentityVerifier = (*FirebaseAuthClient)(nil)

func (f *FirebaseAuthClient) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	identity := &entity.Identity{
		UserID: result.UID,
		Email:  stringClaim(result.Claims, "email"),
		Name:   stringClaim(result.Claims, "name"),
		Role:   strings.ToLower(stringClaim(result.Claims, "role")),
	}
	if identity.Role == "" && boolClaim(result.Claims, "admin") {
		identity.Role = entity.RoleAdmin
	}
	return identity, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func boolClaim(claims map[string]interface{}, key string) bool {
	v, ok := claims[key].(bool)
	return ok && v
}
