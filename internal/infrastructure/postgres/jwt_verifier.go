package postgres

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/service"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

// Claims are the access token claims issued by the hosted auth service.
type Claims struct {
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// JWTVerifier validates access tokens either against a JWKS endpoint
// (asymmetric keys) or a shared HS256 secret.
type JWTVerifier struct {
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	methods []string
}

var _ service.IdentityVerifier = (*JWTVerifier)(nil)

func NewHMACVerifier(secret string) *JWTVerifier {
	key := []byte(secret)
	return &JWTVerifier{
		keyFunc: func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		},
		methods: []string{"HS256"},
	}
}

// NewJWKSVerifier fetches the key set at jwksURL and refreshes it in the
// background. apiKey is sent as the apikey header when set.
func NewJWKSVerifier(ctx context.Context, jwksURL, apiKey string) (*JWTVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("Refreshing JWKS from %s failed: %v", jwksURL, err)
		},
		RequestFactory: func(ctx context.Context, url string) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			if apiKey != "" {
				req.Header.Set("apikey", apiKey)
			}
			return req, nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", jwksURL, err)
	}

	return &JWTVerifier{
		keyFunc: jwks.Keyfunc,
		jwks:    jwks,
		methods: []string{"RS256", "ES256"},
	}, nil
}

// JWKSURL derives the well-known key set location of a hosted auth service.
func JWKSURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/v1/.well-known/jwks.json"
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFunc, jwt.WithValidMethods(v.methods))
	if err != nil || !parsed.Valid {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}
	if claims.Subject == "" {
		return nil, errors.Unauthorized("Token has no subject", nil)
	}

	return &entity.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   strings.ToLower(metadataString(claims.AppMetadata, "role")),
		Name:   firstNonEmpty(metadataString(claims.UserMetadata, "name"), metadataString(claims.UserMetadata, "full_name")),
	}, nil
}

// Close stops the background key refresh.
func (v *JWTVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func metadataString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
