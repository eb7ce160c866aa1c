package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

const identityKey = "identity"

// TokenVerifier proves the email behind a bearer token.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (utils.TokenClaims, error)
}

// RoleSource returns the stored role of an email.
type RoleSource interface {
	RoleOf(ctx context.Context, email string) (models.Role, error)
}

// Verifiers accepts a token if any of its verifiers does, trying them in order.
type Verifiers []TokenVerifier

func (vs Verifiers) Verify(ctx context.Context, raw string) (utils.TokenClaims, error) {
	for _, v := range vs {
		claims, err := v.Verify(ctx, raw)
		if err == nil {
			return claims, nil
		}
	}
	return utils.TokenClaims{}, utils.ErrInvalidToken
}

// Authenticate resolves the caller's identity. The role always comes from
// roles, never from the token.
func Authenticate(verifier TokenVerifier, roles RoleSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abort(c, apperr.Unauthorized("authorization header or token query parameter required"))
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			abort(c, apperr.Unauthorized("invalid token"))
			return
		}

		email := strings.ToLower(claims.Email)
		role, err := roles.RoleOf(c.Request.Context(), email)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(identityKey, models.Identity{Email: email, Name: claims.Name, Role: role})
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Authenticate.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

func bearerToken(c *gin.Context) string {
	// First try to get token from Authorization header
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	// Browsers cannot set headers on websocket upgrades.
	return c.Query("token")
}

func abort(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.KindInternal {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{
		"success": false,
		"message": apperr.PublicMessage(err),
	})
}
