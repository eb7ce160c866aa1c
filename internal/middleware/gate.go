package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/mooveit-parcels/internal/apperr"
	"github.com/chachabrian/mooveit-parcels/internal/models"
)

// Decision is the outcome of one authorization predicate.
type Decision struct {
	Allowed bool
	Kind    apperr.Kind
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(kind apperr.Kind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason}
}

func (d Decision) err() error {
	if d.Kind == apperr.KindUnauthorized {
		return apperr.Unauthorized("%s", d.Reason)
	}
	return apperr.Forbidden("%s", d.Reason)
}

// Predicate decides whether an authenticated identity may proceed.
type Predicate func(c *gin.Context, id models.Identity) Decision

// RequireRole allows identities holding any of roles.
func RequireRole(roles ...models.Role) Predicate {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	reason := fmt.Sprintf("requires role %s", strings.Join(names, " or "))

	return func(_ *gin.Context, id models.Identity) Decision {
		for _, r := range roles {
			if id.Role == r {
				return Allow()
			}
		}
		return Deny(apperr.KindForbidden, reason)
	}
}

// Gate runs every predicate in order and stops at the first denial. It must
// be mounted after Authenticate.
func Gate(preds ...Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abort(c, apperr.Unauthorized("authentication required"))
			return
		}
		for _, p := range preds {
			if d := p(c, id); !d.Allowed {
				abort(c, d.err())
				return
			}
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc { return Gate(RequireRole(models.RoleAdmin)) }

func RiderOnly() gin.HandlerFunc { return Gate(RequireRole(models.RoleRider)) }
