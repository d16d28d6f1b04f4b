package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wizardlabs/leadforms/internal/auth"
	"github.com/wizardlabs/leadforms/internal/types"
)

// Identity is the authenticated caller stored in request locals.
type Identity struct {
	ID    string
	Email string
	Role  string
}

const identityKey = "identity"

// RequireRole validates the session cookie and checks the caller's role
// against the allowed set. The resolved identity is stored in locals.
func RequireRole(jwtSecret string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.TokenCookie)
		if token == "" {
			return types.Unauthorized("No authentication token found")
		}

		claims, err := auth.ValidateToken(jwtSecret, token)
		if err != nil {
			return types.Unauthorized("%v", err)
		}

		allowed := false
		for _, r := range roles {
			if claims.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return types.Forbidden("Unauthorized: insufficient role")
		}

		c.Locals(identityKey, Identity{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})
		return c.Next()
	}
}

// CallerIdentity returns the identity stored by RequireRole.
func CallerIdentity(c *fiber.Ctx) Identity {
	id, _ := c.Locals(identityKey).(Identity)
	return id
}
