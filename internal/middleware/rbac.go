package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/evalstar-go-api/internal/utils"
)

// Role is an EvalStar account role carried by the token's role claim.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole normalises a role claim or local. Roles outside the EvalStar set are rejected.
func ParseRole(value interface{}) (Role, bool) {
	var raw string
	switch v := value.(type) {
	case Role:
		raw = string(v)
	case string:
		raw = v
	case fmt.Stringer:
		raw = v.String()
	default:
		return "", false
	}

	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return role, true
	default:
		return "", false
	}
}

// RequireRole lets the request through when the authenticated user holds one of roles.
func RequireRole(roles ...Role) fiber.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		role, ok := ParseRole(c.Locals("user_role"))
		if !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		if _, permitted := allowed[role]; !permitted {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
