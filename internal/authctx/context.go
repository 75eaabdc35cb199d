package authctx

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// LocalsKey is where the JWT middleware stores the parsed *jwt.Token.
const LocalsKey = "user"

var ErrNoToken = errors.New("no authenticated user")

// Claims is the identity carried by an access token.
type Claims struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     string
}

// GetClaims extracts the caller identity from Fiber context locals.
func GetClaims(c *fiber.Ctx) (*Claims, error) {
	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	sub, _ := mc["userId"].(string)
	if sub == "" {
		sub, _ = mc["sub"].(string)
	}
	if sub == "" {
		return nil, errors.New("missing userId claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, err
	}

	username, _ := mc["username"].(string)
	email, _ := mc["email"].(string)
	role, _ := mc["role"].(string)
	return &Claims{UserID: id, Username: username, Email: email, Role: role}, nil
}

// GetUserID extracts the user UUID from JWT claims in context.
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	claims, err := GetClaims(c)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// OptionalClaims returns nil for anonymous callers.
func OptionalClaims(c *fiber.Ctx) *Claims {
	claims, err := GetClaims(c)
	if err != nil {
		return nil
	}
	return claims
}
