package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/me", h.me)
}

func (h *Handler) me(c *fiber.Ctx) error {
	sess, err := SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	resolved, err := h.service.Resolve(c.UserContext(), sess)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(resolved)
}

// SessionFromCtx reads the buyer from the token the jwt middleware stored in
// c.Locals("user").
func SessionFromCtx(c *fiber.Ctx) (Session, error) {
	claims, err := claimsFromCtx(c)
	if err != nil {
		return Session{}, err
	}
	id, err := userIDFromClaims(claims)
	if err != nil {
		return Session{}, err
	}
	sess := Session{ID: id}
	sess.Email, _ = claims["email"].(string)
	sess.Name, _ = claims["name"].(string)
	return sess, nil
}

func claimsFromCtx(c *fiber.Ctx) (jwt.MapClaims, error) {
	u := c.Locals("user")
	if u == nil {
		return nil, fiber.ErrUnauthorized
	}
	tok, ok := u.(*jwt.Token)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (int, error) {
	raw, ok := claims["user_id"]
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	var id int
	switch v := raw.(type) {
	case float64:
		id = int(v)
	case int:
		id = v
	case int64:
		id = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		id = n
	default:
		return 0, fiber.ErrUnauthorized
	}
	if id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}
