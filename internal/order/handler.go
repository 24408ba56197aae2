package order

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/ticket-shop-backend/internal/user"
)

// Handler serves the logged-in buyer's order history. It needs the user
// service to find the buyer's email.
type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(s *Service, us user.ServiceInterface) *Handler {
	return &Handler{service: s, userService: us}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.getOrders)
}

// getOrders returns the buyer's orders newest first. Without a known email
// every order in the owner's history is returned.
func (h *Handler) getOrders(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	sess, err = h.userService.Resolve(c.UserContext(), sess)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	var orders []Order
	if sess.Email != "" {
		orders, err = h.service.ListFor(c.UserContext(), sess.Owner(), sess.Email)
	} else {
		orders, err = h.service.List(c.UserContext(), sess.Owner())
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(SortNewestFirst(orders))
}
