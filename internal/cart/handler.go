package cart

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/ticket-shop-backend/internal/storage"
	"github.com/wichananm65/ticket-shop-backend/internal/user"
)

// Handler exposes the cart store over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items/:index", h.setQuantity)
	app.Delete("/api/v1/cart/items/:index", h.removeItem)
	app.Delete("/api/v1/cart", h.clearCart)
}

type addItemRequest struct {
	RefID     string `json:"refId"`
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	ImageRef  string `json:"imageRef"`
	Option    string `json:"option,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	Items   []LineItem `json:"items"`
	Total   int64      `json:"total"`
	Version int64      `json:"version"`
}

func newCartResponse(c Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	return cartResponse{Items: items, Total: c.Total(), Version: c.Version}
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	cart, err := h.service.Load(c.UserContext(), sess.Owner())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	item := LineItem{
		ID:        LineID(payload.RefID, payload.Option),
		Kind:      payload.Kind,
		Title:     payload.Title,
		ImageRef:  payload.ImageRef,
		Option:    payload.Option,
		UnitPrice: payload.UnitPrice,
		Quantity:  payload.Quantity,
	}
	cart, err := h.service.Add(c.UserContext(), sess.Owner(), item)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newCartResponse(cart))
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid index"})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	cart, err := h.service.SetQuantity(c.UserContext(), sess.Owner(), index, payload.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid index"})
	}

	cart, err := h.service.Remove(c.UserContext(), sess.Owner(), index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if _, err := h.service.Clear(c.UserContext(), sess.Owner()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidItem):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, ErrLineNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": err.Error()})
	case errors.Is(err, storage.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "cart was changed concurrently, reload and retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
}
