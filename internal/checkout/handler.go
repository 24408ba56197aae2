package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/wichananm65/ticket-shop-backend/internal/promptpay"
	"github.com/wichananm65/ticket-shop-backend/internal/storage"
	"github.com/wichananm65/ticket-shop-backend/internal/user"
)

// Handler exposes checkout attempts over HTTP.
type Handler struct {
	orchestrator *Orchestrator
	registry     *Registry
	userService  user.ServiceInterface
}

func NewHandler(o *Orchestrator, r *Registry, us user.ServiceInterface) *Handler {
	return &Handler{orchestrator: o, registry: r, userService: us}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/checkout/prefill", h.prefill)
	app.Post("/api/v1/checkout", h.submit)
	app.Get("/api/v1/checkout/:id", h.get)
	app.Get("/api/v1/checkout/:id/qr", h.qr)
	app.Post("/api/v1/checkout/:id/confirm", h.confirm)
	app.Post("/api/v1/checkout/:id/cancel", h.cancel)
}

func qrPath(id string) string {
	return "/api/v1/checkout/" + id + "/qr"
}

func (h *Handler) prefill(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	sess, err = h.userService.Resolve(c.UserContext(), sess)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(PrefillForm(sess))
}

// submit starts a new attempt. Empty form fields fall back to the logged-in
// user's profile.
func (h *Handler) submit(c *fiber.Ctx) error {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	form := new(BuyerForm)
	if err := c.BodyParser(form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if resolved, err := h.userService.Resolve(c.UserContext(), sess); err == nil {
		sess = resolved
		*form = form.Merge(PrefillForm(sess))
	}

	a := h.registry.Create(sess.Owner(), sess.Email)
	status, err := h.orchestrator.Submit(c.UserContext(), a, *form)
	if err != nil {
		return writeError(c, status, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newView(status, qrPath(status.ID)))
}

func (h *Handler) attempt(c *fiber.Ctx) (*Attempt, error) {
	sess, err := user.SessionFromCtx(c)
	if err != nil {
		return nil, err
	}
	return h.registry.Get(sess.Owner(), c.Params("id"))
}

func (h *Handler) get(c *fiber.Ctx) error {
	a, err := h.attempt(c)
	if err != nil {
		return writeError(c, Status{}, err)
	}
	s := a.Status()
	return c.JSON(newView(s, qrPath(s.ID)))
}

func (h *Handler) qr(c *fiber.Ctx) error {
	a, err := h.attempt(c)
	if err != nil {
		return writeError(c, Status{}, err)
	}
	s := a.Status()
	if s.State != StateAwaitingPayment || s.Quote == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "no payment code is pending"})
	}
	img := s.Quote.Image
	if !img.Inline() {
		return c.Redirect(img.URL, fiber.StatusFound)
	}
	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img.Data)
}

func (h *Handler) confirm(c *fiber.Ctx) error {
	a, err := h.attempt(c)
	if err != nil {
		return writeError(c, Status{}, err)
	}
	status, err := h.orchestrator.ConfirmPaid(c.UserContext(), a)
	if errors.Is(err, ErrCartNotCleared) {
		// the order is durable; the buyer only needs to know the cart lingers
		return c.JSON(fiber.Map{"attempt": newView(status, qrPath(status.ID)), "warning": err.Error()})
	}
	if err != nil {
		return writeError(c, status, err)
	}
	return c.JSON(newView(status, qrPath(status.ID)))
}

func (h *Handler) cancel(c *fiber.Ctx) error {
	a, err := h.attempt(c)
	if err != nil {
		return writeError(c, Status{}, err)
	}
	status, err := h.orchestrator.Cancel(a)
	if err != nil {
		return writeError(c, status, err)
	}
	return c.JSON(newView(status, qrPath(status.ID)))
}

func writeError(c *fiber.Ctx, status Status, err error) error {
	body := fiber.Map{"message": err.Error()}
	if status.ID != "" {
		body["attempt"] = newView(status, qrPath(status.ID))
	}

	var verr *ValidationError
	switch {
	case errors.Is(err, fiber.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	case errors.As(err, &verr):
		body["fields"] = verr.Fields
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, ErrEmptyCart):
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(err, ErrAttemptNotFound):
		return c.Status(fiber.StatusNotFound).JSON(body)
	case errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrCartChanged),
		errors.Is(err, storage.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(body)
	case errors.Is(err, promptpay.ErrInvalidAmount),
		errors.Is(err, promptpay.ErrInvalidMerchantIdentifier):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
