package collection

import (
	"errors"

	"datasync/core/logger"
	"datasync/core/provider"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the collection.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the collection routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/collection")
	group.Get("/", h.HandleList)
	group.Get("/keys", h.HandleKeys)
	group.Get("/status", h.HandleStatus)
	group.Post("/refresh", h.HandleRefresh)
	group.Get("/:key", h.HandleGet)
}

// HandleList returns every object in collection order.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	objs := h.service.Objects()
	return c.JSON(fiber.Map{
		"count":   len(objs),
		"objects": objs,
	})
}

// HandleKeys returns the collection keys in collection order.
func (h *Handler) HandleKeys(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"keys": h.service.Keys()})
}

// HandleStatus reports the outcome of the last pass.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleGet returns a single object by key.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	key := c.Params("key")
	obj, ok := h.service.Object(key)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "object not found",
			"key":   key,
		})
	}
	return c.JSON(obj)
}

// HandleRefresh runs a pass and reports whether the collection changed.
func (h *Handler) HandleRefresh(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	changed, err := h.service.Refresh(c.UserContext())
	if err != nil {
		l.Error("Refresh failed", zap.Error(err))
		var reqErr *provider.Error
		if errors.As(err, &reqErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": reqErr.Reason,
				"code":  reqErr.Code,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Refresh completed", zap.Bool("changed", changed))
	return c.JSON(fiber.Map{
		"changed": changed,
		"objects": h.service.provider.Len(),
	})
}
