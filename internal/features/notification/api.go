package notification

import (
	"go-procure/internal/config"
	"go-procure/internal/middleware"
	"go-procure/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) *NotificationApi {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	notifications := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	notifications.Get("/", h.controller.List)
	notifications.Post("/:id/read", h.controller.MarkRead)

	// Websocket upgrade carries the authenticated user id into conn locals.
	app.Use("/ws/notifications", middleware.AuthMiddleware(h.config.SkipAuth), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			claims := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
			c.Locals("user_id", claims.UserID)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/notifications", websocket.New(h.controller.HandleWebSocket))
}
