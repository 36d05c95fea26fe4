package notification

import (
	"log"

	"go-procure/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Service NotificationService
	Hub     *Hub
}

func NewNotificationController(service NotificationService, hub *Hub) *NotificationController {
	return &NotificationController{Service: service, Hub: hub}
}

// List godoc
// @Summary List notifications for the current user
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {array} Notification
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	unreadOnly := ctx.QueryBool("unread", false)

	ns, err := c.Service.ListByUser(ctx.UserContext(), claims.UserID, unreadOnly)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if ns == nil {
		ns = []Notification{}
	}
	return ctx.JSON(ns)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]string
// @Router /api/notifications/{id}/read [post]
func (c *NotificationController) MarkRead(ctx *fiber.Ctx) error {
	claims := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)

	if err := c.Service.MarkRead(ctx.UserContext(), ctx.Params("id"), claims.UserID); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Notification marked as read"})
}

// HandleWebSocket keeps the connection registered for pushes until the client
// goes away. Inbound messages are ignored.
func (c *NotificationController) HandleWebSocket(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	if userID == "" {
		conn.Close()
		return
	}

	c.Hub.Register(userID, conn)
	defer c.Hub.Unregister(userID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Println("ws read:", err)
			break
		}
	}
}
