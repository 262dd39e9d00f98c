package handler

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/logger"
	internalWS "studenthub-be/internal/websocket"
)

// NotificationHandler owns the push socket: one connection per device over
// which toasts and status changes arrive.
type NotificationHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewNotificationHandler(hub *internalWS.Hub, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		hub:    hub,
		logger: log,
	}
}

// identityFromHandshake authenticates a websocket upgrade request. Browsers
// cannot set headers on WebSocket dials, so the token is accepted from a
// query param first, header second.
func identityFromHandshake(c *fiber.Ctx) (entity.Identity, error) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return entity.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Missing token (query 'token' or Authorization header)")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return entity.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	userIDStr, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return entity.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}

	role, _ := claims["role"].(string)
	return entity.Identity{UserID: userID, Role: entity.UserRole(role)}, nil
}

// ServeWs upgrades the connection and attaches it to the hub.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	caller, err := identityFromHandshake(c)
	if err != nil {
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"user_id": caller.UserID})
		internalWS.ServeWs(h.hub, conn, caller.UserID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": caller.UserID})
	})(c)
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
