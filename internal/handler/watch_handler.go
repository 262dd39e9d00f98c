package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/service"
	"studenthub-be/pkg/livequery"
)

// WatchHandler exposes live queries over websockets: each socket carries a
// stream of full snapshots for one query, refreshed whenever the underlying
// data changes.
type WatchHandler struct {
	assistantService service.IAssistantService
	leaveService     service.ILeaveService
	logger           logger.ILogger
}

func NewWatchHandler(assistantService service.IAssistantService, leaveService service.ILeaveService, log logger.ILogger) *WatchHandler {
	return &WatchHandler{
		assistantService: assistantService,
		leaveService:     leaveService,
		logger:           log,
	}
}

func (h *WatchHandler) RegisterRoutes(router fiber.Router) {
	w := router.Group("/watch/v1")
	w.Get("/sessions", h.WatchSessions)
	w.Get("/sessions/:id/messages", h.WatchChatHistory)
	w.Get("/leave", h.WatchOwnLeave)
	w.Get("/leave/all", h.WatchAllLeave)
}

func (h *WatchHandler) WatchSessions(c *fiber.Ctx) error {
	caller, err := identityFromHandshake(c)
	if err != nil {
		return err
	}
	return streamSubscription(c, h.logger, "sessions", func(ctx context.Context) (snapshotStream, error) {
		sub, err := h.assistantService.WatchSessions(ctx, caller)
		if err != nil {
			return nil, err
		}
		return wrapSubscription(sub), nil
	})
}

func (h *WatchHandler) WatchChatHistory(c *fiber.Ctx) error {
	caller, err := identityFromHandshake(c)
	if err != nil {
		return err
	}
	sessionId, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session ID")
	}
	return streamSubscription(c, h.logger, "messages", func(ctx context.Context) (snapshotStream, error) {
		sub, err := h.assistantService.WatchChatHistory(ctx, caller, sessionId)
		if err != nil {
			return nil, err
		}
		return wrapSubscription(sub), nil
	})
}

func (h *WatchHandler) WatchOwnLeave(c *fiber.Ctx) error {
	caller, err := identityFromHandshake(c)
	if err != nil {
		return err
	}
	return streamSubscription(c, h.logger, "leave_requests", func(ctx context.Context) (snapshotStream, error) {
		sub, err := h.leaveService.WatchOwn(ctx, caller)
		if err != nil {
			return nil, err
		}
		return wrapSubscription(sub), nil
	})
}

func (h *WatchHandler) WatchAllLeave(c *fiber.Ctx) error {
	caller, err := identityFromHandshake(c)
	if err != nil {
		return err
	}
	if !caller.IsAdmin() {
		return fiber.NewError(fiber.StatusForbidden, "Admin access required")
	}
	return streamSubscription(c, h.logger, "leave_requests", func(ctx context.Context) (snapshotStream, error) {
		sub, err := h.leaveService.WatchAll(ctx, caller)
		if err != nil {
			return nil, err
		}
		return wrapSubscription(sub), nil
	})
}

// snapshotStream erases the subscription's element type so one streaming
// loop serves every watch endpoint.
type snapshotStream interface {
	Next() (interface{}, bool)
	Close()
}

type typedStream[T any] struct {
	sub *livequery.Subscription[T]
}

func (s typedStream[T]) Next() (interface{}, bool) {
	snapshot, ok := <-s.sub.C
	return snapshot, ok
}

func (s typedStream[T]) Close() {
	s.sub.Close()
}

func wrapSubscription[T any](sub *livequery.Subscription[T]) snapshotStream {
	return typedStream[T]{sub: sub}
}

type watchEnvelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func streamSubscription(
	c *fiber.Ctx,
	log logger.ILogger,
	topic string,
	open func(ctx context.Context) (snapshotStream, error),
) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stream, err := open(ctx)
		if err != nil {
			log.Warn("WatchHandler", "Failed to open live query", map[string]interface{}{"topic": topic, "error": err.Error()})
			conn.WriteJSON(watchEnvelope{Type: "error", Data: err.Error()})
			return
		}
		defer stream.Close()

		// Reader goroutine: its only job is noticing the peer went away.
		go func() {
			for {
				if _, _, readErr := conn.ReadMessage(); readErr != nil {
					cancel()
					return
				}
			}
		}()

		for {
			snapshot, ok := stream.Next()
			if !ok {
				return
			}
			if writeErr := conn.WriteJSON(watchEnvelope{Type: topic, Data: snapshot}); writeErr != nil {
				return
			}
		}
	})(c)
}
