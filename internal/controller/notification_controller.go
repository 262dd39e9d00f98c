package controller

import (
	"github.com/gofiber/fiber/v2"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/pkg/serverutils"
	"studenthub-be/internal/service"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	MarkRead(ctx *fiber.Ctx) error
	MarkAllRead(ctx *fiber.Ctx) error
}

type notificationController struct {
	service service.INotificationService
}

func NewNotificationController(service service.INotificationService) INotificationController {
	return &notificationController{service: service}
}

func (c *notificationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/notifications/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Put("/read", c.MarkRead)
	h.Put("/read-all", c.MarkAllRead)
}

func (c *notificationController) List(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), caller,
		ctx.QueryInt("limit", 20),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get notifications", res))
}

func (c *notificationController) MarkRead(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.MarkReadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.MarkRead(ctx.Context(), caller, req.NotificationId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success mark notification read", nil))
}

func (c *notificationController) MarkAllRead(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	if err := c.service.MarkAllRead(ctx.Context(), caller); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success mark all notifications read", nil))
}
