package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/pkg/serverutils"
	"studenthub-be/internal/service"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Greeting(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
}

func NewAssistantController(service service.IAssistantService) IAssistantController {
	return &assistantController{service: service}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/greeting", c.Greeting)
	h.Post("/chat", c.SendChat)
	h.Get("/sessions", c.GetAllSessions)
	h.Get("/sessions/:id/history", c.GetChatHistory)
	h.Delete("/sessions", c.DeleteSession)
}

func (c *assistantController) Greeting(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get greeting", c.service.Greeting()))
}

func (c *assistantController) SendChat(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *assistantController) GetAllSessions(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAllSessions(ctx.Context(), caller)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *assistantController) GetChatHistory(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.service.GetChatHistory(ctx.Context(), caller, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *assistantController) DeleteSession(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.DeleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.DeleteSession(ctx.Context(), caller, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}
