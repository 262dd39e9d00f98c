package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/pkg/serverutils"
	"studenthub-be/internal/service"
)

type ILeaveController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
	ListOwn(ctx *fiber.Ctx) error
	ListAll(ctx *fiber.Ctx) error
	OwnSummary(ctx *fiber.Ctx) error
}

type leaveController struct {
	service service.ILeaveService
}

func NewLeaveController(service service.ILeaveService) ILeaveController {
	return &leaveController{service: service}
}

func (c *leaveController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/leave/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Submit)
	h.Get("", c.ListOwn)
	h.Get("/summary", c.OwnSummary)
	h.Get("/all", serverutils.AdminMiddleware, c.ListAll)
	h.Put(":id/decision", serverutils.AdminMiddleware, c.Decide)
}

func (c *leaveController) Submit(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	var req dto.SubmitLeaveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.Context(), caller, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success submit leave request", res))
}

func (c *leaveController) Decide(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	requestId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request ID"))
	}

	var req dto.DecideLeaveRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Decide(ctx.Context(), caller, requestId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success decide leave request", res))
}

func (c *leaveController) ListOwn(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListOwn(ctx.Context(), caller)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get leave requests", res))
}

func (c *leaveController) OwnSummary(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.OwnSummary(ctx.Context(), caller)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get leave summary", res))
}

func (c *leaveController) ListAll(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.ListAll(ctx.Context(), caller, ctx.Query("status"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all leave requests", res))
}
