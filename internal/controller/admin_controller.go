package controller

import (
	"github.com/gofiber/fiber/v2"

	"studenthub-be/internal/pkg/serverutils"
	"studenthub-be/internal/service"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	DashboardSummary(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(serverutils.AdminMiddleware)
	h.Get("/dashboard", c.DashboardSummary)
	h.Get("/logs", c.GetLogs)
}

func (c *adminController) DashboardSummary(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.DashboardSummary(ctx.Context(), caller)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get dashboard summary", res))
}

func (c *adminController) GetLogs(ctx *fiber.Ctx) error {
	caller, err := serverutils.CallerIdentity(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetLogs(ctx.Context(), caller,
		ctx.Query("level"),
		ctx.QueryInt("limit", 100),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}
