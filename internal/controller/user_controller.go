package controller

import (
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
}

type userController struct {
	service service.IUserService
}

func NewUserController(service service.IUserService) IUserController {
	return &userController{service: service}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1", serverutils.JwtMiddleware)
	h.Get("/profile", c.GetProfile)
	h.Get("/export", c.ExportData)
	h.Delete("/account", c.DeleteAccount)
}

func userId(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}
	return id, nil
}

func (c *userController) GetProfile(ctx *fiber.Ctx) error {
	id, err := userId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.GetProfile(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *userController) ExportData(ctx *fiber.Ctx) error {
	id, err := userId(ctx)
	if err != nil {
		return err
	}
	res, err := c.service.ExportData(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "OK",
		"data":    res,
	})
}

func (c *userController) DeleteAccount(ctx *fiber.Ctx) error {
	id, err := userId(ctx)
	if err != nil {
		return err
	}
	if err := c.service.DeleteAccount(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Account deleted",
		"data":    nil,
	})
}
