package controller

import (
	"context"
	"errors"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/service"
	ws "ai-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
}

type chatController struct {
	service service.IChatService
	hub     *ws.Hub
}

func NewChatController(service service.IChatService, hub *ws.Hub) IChatController {
	return &chatController{service: service, hub: hub}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1", serverutils.JwtMiddleware)
	h.Post("/sessions", c.CreateSession)
	h.Get("/sessions", c.ListSessions)
	h.Post("/send", c.Send)
	h.Post("/trash", c.Trash)
	h.Post("/restore", c.Restore)
	h.Post("/pin", c.Pin)
	h.Post("/delete", c.PermanentlyDelete)
	h.Post("/empty-trash", c.EmptyTrash)

	h.Use("/ws", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			ctx.Locals("ws_email", userEmail(ctx))
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		email, _ := conn.Locals("ws_email").(string)
		if email == "" {
			conn.Close()
			return
		}
		ws.ServeWs(c.hub, conn, email)
	}))
}

func userEmail(ctx *fiber.Ctx) string {
	email, _ := ctx.Locals("email").(string)
	return email
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateNewSession(ctx.Context(), userEmail(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Session created",
		"data":    res,
	})
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.service.ListSessions(ctx.Context(), userEmail(ctx))
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

func (c *chatController) Send(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.service.Send(ctx.Context(), userEmail(ctx), &req)
	if err != nil {
		if errors.Is(err, service.ErrSendInFlight) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"code":    409,
				"message": err.Error(),
			})
		}
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"code":    404,
				"message": err.Error(),
			})
		}
		return err
	}
	if res == nil {
		// Blank message with no attachments is a no-op.
		return ctx.JSON(fiber.Map{
			"success": true,
			"code":    200,
			"message": "Nothing to send",
			"data":    nil,
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Message sent",
		"data":    res,
	})
}

func (c *chatController) Trash(ctx *fiber.Ctx) error {
	return c.sessionAction(ctx, c.service.Trash, "Session moved to trash")
}

func (c *chatController) Restore(ctx *fiber.Ctx) error {
	return c.sessionAction(ctx, c.service.Restore, "Session restored")
}

func (c *chatController) sessionAction(ctx *fiber.Ctx, action func(context.Context, string, string) error, message string) error {
	var req dto.SessionActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := action(ctx.Context(), userEmail(ctx), req.SessionId); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": message,
		"data":    nil,
	})
}

func (c *chatController) Pin(ctx *fiber.Ctx) error {
	var req dto.PinSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := c.service.Pin(ctx.Context(), userEmail(ctx), &req); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Pin updated",
		"data":    nil,
	})
}

func (c *chatController) PermanentlyDelete(ctx *fiber.Ctx) error {
	var req dto.PermanentDeleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := c.service.PermanentlyDelete(ctx.Context(), userEmail(ctx), &req); err != nil {
		if errors.Is(err, service.ErrConfirmationRequired) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Session deleted permanently",
		"data":    nil,
	})
}

func (c *chatController) EmptyTrash(ctx *fiber.Ctx) error {
	var req dto.EmptyTrashRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	deleted, err := c.service.EmptyTrash(ctx.Context(), userEmail(ctx), &req)
	if err != nil {
		if errors.Is(err, service.ErrConfirmationRequired) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Trash emptied",
		"data":    dto.EmptyTrashResponse{Deleted: deleted},
	})
}
