package controller

import (
	"branching-chat-be/internal/dto"
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	GetTree(ctx *fiber.Ctx) error
	GetPath(ctx *fiber.Ctx) error
	GetChildren(ctx *fiber.Ctx) error
	GetActive(ctx *fiber.Ctx) error
	SetActive(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type conversationController struct {
	conversationService service.IConversationService
	searchService       service.ISearchService
}

func NewConversationController(
	conversationService service.IConversationService,
	searchService service.ISearchService,
) IConversationController {
	return &conversationController{
		conversationService: conversationService,
		searchService:       searchService,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetAll)
	h.Post("search", c.Search)
	h.Put(":id", c.Rename)
	h.Delete(":id", c.Delete)
	h.Get(":id/messages", c.GetMessages)
	h.Get(":id/tree", c.GetTree)
	h.Get(":id/path", c.GetPath)
	h.Get(":id/children/:messageId", c.GetChildren)
	h.Get(":id/active", c.GetActive)
	h.Put(":id/active", c.SetActive)
}

func userIdFromCtx(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func conversationIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(400, "Invalid conversation ID"))
	}
	return id, nil
}

func (c *conversationController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.conversationService.GetAll(ctx.Context(), userIdFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversations", res))
}

func (c *conversationController) Rename(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.conversationService.Rename(ctx.Context(), userIdFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation renamed", res))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	if err := c.conversationService.Delete(ctx.Context(), userIdFromCtx(ctx), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation deleted", nil))
}

func (c *conversationController) GetMessages(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.GetMessages(ctx.Context(), userIdFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation messages", res))
}

func (c *conversationController) GetTree(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.GetTree(ctx.Context(), userIdFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation tree", res))
}

func (c *conversationController) GetPath(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	// Optional explicit leaf; defaults to the stored active pointer.
	var leafId *uuid.UUID
	if leafParam := ctx.Query("leafId"); leafParam != "" {
		parsed, err := uuid.Parse(leafParam)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid leaf ID"))
		}
		leafId = &parsed
	}

	res, err := c.conversationService.GetPath(ctx.Context(), userIdFromCtx(ctx), id, leafId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversation path", res))
}

func (c *conversationController) GetChildren(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}
	messageId, err := uuid.Parse(ctx.Params("messageId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid message ID"))
	}

	res, err := c.conversationService.GetChildren(ctx.Context(), userIdFromCtx(ctx), id, messageId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Message branches", res))
}

func (c *conversationController) GetActive(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.GetActive(ctx.Context(), userIdFromCtx(ctx), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Active message", res))
}

func (c *conversationController) SetActive(ctx *fiber.Ctx) error {
	id, err := conversationIdParam(ctx)
	if err != nil {
		return err
	}

	var req dto.SetActiveMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.Id = id
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.conversationService.SetActive(ctx.Context(), userIdFromCtx(ctx), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Active message updated", nil))
}

func (c *conversationController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchConversationsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.searchService.Search(ctx.Context(), userIdFromCtx(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}
