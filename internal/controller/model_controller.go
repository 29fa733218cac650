package controller

import (
	"branching-chat-be/internal/pkg/serverutils"
	"branching-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IModelController interface {
	RegisterRoutes(r fiber.Router)
	GetModels(ctx *fiber.Ctx) error
}

type modelController struct {
	modelService service.IModelService
}

func NewModelController(modelService service.IModelService) IModelController {
	return &modelController{
		modelService: modelService,
	}
}

func (c *modelController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/model/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.GetModels)
}

func (c *modelController) GetModels(ctx *fiber.Ctx) error {
	res, err := c.modelService.GetModels(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Available models", res))
}
