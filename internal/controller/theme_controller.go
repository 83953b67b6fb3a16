package controller

import (
	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/entity"
	"ai-musictriage-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IThemeController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
}

type themeController struct {
	catalog *entity.ThemeCatalog
}

func NewThemeController(catalog *entity.ThemeCatalog) IThemeController {
	return &themeController{catalog: catalog}
}

func (c *themeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/theme/v1")
	h.Get("", c.GetAll)
}

func (c *themeController) GetAll(ctx *fiber.Ctx) error {
	themes := make([]dto.ThemeResponse, 0, c.catalog.Len())
	for _, t := range c.catalog.All() {
		themes = append(themes, dto.ThemeResponse{
			Key:         t.Key,
			Name:        t.Name,
			Description: t.Description,
			Shortcut:    t.Shortcut,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get themes", themes))
}
