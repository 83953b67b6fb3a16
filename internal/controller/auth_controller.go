package controller

import (
	"fmt"
	"os"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/pkg/serverutils"
	"ai-musictriage-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	Callback(ctx *fiber.Ctx) error
	Me(ctx *fiber.Ctx) error
}

type authController struct {
	authService service.IAuthService
}

func NewAuthController(authService service.IAuthService) IAuthController {
	return &authController{authService: authService}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Get("/login", c.Login)
	h.Get("/callback", c.Callback)
	h.Get("/me", serverutils.JwtMiddleware, c.Me)
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	url, err := c.authService.GetLoginURL()
	if err != nil {
		return err
	}

	// UIs polling via fetch get the URL as JSON instead of a redirect.
	if ctx.Query("mode") == "json" {
		return ctx.JSON(serverutils.SuccessResponse("Success build login url", dto.LoginURLResponse{URL: url}))
	}
	return ctx.Redirect(url)
}

func (c *authController) Callback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing authorization code")
	}

	res, err := c.authService.HandleCallback(ctx.Context(), state, code)
	if err != nil {
		return err
	}

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		return ctx.JSON(serverutils.SuccessResponse("Success login", res))
	}
	return ctx.Redirect(fmt.Sprintf("%s/auth/success?token=%s", clientURL, res.Token))
}

func (c *authController) Me(ctx *fiber.Ctx) error {
	userId, _ := ctx.Locals("spotify_user_id").(string)
	return ctx.JSON(serverutils.SuccessResponse("Success get profile", fiber.Map{
		"spotify_user_id": userId,
		"spotify_linked":  c.authService.Authenticated(),
	}))
}
