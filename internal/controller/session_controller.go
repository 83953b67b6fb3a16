package controller

import (
	"bytes"
	"context"

	"ai-musictriage-be/internal/dto"
	"ai-musictriage-be/internal/pkg/serverutils"
	"ai-musictriage-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
	Suggestion(ctx *fiber.Ctx) error
	Decide(ctx *fiber.Ctx) error
	Undo(ctx *fiber.Ctx) error
	Pause(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Progress(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	RetrySync(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService    service.ISessionService
	suggestionService service.ISuggestionService
	exportService     service.IExportService
	syncService       service.ISyncService
}

func NewSessionController(
	sessionService service.ISessionService,
	suggestionService service.ISuggestionService,
	exportService service.IExportService,
	syncService service.ISyncService,
) ISessionController {
	return &sessionController{
		sessionService:    sessionService,
		suggestionService: suggestionService,
		exportService:     exportService,
		syncService:       syncService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/session/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/start", c.Start)
	h.Get("/current", c.Current)
	h.Get("/suggestion", c.Suggestion)
	h.Post("/decide", c.Decide)
	h.Post("/undo", c.Undo)
	h.Post("/pause", c.Pause)
	h.Get("/export", c.Export)
	h.Get("/progress", c.Progress)
	h.Post("/sync/retry", c.RetrySync)
	h.Delete("", c.Archive)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
	}

	res, err := c.sessionService.StartOrResume(ctx.Context(), req.DiscardCorrupted)
	if err != nil {
		return err
	}

	// Warm the suggestion cache for the first few tracks and re-enqueue
	// playlist adds left pending by a previous run.
	go c.preload()
	go func() { _ = c.syncService.EnqueuePending(context.Background()) }()

	return ctx.JSON(serverutils.SuccessResponse("Success start session", res))
}

func (c *sessionController) Current(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Current(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get current track", res))
}

func (c *sessionController) Suggestion(ctx *fiber.Ctx) error {
	res, err := c.suggestionService.SuggestForCurrent(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get suggestion", res))
}

func (c *sessionController) Decide(ctx *fiber.Ctx) error {
	var req dto.DecideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Decide(ctx.Context(), &req)
	if err != nil {
		return err
	}

	go c.preload()

	return ctx.JSON(serverutils.SuccessResponse("Success record decision", res))
}

func (c *sessionController) Undo(ctx *fiber.Ctx) error {
	res, err := c.sessionService.UndoLast(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success undo decision", res))
}

func (c *sessionController) Pause(ctx *fiber.Ctx) error {
	if err := c.sessionService.Pause(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success pause session", nil))
}

func (c *sessionController) Export(ctx *fiber.Ctx) error {
	force := ctx.QueryBool("force")

	rows, err := c.sessionService.Export(ctx.Context(), force)
	if err != nil {
		return err
	}

	if ctx.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := c.exportService.WriteCSV(&buf, rows); err != nil {
			return err
		}
		ctx.Set(fiber.HeaderContentType, "text/csv")
		ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="session-export.csv"`)
		return ctx.Send(buf.Bytes())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success export session", rows))
}

func (c *sessionController) Progress(ctx *fiber.Ctx) error {
	res, err := c.sessionService.Status(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get progress", res))
}

func (c *sessionController) Archive(ctx *fiber.Ctx) error {
	if err := c.sessionService.Archive(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success archive session", nil))
}

func (c *sessionController) RetrySync(ctx *fiber.Ctx) error {
	if err := c.syncService.EnqueuePending(ctx.Context()); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success enqueue pending syncs", nil))
}

func (c *sessionController) preload() {
	// Fiber contexts are recycled after the handler returns, so prefetch
	// runs on a detached context.
	_ = c.suggestionService.Preload(context.Background())
}
