package servers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/questforge/gateway/app_config"
	"github.com/questforge/gateway/app_errors"
	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/graceful_shutdown"
	"github.com/questforge/gateway/servers/middleware"
	"github.com/questforge/gateway/services"
)

type HttpHandler struct {
	auth           *services.AuthService
	profiles       *services.ProfileService
	requestTimeout time.Duration
}

func NewFiberApp(ac *app_config.AppConfig, as *services.AuthService, ps *services.ProfileService) *fiber.App {
	h := &HttpHandler{
		auth:           as,
		profiles:       ps,
		requestTimeout: ac.RequestTimeout,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
	})

	app.Use(middleware.RequestIdMiddleware())
	app.Use(middleware.MetricsMiddleware())
	app.Use(cors.New())

	sessionAuth := middleware.SessionAuth(ac.SupabaseJwtSecret)

	app.Post("/signup", h.SignUp)
	app.Post("/login", h.LogIn)

	app.Post("/profile", h.CreateProfile, sessionAuth)
	app.Post("/profile/xp", h.AddXp, sessionAuth)
	app.Get("/profile/:userId", h.GetProfile, sessionAuth)

	app.Get("/leaderboard", h.Leaderboard)

	app.Get("/health", h.Health)
	app.Get("/metrics", h.Metrics)

	return app
}

func RunHttpServer(ac *app_config.AppConfig, as *services.AuthService, ps *services.ProfileService) {
	app := NewFiberApp(ac, as, ps)

	graceful_shutdown.AddInputShutdownFunc(func() {
		if err := app.Shutdown(); err != nil {
			slog.With("err", err).Error("Failed to shut down HTTP server")
		}
	})

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", ac.FiberPort)); err != nil {
			slog.With("err", err).Error("HTTP server stopped")
			panic(err)
		}
	}()
}

// ErrorHandler maps coded errors onto HTTP statuses and a uniform
// {error_kind, message} body.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(&entities.ErrorResponse{
			ErrorKind: "HTTP",
			Message:   fiberErr.Message,
		})
	}

	kind := app_errors.Kind(err)
	status, known := statusByKind[kind]
	if !known {
		kind = "INTERNAL"
		status = http.StatusInternalServerError
	}

	logger := slog.With("error_kind", kind, "status", status)
	if requestId, ok := c.Locals("request_id").(string); ok {
		logger = logger.With("request_id", requestId)
	}
	logger.Error(err.Error())

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	return c.Status(status).JSON(&entities.ErrorResponse{
		ErrorKind: kind,
		Message:   message,
	})
}

var statusByKind = map[string]int{
	app_errors.CodeValidation:            http.StatusBadRequest,
	app_errors.CodeInvalidCredentials:    http.StatusUnauthorized,
	app_errors.CodeDuplicateAccount:      http.StatusConflict,
	app_errors.CodeWeakPassword:          http.StatusBadRequest,
	app_errors.CodeNotFound:              http.StatusNotFound,
	app_errors.CodeConflictExhausted:     http.StatusConflict,
	app_errors.CodeDependencyUnavailable: http.StatusBadGateway,
}

func (s *HttpHandler) callContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), s.requestTimeout)
}

func (s *HttpHandler) SignUp(c fiber.Ctx) error {
	req := &entities.SignUpRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return app_errors.Validation("malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	account, session, err := s.auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusCreated)
	// Auto-confirmed signups already carry a session; return it so the
	// client can skip the extra login round-trip.
	if session != nil {
		return c.JSON(&entities.LogInResult{User: account, Session: session})
	}
	return c.JSON(account)
}

func (s *HttpHandler) LogIn(c fiber.Ctx) error {
	req := &entities.LogInRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return app_errors.Validation("malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	result, err := s.auth.LogIn(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusOK)
	return c.JSON(result)
}

func (s *HttpHandler) CreateProfile(c fiber.Ctx) error {
	req := &entities.CreateProfileRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return app_errors.Validation("malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	rows, err := s.profiles.CreateProfile(ctx, req.UserId, req.Name, req.Role)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusCreated)
	return c.JSON(rows)
}

func (s *HttpHandler) AddXp(c fiber.Ctx) error {
	req := &entities.AddXpRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return app_errors.Validation("malformed request body")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	ctx, cancel := s.callContext(c)
	defer cancel()

	newXp, err := s.profiles.AddXp(ctx, req.UserId, *req.Xp)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusOK)
	return c.JSON(&entities.AddXpResponse{Xp: newXp})
}

func (s *HttpHandler) GetProfile(c fiber.Ctx) error {
	userId := c.Params("userId")

	ctx, cancel := s.callContext(c)
	defer cancel()

	profile, err := s.profiles.GetProfile(ctx, userId)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusOK)
	return c.JSON(profile)
}

func (s *HttpHandler) Leaderboard(c fiber.Ctx) error {
	ctx, cancel := s.callContext(c)
	defer cancel()

	entries, err := s.profiles.Leaderboard(ctx)
	if err != nil {
		return err
	}
	c.Status(fiber.StatusOK)
	return c.JSON(entries)
}

func (s *HttpHandler) Health(c fiber.Ctx) error {
	c.Status(fiber.StatusOK)
	return c.JSON(&entities.HealthResponse{Status: "OK"})
}

func (s *HttpHandler) Metrics(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	metrics.WritePrometheus(c.Response().BodyWriter(), true)
	return nil
}
