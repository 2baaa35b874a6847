package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	docs "github.com/studypool/studypool_api/docs"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"github.com/studypool/studypool_api/ratelimit"
	"github.com/studypool/studypool_api/services/handlers"
	"github.com/studypool/studypool_api/shared"
)

type HttpService struct {
	appContext.DefaultService

	authSvc       *AuthService
	jwtSvc        *JWTService
	rateLimitSvc  *RateLimitService
	materialSvc   *MaterialService
	commentSvc    *CommentService
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

// Material uploads carry up to 20 MB of file content plus the form fields.
const maxRequestBodyBytes = 25 * 1024 * 1024

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *appContext.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.materialSvc = svc.Service(MATERIAL_SVC).(*MaterialService)
	svc.commentSvc = svc.Service(COMMENT_SVC).(*CommentService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		BodyLimit:    maxRequestBodyBytes,
		JSONEncoder:  shared.JSONMarshal,
		JSONDecoder:  shared.JSONUnmarshal,
		ErrorHandler: svc.handleError,
	})

	docs.SwaggerInfo.BasePath = ""
	app.Use(recover.New())

	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	authHandler := handlers.NewAuthHandler(svc.authSvc, svc.jwtSvc)
	materialHandler := handlers.NewMaterialHandler(svc.materialSvc)
	commentHandler := handlers.NewCommentHandler(svc.commentSvc)
	adminHandler := handlers.NewAdminHandler(svc.authSvc)

	//Validation endpoints
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1")

	v1.Get("/ping", svc.rateLimitSvc.Limit(ratelimit.Test), svc.ping)

	auth := v1.Group("/auth")
	auth.Post("/register", svc.rateLimitSvc.Limit(ratelimit.Auth), authHandler.Register)
	auth.Post("/login", svc.rateLimitSvc.Limit(ratelimit.Auth), authHandler.Login)
	auth.Post("/refresh", svc.rateLimitSvc.Limit(ratelimit.Auth), authHandler.Refresh)
	auth.Post("/logout", svc.authSvc.RequiredAuth(), authHandler.Logout)
	auth.Get("/me", svc.authSvc.RequiredAuth(), authHandler.Me)

	v1.Get("/subjects", svc.rateLimitSvc.Limit(ratelimit.General), materialHandler.ListSubjects)

	materials := v1.Group("/materials")
	materials.Get("/", svc.rateLimitSvc.Limit(ratelimit.General), materialHandler.List)
	materials.Post("/", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.LimitByUser(ratelimit.Upload), materialHandler.Upload)
	materials.Get("/:id", svc.rateLimitSvc.Limit(ratelimit.General), materialHandler.Get)
	materials.Get("/:id/download", svc.rateLimitSvc.Limit(ratelimit.General), materialHandler.Download)
	materials.Delete("/:id", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.LimitByUser(ratelimit.Delete), materialHandler.Delete)

	materials.Get("/:id/comments", svc.rateLimitSvc.Limit(ratelimit.General), commentHandler.ListByMaterial)
	materials.Post("/:id/comments", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.LimitByUser(ratelimit.General), commentHandler.Create)

	v1.Delete("/comments/:commentId", svc.authSvc.RequiredAuth(), svc.rateLimitSvc.LimitByUser(ratelimit.Delete), commentHandler.Delete)

	admin := v1.Group("/admin", svc.authSvc.RequiredAuth(), svc.authSvc.RequireAdmin())
	admin.Get("/users", adminHandler.GetUsers)
	admin.Put("/users/:userId", adminHandler.UpdateUser)
	admin.Delete("/users/:userId", adminHandler.DeleteUser)
	admin.Get("/rate-limits", svc.rateLimitSvc.GetRateLimitStats())
	admin.Get("/rate-limits/:identifier", svc.rateLimitSvc.InspectIdentifier())
	admin.Delete("/rate-limits", svc.rateLimitSvc.FlushRateLimits())

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseJSON(c, http.StatusNotFound, "Page not found", nil)
	})

	svc.app = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

// handleError renders service errors through the shared response envelope.
// Validation and rate-limit rejections never reach here; their handlers
// write fixed body shapes directly.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
