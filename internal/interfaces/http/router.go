package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName   string
	Tasks     TaskRunner
	Alerts    AlertResolver
	JWTSecret string
	Log       zerolog.Logger
}

// NewApp crea la app Fiber con recover, /health y las rutas de operación.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API. Todas requieren Bearer Token con rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret), RequireRole("admin"))
	h := NewAutomationHandler(deps.Tasks, deps.Alerts, deps.Log)

	automationGroup := api.Group("/automation")
	automationGroup.Get("/tasks", h.ListTasks)
	automationGroup.Post("/tasks/:name/run", h.RunTask)
	automationGroup.Post("/run-all", h.RunAll)

	api.Post("/alerts/:id/resolve", h.ResolveAlert)
}
