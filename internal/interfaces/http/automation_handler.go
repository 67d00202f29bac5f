package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/application/dto"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/rs/zerolog"
)

// TaskRunner contrato del scheduler que usa el handler. Lo implementa *automation.Scheduler.
type TaskRunner interface {
	Tasks() []automation.TaskInfo
	RunTask(ctx context.Context, name string) error
	RunAllTasks(ctx context.Context) []automation.TaskResult
}

// AlertResolver lo implementa *automation.Service.
type AlertResolver interface {
	ResolveAlert(ctx context.Context, id string) error
}

// AutomationHandler disparo manual de tareas y resolución de alertas (protegido, rol admin).
type AutomationHandler struct {
	tasks  TaskRunner
	alerts AlertResolver
	log    zerolog.Logger
}

// NewAutomationHandler construye el handler.
func NewAutomationHandler(tasks TaskRunner, alerts AlertResolver, log zerolog.Logger) *AutomationHandler {
	return &AutomationHandler{tasks: tasks, alerts: alerts, log: log}
}

// ListTasks GET /api/automation/tasks
func (h *AutomationHandler) ListTasks(c *fiber.Ctx) error {
	return c.JSON(dto.ToTaskResponses(h.tasks.Tasks()))
}

// RunTask POST /api/automation/tasks/:name/run
func (h *AutomationHandler) RunTask(c *fiber.Ctx) error {
	name := c.Params("name")
	start := time.Now()
	err := h.tasks.RunTask(c.UserContext(), name)
	if errors.Is(err, domain.ErrUnknownTask) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_TASK", Message: "tarea desconocida: " + name})
	}
	h.log.Info().Str("task", name).Str("operator_id", GetOperatorID(c)).Msg("tarea disparada manualmente")

	res := dto.ToTaskRunResponse(name, time.Since(start), err)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(res)
	}
	return c.JSON(res)
}

// RunAll POST /api/automation/run-all
func (h *AutomationHandler) RunAll(c *fiber.Ctx) error {
	h.log.Info().Str("operator_id", GetOperatorID(c)).Msg("ejecución manual de todas las tareas")
	res := dto.ToRunAllResponse(h.tasks.RunAllTasks(c.UserContext()))
	status := fiber.StatusOK
	if res.Failed > 0 {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(res)
}

// ResolveAlert POST /api/alerts/:id/resolve
func (h *AutomationHandler) ResolveAlert(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	err := h.alerts.ResolveAlert(c.UserContext(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "alerta no encontrada"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	h.log.Info().Str("alert_id", id).Str("operator_id", GetOperatorID(c)).Msg("alerta resuelta manualmente")
	return c.SendStatus(fiber.StatusNoContent)
}
