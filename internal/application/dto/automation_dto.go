package dto

import (
	"time"

	"github.com/jhoicas/stock-automation/internal/application/automation"
)

// TaskResponse tarea registrada en el scheduler.
type TaskResponse struct {
	Name     string `json:"name"`
	Interval string `json:"interval"`
}

// TaskRunResponse resultado de una ejecución manual.
type TaskRunResponse struct {
	Name       string `json:"name"`
	Status     string `json:"status"` // "ok" | "error"
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RunAllResponse resultado de ejecutar todas las tareas.
type RunAllResponse struct {
	Results []TaskRunResponse `json:"results"`
	Failed  int               `json:"failed"`
}

// ToTaskResponses convierte la descripción de tareas del scheduler.
func ToTaskResponses(tasks []automation.TaskInfo) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskResponse{Name: t.Name, Interval: t.Interval.String()})
	}
	return out
}

// ToTaskRunResponse convierte el resultado de una ejecución.
func ToTaskRunResponse(name string, d time.Duration, err error) TaskRunResponse {
	res := TaskRunResponse{Name: name, Status: "ok", DurationMs: d.Milliseconds()}
	if err != nil {
		res.Status = "error"
		res.Error = err.Error()
	}
	return res
}

// ToRunAllResponse convierte los resultados de RunAllTasks.
func ToRunAllResponse(results []automation.TaskResult) RunAllResponse {
	out := RunAllResponse{Results: make([]TaskRunResponse, 0, len(results))}
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		}
		out.Results = append(out.Results, ToTaskRunResponse(r.Name, r.Duration, r.Err))
	}
	return out
}
