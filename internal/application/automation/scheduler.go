package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Task tarea periódica con su cadencia propia.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// TaskInfo descripción pública de una tarea.
type TaskInfo struct {
	Name     string        `json:"name"`
	Interval time.Duration `json:"interval"`
}

// TaskResult resultado de una ejecución manual.
type TaskResult struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Scheduler dueño explícito de los timers de las tareas: Stopped -> Running con Start, y de
// vuelta con Stop. Cada instancia es independiente.
//
// Cada ejecución corre con su propio deadline (timeout) y con un contexto que Stop no cancela:
// Stop evita disparos futuros pero no aborta trabajo en curso. Ejecuciones simultáneas de la
// misma tarea (timer + disparo manual) se colapsan en una.
type Scheduler struct {
	tasks   []Task
	byName  map[string]Task
	timeout time.Duration
	log     zerolog.Logger
	flight  singleflight.Group

	mu      sync.Mutex
	tickers map[string]*time.Ticker
	done    chan struct{}
}

// NewScheduler construye el scheduler detenido.
func NewScheduler(tasks []Task, timeout time.Duration, log zerolog.Logger) *Scheduler {
	byName := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		byName[t.Name] = t
	}
	return &Scheduler{
		tasks:   tasks,
		byName:  byName,
		timeout: timeout,
		log:     log,
		tickers: make(map[string]*time.Ticker),
	}
}

// Start limpia los timers existentes y registra uno por tarea. Llamarlo dos veces no duplica timers.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	done := make(chan struct{})
	s.done = done
	for _, t := range s.tasks {
		if t.Interval <= 0 {
			s.log.Warn().Str("task", t.Name).Msg("tarea sin intervalo, no se programa")
			continue
		}
		ticker := time.NewTicker(t.Interval)
		s.tickers[t.Name] = ticker
		go s.loop(t, ticker, done)
	}
	s.log.Info().Int("timers", len(s.tickers)).Msg("scheduler iniciado")
}

// Stop elimina todos los timers. Es seguro llamarlo con el scheduler detenido.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return
	}
	s.stopLocked()
	s.log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) stopLocked() {
	for name, ticker := range s.tickers {
		ticker.Stop()
		delete(s.tickers, name)
	}
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

// Running indica si hay timers programados.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// ActiveTimers número de timers pendientes.
func (s *Scheduler) ActiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// Tasks lista las tareas registradas en orden.
func (s *Scheduler) Tasks() []TaskInfo {
	out := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, TaskInfo{Name: t.Name, Interval: t.Interval})
	}
	return out
}

// RunAllTasks ejecuta cada tarea una vez, en secuencia, sin importar el estado de los timers.
// El fallo de una tarea se registra y no impide las siguientes.
func (s *Scheduler) RunAllTasks(ctx context.Context) []TaskResult {
	results := make([]TaskResult, 0, len(s.tasks))
	for _, t := range s.tasks {
		start := time.Now()
		err := s.execute(ctx, t)
		results = append(results, TaskResult{Name: t.Name, Err: err, Duration: time.Since(start)})
	}
	return results
}

// RunTask ejecuta una sola tarea por nombre. Un nombre desconocido se registra y
// devuelve domain.ErrUnknownTask sin ejecutar nada.
func (s *Scheduler) RunTask(ctx context.Context, name string) error {
	t, ok := s.byName[name]
	if !ok {
		s.log.Error().Str("task", name).Msg("tarea desconocida")
		return fmt.Errorf("%w: %s", domain.ErrUnknownTask, name)
	}
	return s.execute(ctx, t)
}

func (s *Scheduler) loop(t Task, ticker *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			select {
			case <-done:
				return
			default:
			}
			_ = s.execute(context.Background(), t)
		}
	}
}

func (s *Scheduler) execute(parent context.Context, t Task) error {
	_, err, _ := s.flight.Do(t.Name, func() (interface{}, error) {
		return nil, s.invoke(parent, t)
	})
	return err
}

func (s *Scheduler) invoke(parent context.Context, t Task) (err error) {
	ctx := parent
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic en tarea %s: %v", t.Name, rec)
		}
		if err != nil {
			s.log.Error().Err(err).Str("task", t.Name).Dur("duration", time.Since(start)).Msg("tarea fallida")
			return
		}
		s.log.Info().Str("task", t.Name).Dur("duration", time.Since(start)).Msg("tarea completada")
	}()

	return t.Run(ctx)
}
