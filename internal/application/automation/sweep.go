package automation

import (
	"fmt"
	"runtime/debug"
)

// SweepResult resultado de un barrido por entidades.
type SweepResult struct {
	Processed     int
	Failed        int
	AlertsCreated int
}

func (r *SweepResult) add(created bool) {
	if created {
		r.AlertsCreated++
	}
}

// isolate ejecuta fn convirtiendo un panic en error, para que una entidad no aborte el barrido.
func isolate(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return fn()
}
