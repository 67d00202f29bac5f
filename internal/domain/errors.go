package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnknownTask  = errors.New("tarea desconocida")
	ErrLockTimeout  = errors.New("no se pudo adquirir el lock a tiempo")
)
