package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrSessionExpired   = errors.New("sesión USSD inexistente o expirada")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrStoreUnavailable = errors.New("almacenamiento no disponible")
	ErrUnknownState     = errors.New("estado de menú desconocido")
)

// ValidationError texto libre con forma incorrecta en un paso concreto.
// Se recupera localmente repitiendo la pregunta; nunca llega al usuario como falla.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InvalidChoiceError la entrada no coincide con ninguna opción del menú actual.
type InvalidChoiceError struct {
	State string
	Input string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("opción %q no válida en %s", e.Input, e.State)
}

func (e *InvalidChoiceError) Unwrap() error { return ErrInvalidInput }

// NotFoundError registro esperado ausente (sesión, trabajador, empleador...).
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StoreFault falla de persistencia; aborta el dispatch completo.
type StoreFault struct {
	Op  string
	Err error
}

func (e *StoreFault) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Is permite errors.Is(err, ErrStoreUnavailable) además de la causa original.
func (e *StoreFault) Is(target error) bool { return target == ErrStoreUnavailable }

func (e *StoreFault) Unwrap() error { return e.Err }

// NewStoreFault envuelve err como StoreFault; nil si err es nil.
func NewStoreFault(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreFault{Op: op, Err: err}
}
