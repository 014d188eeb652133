package entity

import (
	"strings"
	"time"
)

// Worker representa a quien busca trabajo (tabla users). La clave natural es el teléfono.
// Se crea vacío en el primer contacto y se completa en el registro.
type Worker struct {
	ID          int64
	PhoneNumber string
	FullName    string
	Skills      string
	Location    string
	CreatedAt   time.Time
}

// IsRegistered true cuando el registro ya tiene nombre.
func (w *Worker) IsRegistered() bool {
	return w != nil && strings.TrimSpace(w.FullName) != ""
}
