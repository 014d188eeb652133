package entity

import (
	"strings"
	"time"
)

// Employer representa a quien publica trabajos. Clave natural: teléfono.
type Employer struct {
	ID           int64
	PhoneNumber  string
	CompanyName  string
	BusinessType string
	CreatedAt    time.Time
}

// IsRegistered true cuando el empleador ya tiene nombre de empresa.
func (e *Employer) IsRegistered() bool {
	return e != nil && strings.TrimSpace(e.CompanyName) != ""
}
