package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType modalidad de pago de un trabajo.
type PaymentType string

const (
	PaymentHourly  PaymentType = "hourly"
	PaymentDaily   PaymentType = "daily"
	PaymentProject PaymentType = "project"
)

// PaymentTypeChoices orden en el que se ofrecen en el menú (1, 2, 3).
var PaymentTypeChoices = []PaymentType{PaymentHourly, PaymentDaily, PaymentProject}

// PaymentTypeFromChoice traduce la tecla del usuario ("1".."3") a la modalidad.
func PaymentTypeFromChoice(choice string) (PaymentType, bool) {
	switch choice {
	case "1":
		return PaymentHourly, true
	case "2":
		return PaymentDaily, true
	case "3":
		return PaymentProject, true
	}
	return "", false
}

// Valid true si el valor pertenece al enum.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentHourly, PaymentDaily, PaymentProject:
		return true
	}
	return false
}

// Estados de un trabajo (deben coincidir con el CHECK de la tabla jobs).
const (
	JobStatusActive   = "active"
	JobStatusInactive = "inactive"
)

// Job oferta publicada por un empleador.
type Job struct {
	ID            int64
	EmployerID    int64
	Title         string
	Description   string
	Location      string
	PaymentAmount decimal.Decimal
	PaymentType   PaymentType
	Status        string
	CreatedAt     time.Time
}

// JobListing trabajo activo con los datos del empleador para el listado público.
type JobListing struct {
	Job
	CompanyName   string
	EmployerPhone string
}

// EmployerJobSummary trabajo propio con su número de postulaciones.
type EmployerJobSummary struct {
	Job
	ApplicationCount int
}
