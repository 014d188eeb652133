package entity

import "time"

// Estados de una postulación. La aprobación/rechazo es administrativa (fuera del USSD).
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Application une un Worker con un Job. Máximo una por par (job, worker).
type Application struct {
	ID        int64
	JobID     int64
	WorkerID  int64
	Status    string
	AppliedAt time.Time
}

// WorkerApplicationView postulación propia con datos del trabajo (listado "My Applications").
type WorkerApplicationView struct {
	ApplicationID int64
	JobTitle      string
	CompanyName   string
	Status        string
	AppliedAt     time.Time
}

// JobApplicationView postulación recibida con datos del postulante (vista del empleador).
type JobApplicationView struct {
	ApplicationID  int64
	JobID          int64
	JobTitle       string
	ApplicantName  string
	ApplicantPhone string
	Status         string
	AppliedAt      time.Time
}
