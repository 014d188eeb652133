package entity

import (
	"encoding/json"
	"time"
)

// Session registro persistido de un diálogo USSD (tabla ussd_sessions).
// State es la etiqueta del menú y Payload los datos propios de ese estado (JSON);
// la forma tipada vive en el paquete domain/ussd.
type Session struct {
	ID          string
	PhoneNumber string
	State       string
	Payload     json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
