package dto

// USSDRequest cuerpo JSON que envía el gateway en cada interacción.
type USSDRequest struct {
	SessionID   string `json:"sessionId" form:"sessionId" example:"ATUid_0b5c4d2e"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" example:"+260971234567"`
	Text        string `json:"text" form:"text" example:"1"`
	ServiceCode string `json:"serviceCode,omitempty" form:"serviceCode" example:"*384*531#"`
	NetworkCode string `json:"networkCode,omitempty" form:"networkCode"`
}

// Valores de USSDResponse.Type.
const (
	USSDTypeEnd      = "1"
	USSDTypeContinue = "2"
)

// USSDResponse respuesta JSON: Type "1" termina la sesión, "2" espera más entrada.
type USSDResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Type      string `json:"type" example:"2"`
}

// TableStatus presencia y tamaño de una tabla requerida.
type TableStatus struct {
	Table  string `json:"table"`
	Exists bool   `json:"exists"`
	Rows   int64  `json:"rows"`
}

// HealthResponse respuesta de GET /health.
type HealthResponse struct {
	Status   string        `json:"status" example:"healthy"`
	Database string        `json:"database" example:"connected"`
	Tables   []TableStatus `json:"tables,omitempty"`
	Message  string        `json:"message,omitempty"`
}
