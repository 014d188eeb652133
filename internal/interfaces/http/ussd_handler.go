package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jowa-zm/jowa-ussd/internal/application/dto"
	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
	"github.com/jowa-zm/jowa-ussd/pkg/validate"
)

// Dispatcher motor de sesiones consumido por los adaptadores del gateway.
type Dispatcher interface {
	Dispatch(ctx context.Context, req ussd.Request) ussd.Reply
}

// USSDHandler adapta las dos variantes del gateway al mismo dispatcher.
type USSDHandler struct {
	dispatcher Dispatcher
	render     *menu.Renderer
	limiter    *PhoneLimiter
	log        *logger.Logger
}

// NewUSSDHandler construye el handler. limiter puede ser nil (sin límite).
func NewUSSDHandler(d Dispatcher, render *menu.Renderer, limiter *PhoneLimiter, log *logger.Logger) *USSDHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &USSDHandler{dispatcher: d, render: render, limiter: limiter, log: log}
}

// JSON godoc
// @Summary      Interacción USSD (JSON)
// @Description  Recibe la última entrada del usuario y devuelve el siguiente menú. type "2" continúa la sesión, "1" la termina.
// @Tags         ussd
// @Accept       json
// @Produce      json
// @Param        body  body      dto.USSDRequest  true  "Interacción"
// @Success      200   {object}  dto.USSDResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /ussd [post]
func (h *USSDHandler) JSON(c *fiber.Ctx) error {
	var in dto.USSDRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.SessionID) == "" || strings.TrimSpace(in.PhoneNumber) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sessionId y phoneNumber son requeridos"})
	}
	reply := h.handle(c.UserContext(), in, in.Text, strings.TrimSpace(in.Text) == "")
	typ := dto.USSDTypeContinue
	if reply.End {
		typ = dto.USSDTypeEnd
	}
	return c.JSON(dto.USSDResponse{SessionID: in.SessionID, Message: reply.Message, Type: typ})
}

// AfricasTalking godoc
// @Summary      Interacción USSD (Africa's Talking)
// @Description  Callback form-urlencoded con texto acumulado (1*Jane*Cleaning). Responde texto plano con prefijo CON o END.
// @Tags         ussd
// @Accept       x-www-form-urlencoded
// @Produce      plain
// @Param        sessionId    formData  string  true   "ID de sesión"
// @Param        phoneNumber  formData  string  true   "Teléfono"
// @Param        text         formData  string  false  "Entrada acumulada"
// @Param        serviceCode  formData  string  false  "Código marcado"
// @Success      200  {string}  string  "CON ... / END ..."
// @Failure      400  {string}  string
// @Router       /ussd/africastalking [post]
func (h *USSDHandler) AfricasTalking(c *fiber.Ctx) error {
	in := dto.USSDRequest{
		SessionID:   c.FormValue("sessionId"),
		PhoneNumber: c.FormValue("phoneNumber"),
		Text:        c.FormValue("text"),
		ServiceCode: c.FormValue("serviceCode"),
		NetworkCode: c.FormValue("networkCode"),
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	if strings.TrimSpace(in.SessionID) == "" || strings.TrimSpace(in.PhoneNumber) == "" {
		return c.Status(fiber.StatusBadRequest).SendString("END " + h.render.ServiceUnavailable())
	}
	// Solo el texto acumulado vacío abre el diálogo; "2*AcmeCo*" es una entrada vacía
	// en medio de la sesión y se valida como cualquier otra.
	reply := h.handle(c.UserContext(), in, LatestInput(in.Text), in.Text == "")
	prefix := "CON "
	if reply.End {
		prefix = "END "
	}
	return c.SendString(prefix + reply.Message)
}

// handle aplica los filtros comunes (teléfono y límite) antes de despachar.
func (h *USSDHandler) handle(ctx context.Context, in dto.USSDRequest, input string, start bool) ussd.Reply {
	phone := strings.TrimSpace(in.PhoneNumber)
	if err := validate.PhoneNumber(phone); err != nil {
		h.log.Info().Err(err).Str("session_id", in.SessionID).Msg("teléfono rechazado")
		return ussd.Reply{Message: h.render.InvalidPhone(), End: true}
	}
	if h.limiter != nil && !h.limiter.Allow(phone) {
		h.log.Warn().Str("phone", phone).Str("session_id", in.SessionID).Msg("límite de peticiones excedido")
		return ussd.Reply{Message: h.render.TooManyRequests(), End: true}
	}
	return h.dispatcher.Dispatch(ctx, ussd.Request{
		SessionID:   strings.TrimSpace(in.SessionID),
		PhoneNumber: phone,
		Text:        input,
		Start:       start,
	})
}

// LatestInput extrae la última entrada del texto acumulado de Africa's Talking.
// Con "1*" la última entrada es "".
func LatestInput(text string) string {
	if i := strings.LastIndex(text, "*"); i >= 0 {
		return text[i+1:]
	}
	return text
}
