// Package sms envía notificaciones por la API de mensajería de Africa's Talking.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/pkg/config"
	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

var _ ussd.Notifier = (*Client)(nil)

// Client adaptador de envío de SMS. Sin API key funciona en modo simulación:
// registra el mensaje en el log y no hace ninguna llamada.
type Client struct {
	cfg        config.AfricasTalkingConfig
	httpClient *http.Client
	log        *logger.Logger
}

// New construye el cliente.
func New(cfg config.AfricasTalkingConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		log:        log,
	}
}

// Simulated true si no hay credenciales configuradas.
func (c *Client) Simulated() bool {
	return c.cfg.APIKey == ""
}

type sendResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			Cost       string `json:"cost"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Códigos de destinatario aceptados por el gateway: Processed, Sent, Queued.
func accepted(code int) bool {
	return code == 100 || code == 101 || code == 102
}

// Notify envía un SMS a phone.
func (c *Client) Notify(ctx context.Context, phone, message string) error {
	if c.Simulated() {
		c.log.Info().Str("to", phone).Str("message", message).Msg("SMS simulado")
		return nil
	}

	form := url.Values{}
	form.Set("username", c.cfg.Username)
	form.Set("to", phone)
	form.Set("message", message)
	if c.cfg.SenderID != "" {
		form.Set("from", c.cfg.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.SMSURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: crear request: %w", err)
	}
	req.Header.Set("apiKey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: enviar: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("sms: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("sms: decodificar respuesta: %w", err)
	}
	if len(out.SMSMessageData.Recipients) == 0 {
		return fmt.Errorf("sms: sin destinatarios aceptados: %s", out.SMSMessageData.Message)
	}
	for _, r := range out.SMSMessageData.Recipients {
		if !accepted(r.StatusCode) {
			return fmt.Errorf("sms: %s rechazado: %s (%d)", r.Number, r.Status, r.StatusCode)
		}
		c.log.Debug().Str("to", r.Number).Str("message_id", r.MessageID).Str("cost", r.Cost).Msg("SMS enviado")
	}
	return nil
}
