package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jowa-zm/jowa-ussd/internal/application/dto"
	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	apphttp "github.com/jowa-zm/jowa-ussd/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testPhone = "+260971234567"

// stubDispatcher registra las peticiones y responde lo configurado.
type stubDispatcher struct {
	mu    sync.Mutex
	calls []ussd.Request
	reply ussd.Reply
}

func (s *stubDispatcher) Dispatch(_ context.Context, req ussd.Request) ussd.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	return s.reply
}

type stubChecker struct {
	tables []dto.TableStatus
	err    error
}

func (s stubChecker) Check(context.Context) ([]dto.TableStatus, error) { return s.tables, s.err }

type routeHit struct {
	method, route string
	status        int
}

type stubHTTPRecorder struct {
	mu   sync.Mutex
	hits []routeHit
}

func (r *stubHTTPRecorder) ObserveHTTP(method, route string, status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, routeHit{method, route, status})
}

var testRenderer = menu.New(menu.Options{ServiceCode: "*384*531#"})

func buildTestApp(d apphttp.Dispatcher, limiter *apphttp.PhoneLimiter, checker apphttp.HealthChecker, rec apphttp.HTTPRecorder) *fiber.App {
	app := fiber.New()
	deps := apphttp.RouterDeps{
		USSD:    apphttp.NewUSSDHandler(d, testRenderer, limiter, nil),
		Metrics: rec,
	}
	if checker != nil {
		deps.Health = apphttp.NewHealthHandler(checker, nil)
	}
	apphttp.Router(app, deps)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/ussd", strings.NewReader(string(raw)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, app *fiber.App, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ussd/africastalking", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func decodeUSSD(t *testing.T, resp *http.Response) dto.USSDResponse {
	t.Helper()
	var out dto.USSDResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Variante JSON
// ──────────────────────────────────────────────────────────────────────────────

func TestUSSDJSON_ContinuaSesion(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Welcome", End: false}}
	app := buildTestApp(d, nil, nil, nil)

	resp := postJSON(t, app, map[string]string{"sessionId": "s1", "phoneNumber": testPhone, "text": " 1 "})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeUSSD(t, resp)
	assert.Equal(t, dto.USSDResponse{SessionID: "s1", Message: "Welcome", Type: dto.USSDTypeContinue}, out)
	require.Len(t, d.calls, 1)
	assert.Equal(t, ussd.Request{SessionID: "s1", PhoneNumber: testPhone, Text: " 1 "}, d.calls[0])
}

func TestUSSDJSON_TerminaSesion(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Bye", End: true}}
	app := buildTestApp(d, nil, nil, nil)

	out := decodeUSSD(t, postJSON(t, app, map[string]string{"sessionId": "s1", "phoneNumber": testPhone, "text": "3"}))
	assert.Equal(t, dto.USSDTypeEnd, out.Type)
	assert.Equal(t, "Bye", out.Message)
}

func TestUSSDJSON_CamposRequeridos(t *testing.T) {
	d := &stubDispatcher{}
	app := buildTestApp(d, nil, nil, nil)

	for name, body := range map[string]map[string]string{
		"sin sessionId":   {"phoneNumber": testPhone},
		"sin phoneNumber": {"sessionId": "s1"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, app, body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			var e dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.Equal(t, "VALIDATION", e.Code)
		})
	}
	assert.Empty(t, d.calls, "no debe despacharse nada")
}

func TestUSSDJSON_CuerpoInvalido(t *testing.T) {
	app := buildTestApp(&stubDispatcher{}, nil, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/ussd", strings.NewReader("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUSSDJSON_TelefonoNoZambiano(t *testing.T) {
	d := &stubDispatcher{}
	app := buildTestApp(d, nil, nil, nil)

	out := decodeUSSD(t, postJSON(t, app, map[string]string{"sessionId": "s1", "phoneNumber": "+254712345678"}))
	assert.Equal(t, dto.USSDTypeEnd, out.Type)
	assert.Equal(t, testRenderer.InvalidPhone(), out.Message)
	assert.Empty(t, d.calls)
}

func TestUSSDJSON_LimitePorTelefono(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "ok"}}
	var limited atomic.Int32
	limiter := apphttp.NewPhoneLimiter(1, 2, func() { limited.Add(1) })
	app := buildTestApp(d, limiter, nil, nil)

	body := map[string]string{"sessionId": "s1", "phoneNumber": testPhone, "text": ""}
	assert.Equal(t, dto.USSDTypeContinue, decodeUSSD(t, postJSON(t, app, body)).Type)
	assert.Equal(t, dto.USSDTypeContinue, decodeUSSD(t, postJSON(t, app, body)).Type)

	out := decodeUSSD(t, postJSON(t, app, body))
	assert.Equal(t, dto.USSDTypeEnd, out.Type)
	assert.Equal(t, testRenderer.TooManyRequests(), out.Message)
	assert.Equal(t, int32(1), limited.Load())
	assert.Len(t, d.calls, 2)

	// Otro teléfono tiene su propio bucket.
	other := map[string]string{"sessionId": "s2", "phoneNumber": "+260961111111"}
	assert.Equal(t, dto.USSDTypeContinue, decodeUSSD(t, postJSON(t, app, other)).Type)
}

// ──────────────────────────────────────────────────────────────────────────────
// Variante Africa's Talking
// ──────────────────────────────────────────────────────────────────────────────

func TestUSSDAfricasTalking_TextoAcumulado(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Enter your skills"}}
	app := buildTestApp(d, nil, nil, nil)

	resp, body := postForm(t, app, url.Values{
		"sessionId":   {"AT-1"},
		"phoneNumber": {testPhone},
		"serviceCode": {"*384*531#"},
		"text":        {"1*Jane Banda"},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))
	assert.Equal(t, "CON Enter your skills", body)
	require.Len(t, d.calls, 1)
	assert.Equal(t, "Jane Banda", d.calls[0].Text)
}

func TestUSSDAfricasTalking_Fin(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Thank you", End: true}}
	app := buildTestApp(d, nil, nil, nil)

	_, body := postForm(t, app, url.Values{"sessionId": {"AT-1"}, "phoneNumber": {testPhone}, "text": {""}})
	assert.Equal(t, "END Thank you", body)
	assert.Equal(t, "", d.calls[0].Text)
	assert.True(t, d.calls[0].Start)
}

func TestUSSDAfricasTalking_EntradaVaciaNoReiniciaDialogo(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Enter your business type"}}
	app := buildTestApp(d, nil, nil, nil)

	for _, text := range []string{"1*", "2*AcmeCo*"} {
		_, body := postForm(t, app, url.Values{"sessionId": {"AT-1"}, "phoneNumber": {testPhone}, "text": {text}})
		assert.Equal(t, "CON Enter your business type", body)
	}
	require.Len(t, d.calls, 2)
	for _, call := range d.calls {
		assert.Equal(t, "", call.Text)
		assert.False(t, call.Start, "solo el texto acumulado vacío abre el diálogo")
	}
}

func TestUSSDJSON_TextoVacioAbreDialogo(t *testing.T) {
	d := &stubDispatcher{reply: ussd.Reply{Message: "Welcome"}}
	app := buildTestApp(d, nil, nil, nil)

	postJSON(t, app, map[string]string{"sessionId": "s1", "phoneNumber": testPhone, "text": ""})
	postJSON(t, app, map[string]string{"sessionId": "s1", "phoneNumber": testPhone, "text": "1"})

	require.Len(t, d.calls, 2)
	assert.True(t, d.calls[0].Start)
	assert.False(t, d.calls[1].Start)
}

func TestUSSDAfricasTalking_SinSesion(t *testing.T) {
	d := &stubDispatcher{}
	app := buildTestApp(d, nil, nil, nil)

	resp, body := postForm(t, app, url.Values{"phoneNumber": {testPhone}})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "END "))
	assert.Empty(t, d.calls)
}

func TestLatestInput(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"1":              "1",
		"1*Jane":         "Jane",
		"1*Jane*":        "",
		"2*Acme*Retail*": "",
		"1*1*4*2":        "2",
	}
	for in, want := range cases {
		assert.Equal(t, want, apphttp.LatestInput(in), "entrada %q", in)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Salud y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	healthy := []dto.TableStatus{{Table: "users", Exists: true, Rows: 3}, {Table: "jobs", Exists: true}}

	cases := []struct {
		name    string
		checker stubChecker
		code    int
		status  string
	}{
		{"sano", stubChecker{tables: healthy}, fiber.StatusOK, "healthy"},
		{"tabla faltante", stubChecker{tables: []dto.TableStatus{{Table: "payments"}}}, fiber.StatusServiceUnavailable, "degraded"},
		{"sin base de datos", stubChecker{err: errors.New("dial tcp: refused")}, fiber.StatusServiceUnavailable, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildTestApp(&stubDispatcher{}, nil, tc.checker, nil)
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)

			var out dto.HealthResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tc.status, out.Status)
			assert.NotContains(t, out.Message, "refused", "no se expone el detalle interno")
		})
	}
}

func TestHome(t *testing.T) {
	app := buildTestApp(&stubDispatcher{}, nil, stubChecker{}, nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "Jowa USSD App is running!", string(body))
}

func TestMetricsMiddleware_UsaRutaRegistrada(t *testing.T) {
	rec := &stubHTTPRecorder{}
	app := buildTestApp(&stubDispatcher{reply: ussd.Reply{Message: "x"}}, nil, nil, rec)

	postForm(t, app, url.Values{"sessionId": {"AT-1"}, "phoneNumber": {testPhone}})
	postJSON(t, app, map[string]string{"sessionId": "s1"})

	require.Len(t, rec.hits, 2)
	assert.Equal(t, routeHit{http.MethodPost, "/ussd/africastalking", fiber.StatusOK}, rec.hits[0])
	assert.Equal(t, routeHit{http.MethodPost, "/ussd", fiber.StatusBadRequest}, rec.hits[1])
}
