package sms_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jowa-zm/jowa-ussd/internal/infrastructure/sms"
	"github.com/jowa-zm/jowa-ussd/pkg/config"
)

func TestNotify_SinAPIKeySimula(t *testing.T) {
	c := sms.New(config.AfricasTalkingConfig{Username: "sandbox", SMSURL: "http://127.0.0.1:1"}, nil)

	assert.True(t, c.Simulated())
	assert.NoError(t, c.Notify(context.Background(), "+260971234567", "hola"))
}

func TestNotify_EnviaFormularioConAPIKey(t *testing.T) {
	var got url.Values
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("apiKey")
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"SMSMessageData":{"Message":"Sent to 1/1","Recipients":[{"statusCode":101,"number":"+260971234567","status":"Success","cost":"ZMW 0.30","messageId":"ATXid_1"}]}}`)
	}))
	defer srv.Close()

	c := sms.New(config.AfricasTalkingConfig{Username: "jowa", APIKey: "secret", SenderID: "JOWA", SMSURL: srv.URL}, nil)
	require.NoError(t, c.Notify(context.Background(), "+260971234567", "Job posted"))

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, "jowa", got.Get("username"))
	assert.Equal(t, "+260971234567", got.Get("to"))
	assert.Equal(t, "Job posted", got.Get("message"))
	assert.Equal(t, "JOWA", got.Get("from"))
}

func TestNotify_DestinatarioRechazado(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"SMSMessageData":{"Message":"Sent to 0/1","Recipients":[{"statusCode":403,"number":"+260971234567","status":"InvalidPhoneNumber"}]}}`)
	}))
	defer srv.Close()

	c := sms.New(config.AfricasTalkingConfig{Username: "jowa", APIKey: "secret", SMSURL: srv.URL}, nil)
	err := c.Notify(context.Background(), "+260971234567", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidPhoneNumber")
}

func TestNotify_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The supplied authentication is invalid", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := sms.New(config.AfricasTalkingConfig{Username: "jowa", APIKey: "bad", SMSURL: srv.URL}, nil)
	err := c.Notify(context.Background(), "+260971234567", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
