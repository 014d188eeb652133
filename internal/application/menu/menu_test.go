package menu_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

func newRenderer() *menu.Renderer {
	return menu.New(menu.Options{ServiceCode: "*384*531#", SupportPhone: "+260960000000", SupportEmail: "support@jowa.co.zm"})
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "K50.00", menu.Money(decimal.NewFromInt(50)))
	assert.Equal(t, "K1,500.50", menu.Money(decimal.RequireFromString("1500.5")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Helper", menu.Truncate("  Helper ", 10))
	assert.Equal(t, "Constru...", menu.Truncate("Construction worker", 10))
	assert.Equal(t, "Ab", menu.Truncate("Abcdef", 2))
}

func TestMainMenu_ContieneTodasLasOpciones(t *testing.T) {
	text := newRenderer().MainMenu()
	for _, opt := range []string{"1. Looking for Work", "2. Post a Job", "3. About Jowa", "4. Contact Support"} {
		assert.Contains(t, text, opt)
	}
}

func TestJobListing(t *testing.T) {
	jobs := []*entity.JobListing{
		{Job: entity.Job{Title: "Helper", Location: "Lusaka", PaymentAmount: decimal.NewFromInt(50), PaymentType: entity.PaymentDaily}, CompanyName: "AcmeCo"},
		{Job: entity.Job{Title: "Gardener", Location: "Ndola", PaymentAmount: decimal.NewFromInt(20), PaymentType: entity.PaymentHourly}, CompanyName: "GreenLtd"},
	}
	text := newRenderer().JobListing(jobs, 1)

	assert.True(t, strings.HasPrefix(text, "Available Jobs (Page 2):"))
	assert.Contains(t, text, "1. Helper\n   Lusaka - AcmeCo\n   K50.00/daily")
	assert.Contains(t, text, "2. Gardener")
	assert.True(t, strings.HasSuffix(text, "4. Next Page\n5. Back\n0. Main Menu"))
}

func TestApplicationList(t *testing.T) {
	apps := []*entity.WorkerApplicationView{
		{JobTitle: "Helper", CompanyName: "AcmeCo", Status: entity.ApplicationPending, AppliedAt: time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)},
	}
	text := newRenderer().ApplicationList(apps, 0)
	assert.Contains(t, text, "1. Helper\n   AcmeCo | Pending | 02/01/2026")
	assert.Contains(t, text, "6. Next Page\n7. Previous Page\n0. Main Menu")
}

func TestEmployerListingsVacios(t *testing.T) {
	r := newRenderer()
	assert.Contains(t, r.EmployerJobs(nil), "haven't posted any jobs")
	assert.Contains(t, r.EmployerApplications(nil), "No applications received yet")
}

func TestPaymentOutcome(t *testing.T) {
	r := newRenderer()
	ok := &entity.Payment{Amount: decimal.NewFromInt(50), Provider: entity.ProviderMTN, Purpose: entity.PurposePremiumListing, Status: entity.PaymentStatusSuccess, TransactionID: "TXN123"}
	assert.Contains(t, r.PaymentOutcome(ok), "Payment successful!")
	assert.Contains(t, r.PaymentOutcome(ok), "Txn ID: TXN123")

	failed := *ok
	failed.Status = entity.PaymentStatusFailed
	assert.Contains(t, r.PaymentOutcome(&failed), "failed")
}

func TestMensajesDeError_SinDetalleInterno(t *testing.T) {
	r := newRenderer()
	assert.Equal(t, "Session expired. Please dial *384*531# again.", r.SessionExpired())
	assert.NotContains(t, r.ServiceUnavailable(), "postgres")
}
