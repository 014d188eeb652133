// Package menu convierte resultados de consultas en los bloques de texto fijos
// que se envían al teléfono. No hace I/O ni decide transiciones.
package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// Tamaños de página por listado.
const (
	JobsPageSize         = 3
	ApplicationsPageSize = 5
	PaymentsPageSize     = 5
	EmployerJobsLimit    = 10
	EmployerAppsLimit    = 5
)

const titleWidth = 28

// Options datos de contacto y código USSD que aparecen en los textos.
type Options struct {
	ServiceCode  string
	SupportPhone string
	SupportEmail string
}

// Renderer genera los textos de cada pantalla.
type Renderer struct {
	opts Options
}

// New construye el renderer.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// MainMenu pantalla inicial.
func (r *Renderer) MainMenu() string {
	return "Welcome to JOWA - Find Work in Zambia!\n\n" +
		"1. Looking for Work\n" +
		"2. Post a Job\n" +
		"3. About Jowa\n" +
		"4. Contact Support\n\n" +
		"Reply with 1, 2, 3, or 4"
}

// About texto informativo (termina la sesión).
func (r *Renderer) About() string {
	return "About JOWA\n\n" +
		"Connecting job seekers with employers across Zambia. No internet needed!\n\n" +
		"Find daily work opportunities\nPost jobs for free\nSimple USSD interface\n\n" +
		"For support: " + r.opts.SupportPhone
}

// Contact datos de soporte (termina la sesión).
func (r *Renderer) Contact() string {
	return "Contact Support:\n\n" +
		"Call: " + r.opts.SupportPhone + "\n" +
		"Email: " + r.opts.SupportEmail + "\n\n" +
		"Thank you for using Jowa!"
}

// WorkerDashboard menú del trabajador registrado.
func (r *Renderer) WorkerDashboard(name string) string {
	if strings.TrimSpace(name) == "" {
		name = "User"
	}
	return fmt.Sprintf("Welcome %s!\n\n", name) +
		"1. Browse Available Jobs\n" +
		"2. My Applications\n" +
		"3. Update Profile\n" +
		"4. Back to Main Menu\n" +
		"5. Payment History"
}

// EmployerDashboard menú del empleador registrado.
func (r *Renderer) EmployerDashboard(company string) string {
	if strings.TrimSpace(company) == "" {
		company = "Employer"
	}
	return fmt.Sprintf("Welcome %s!\n\n", company) +
		"1. Post New Job\n" +
		"2. View My Jobs\n" +
		"3. View Applications\n" +
		"4. Back to Main Menu\n" +
		"5. Buy Premium Listing\n" +
		"6. Payment History"
}

// Preguntas de los flujos lineales.
const (
	PromptWorkerName     = "Enter your full name:"
	PromptWorkerSkills   = "Enter your skills (e.g., Gardening, Cleaning, Construction):"
	PromptWorkerLocation = "Enter your location/town:"
	PromptCompanyName    = "Enter your company/business name:"
	PromptBusinessType   = "Enter your business type (e.g., Construction, Farming, Retail):"
	PromptJobTitle       = "Enter job title:"
	PromptJobDescription = "Enter job description:"
	PromptJobLocation    = "Enter job location:"
	PromptJobAmount      = "Enter payment amount in Kwacha (e.g., 50):"
	PromptJobPaymentType = "Select payment type:\n1. Hourly\n2. Daily\n3. Project"
)

// Retry repite la pregunta de un paso con el motivo del rechazo.
func (r *Renderer) Retry(reason, prompt string) string {
	return reason + "\n" + prompt
}

// Motivos de rechazo de entrada.
const (
	ReasonTooShort      = "Please enter at least 2 characters."
	ReasonTooLong       = "Too long. Please use at most 160 characters."
	ReasonInvalidAmount = "Invalid amount. Enter a number greater than 0."
	ReasonInvalidType   = "Invalid choice."
)

// InvalidOption respuesta genérica ante una opción inexistente; repite el menú actual.
func (r *Renderer) InvalidOption(current string) string {
	return "Invalid option. Please try again.\n\n" + current
}

// FirstPage aviso al intentar retroceder desde la primera página.
func (r *Renderer) FirstPage(current string) string {
	return "You're on the first page.\n\n" + current
}

// LastPage aviso al intentar avanzar más allá del último resultado.
func (r *Renderer) LastPage(current string) string {
	return "No more results.\n\n" + current
}

// JobListing listado de trabajos activos (página de tres).
func (r *Renderer) JobListing(jobs []*entity.JobListing, page int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available Jobs (Page %d):\n\n", page+1)
	for i, j := range jobs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, Truncate(j.Title, titleWidth))
		fmt.Fprintf(&b, "   %s - %s\n", Truncate(j.Location, 16), Truncate(j.CompanyName, 16))
		fmt.Fprintf(&b, "   %s/%s\n\n", Money(j.PaymentAmount), j.PaymentType)
	}
	b.WriteString("4. Next Page\n5. Back\n0. Main Menu")
	return b.String()
}

// NoJobs no hay trabajos en la página pedida (termina la sesión).
func (r *Renderer) NoJobs() string {
	return "No jobs available at the moment. Check back later!"
}

// ApplicationSubmitted confirmación de postulación (termina la sesión).
func (r *Renderer) ApplicationSubmitted(jobTitle string) string {
	return fmt.Sprintf("Application submitted for: %s\n\nEmployer will contact you soon!", Truncate(jobTitle, titleWidth))
}

// ApplicationList postulaciones propias (página de cinco).
func (r *Renderer) ApplicationList(apps []*entity.WorkerApplicationView, page int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your Applications (Page %d):\n\n", page+1)
	for i, a := range apps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, Truncate(a.JobTitle, titleWidth))
		fmt.Fprintf(&b, "   %s | %s | %s\n\n", Truncate(a.CompanyName, 16), titleCase(a.Status), Date(a.AppliedAt))
	}
	b.WriteString("6. Next Page\n7. Previous Page\n0. Main Menu")
	return b.String()
}

// NoApplications sin postulaciones (termina la sesión).
func (r *Renderer) NoApplications() string {
	return "You haven't applied to any jobs yet.\n\nBrowse jobs to get started!"
}

// EmployerJobs trabajos publicados con conteo de postulaciones (termina la sesión).
func (r *Renderer) EmployerJobs(jobs []*entity.EmployerJobSummary) string {
	if len(jobs) == 0 {
		return "You haven't posted any jobs yet.\n\nPost a job to find workers!"
	}
	var b strings.Builder
	b.WriteString("Your Jobs:\n\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s\n  %s | Applications: %d\n", Truncate(j.Title, titleWidth), titleCase(j.Status), j.ApplicationCount)
	}
	return strings.TrimRight(b.String(), "\n")
}

// EmployerApplications postulaciones recibidas (termina la sesión).
func (r *Renderer) EmployerApplications(apps []*entity.JobApplicationView) string {
	if len(apps) == 0 {
		return "No applications received yet.\n\nCheck back later!"
	}
	var b strings.Builder
	b.WriteString("Recent Applications:\n\n")
	for _, a := range apps {
		name := a.ApplicantName
		if strings.TrimSpace(name) == "" {
			name = "Unnamed"
		}
		fmt.Fprintf(&b, "- %s\n  %s %s\n  %s\n", Truncate(a.JobTitle, titleWidth), Truncate(name, 20), a.ApplicantPhone, Date(a.AppliedAt))
	}
	b.WriteString("\nContact applicants via their phone numbers.")
	return b.String()
}

// JobPosted confirmación de publicación (termina la sesión).
func (r *Renderer) JobPosted() string {
	return "Job posted successfully! Job seekers can now apply."
}

// PaymentMethods selección de billetera móvil.
func (r *Renderer) PaymentMethods(amount decimal.Decimal, purpose entity.PaymentPurpose) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pay %s for %s\nSelect payment method:\n", Money(amount), purpose.DisplayName())
	for i, p := range entity.PaymentProviders {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.DisplayName())
	}
	b.WriteString("0. Cancel")
	return b.String()
}

// PaymentConfirmation resumen previo al cobro.
func (r *Renderer) PaymentConfirmation(amount decimal.Decimal, provider entity.PaymentProvider, purpose entity.PaymentPurpose) string {
	return fmt.Sprintf("Confirm payment\nAmount: %s\nVia: %s\nFor: %s\n\n1. Confirm\n2. Cancel",
		Money(amount), provider.DisplayName(), purpose.DisplayName())
}

// PaymentOutcome recibo o aviso de fallo según el resultado registrado (termina la sesión).
func (r *Renderer) PaymentOutcome(p *entity.Payment) string {
	if p.Succeeded() {
		return fmt.Sprintf("Payment successful!\nAmount: %s\nVia: %s\nFor: %s\nTxn ID: %s\n\nThank you for using Jowa!",
			Money(p.Amount), p.Provider.DisplayName(), p.Purpose.DisplayName(), p.TransactionID)
	}
	return fmt.Sprintf("Payment of %s via %s failed. You have not been charged.\nPlease try again later.",
		Money(p.Amount), p.Provider.DisplayName())
}

// PaymentCancelled el usuario canceló (termina la sesión).
func (r *Renderer) PaymentCancelled() string {
	return "Payment cancelled. You have not been charged."
}

// PaymentHistory pagos propios (página de cinco).
func (r *Renderer) PaymentHistory(payments []*entity.Payment, page int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment History (Page %d):\n\n", page+1)
	for i, p := range payments {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, Money(p.Amount), p.Purpose.DisplayName())
		fmt.Fprintf(&b, "   %s | %s | %s\n\n", p.Provider.DisplayName(), titleCase(p.Status), Date(p.CreatedAt))
	}
	b.WriteString("6. Next Page\n7. Previous Page\n0. Main Menu")
	return b.String()
}

// NoPayments sin pagos registrados (termina la sesión).
func (r *Renderer) NoPayments() string {
	return "You have no payments yet."
}

// Respuestas de error visibles para el usuario. Nunca incluyen detalle interno.

func (r *Renderer) ServiceUnavailable() string {
	return "Service temporarily unavailable. Please try again later."
}

func (r *Renderer) SessionExpired() string {
	return fmt.Sprintf("Session expired. Please dial %s again.", r.opts.ServiceCode)
}

func (r *Renderer) RegisterFirst() string {
	return fmt.Sprintf("Please register first. Dial %s and choose your profile.", r.opts.ServiceCode)
}

func (r *Renderer) InvalidPhone() string {
	return "Sorry, JOWA is only available for Zambian mobile numbers."
}

func (r *Renderer) TooManyRequests() string {
	return "Too many requests. Please wait a moment and dial again."
}

// Textos SMS enviados fuera de la sesión USSD.

func (r *Renderer) EmployerApplicationSMS(jobTitle, applicantPhone string) string {
	return fmt.Sprintf("New application for '%s' from %s. Login to JOWA to view details.", jobTitle, applicantPhone)
}

func (r *Renderer) ApplicantConfirmationSMS(jobTitle string) string {
	return fmt.Sprintf("Thank you for applying to '%s'. The employer will contact you soon via JOWA.", jobTitle)
}

func (r *Renderer) JobPostedSMS(jobTitle string) string {
	return fmt.Sprintf("Your job '%s' has been posted successfully. Job seekers can now apply.", jobTitle)
}

func (r *Renderer) PaymentReceiptSMS(p *entity.Payment) string {
	return fmt.Sprintf("JOWA: payment of %s for %s received. Txn ID: %s", Money(p.Amount), p.Purpose.DisplayName(), p.TransactionID)
}
