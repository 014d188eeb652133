// Package ussd define los estados del diálogo USSD como una unión etiquetada:
// cada variante lleva solo los campos que su menú necesita. El codec traduce
// entre la variante tipada y la pareja (menu_level, data JSONB) persistida.
package ussd

import (
	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// Tag etiqueta persistida en ussd_sessions.menu_level.
type Tag string

const (
	TagMainMenu             Tag = "main_menu"
	TagWorkerRegistration   Tag = "worker_registration"
	TagEmployerRegistration Tag = "employer_registration"
	TagWorkerDashboard      Tag = "worker_dashboard"
	TagEmployerDashboard    Tag = "employer_dashboard"
	TagPostJob              Tag = "post_job"
	TagBrowseJobs           Tag = "browse_jobs"
	TagViewApplications     Tag = "view_applications"
	TagPaymentMethod        Tag = "payment_method"
	TagPaymentConfirmation  Tag = "payment_confirmation"
	TagPaymentHistory       Tag = "payment_history"
)

// State variante de la unión. El método sin exportar cierra la unión a este paquete.
type State interface {
	Tag() Tag
	sealed()
}

// Pasos del registro de trabajador: nombre -> habilidades -> ubicación.
const (
	WorkerStepName = iota + 1
	WorkerStepSkills
	WorkerStepLocation
)

// Pasos del registro de empleador: empresa -> tipo de negocio.
const (
	EmployerStepCompany = iota + 1
	EmployerStepBusinessType
)

// Pasos de publicación de trabajo.
const (
	PostJobStepTitle = iota + 1
	PostJobStepDescription
	PostJobStepLocation
	PostJobStepAmount
	PostJobStepPaymentType
)

type MainMenu struct{}

type WorkerRegistration struct {
	Step     int    `json:"step"`
	FullName string `json:"full_name,omitempty"`
	Skills   string `json:"skills,omitempty"`
}

type EmployerRegistration struct {
	Step        int    `json:"step"`
	CompanyName string `json:"company_name,omitempty"`
}

type WorkerDashboard struct{}

type EmployerDashboard struct{}

// PostJob acumula los campos del trabajo hasta el último paso (modalidad de pago),
// que se persiste directamente sin pasar por el payload.
type PostJob struct {
	Step          int              `json:"step"`
	Title         string           `json:"title,omitempty"`
	Description   string           `json:"description,omitempty"`
	Location      string           `json:"location,omitempty"`
	PaymentAmount *decimal.Decimal `json:"payment_amount,omitempty"`
}

type BrowseJobs struct {
	Page int `json:"page"`
}

type ViewApplications struct {
	Page int `json:"page"`
}

type PaymentMethod struct {
	Amount  decimal.Decimal       `json:"amount"`
	Purpose entity.PaymentPurpose `json:"purpose"`
}

type PaymentConfirmation struct {
	Amount   decimal.Decimal        `json:"amount"`
	Provider entity.PaymentProvider `json:"provider"`
	Purpose  entity.PaymentPurpose  `json:"purpose"`
}

type PaymentHistory struct {
	Page int `json:"page"`
}

func (MainMenu) Tag() Tag             { return TagMainMenu }
func (WorkerRegistration) Tag() Tag   { return TagWorkerRegistration }
func (EmployerRegistration) Tag() Tag { return TagEmployerRegistration }
func (WorkerDashboard) Tag() Tag      { return TagWorkerDashboard }
func (EmployerDashboard) Tag() Tag    { return TagEmployerDashboard }
func (PostJob) Tag() Tag              { return TagPostJob }
func (BrowseJobs) Tag() Tag           { return TagBrowseJobs }
func (ViewApplications) Tag() Tag     { return TagViewApplications }
func (PaymentMethod) Tag() Tag        { return TagPaymentMethod }
func (PaymentConfirmation) Tag() Tag  { return TagPaymentConfirmation }
func (PaymentHistory) Tag() Tag       { return TagPaymentHistory }

func (MainMenu) sealed()             {}
func (WorkerRegistration) sealed()   {}
func (EmployerRegistration) sealed() {}
func (WorkerDashboard) sealed()      {}
func (EmployerDashboard) sealed()    {}
func (PostJob) sealed()              {}
func (BrowseJobs) sealed()           {}
func (ViewApplications) sealed()     {}
func (PaymentMethod) sealed()        {}
func (PaymentConfirmation) sealed()  {}
func (PaymentHistory) sealed()       {}
