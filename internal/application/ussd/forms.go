package ussd

import (
	"errors"
	"strings"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	ussdstate "github.com/jowa-zm/jowa-ussd/internal/domain/ussd"
	"github.com/jowa-zm/jowa-ussd/pkg/validate"
)

// textField valida texto libre; si falla devuelve el texto de reintento para prompt.
func (d *Dispatcher) textField(t *turn, field, prompt string) (string, string, bool) {
	v, err := validate.Text(t.input)
	if err == nil {
		return v, "", true
	}
	reason := menu.ReasonTooShort
	if errors.Is(err, validate.ErrTooLong) {
		reason = menu.ReasonTooLong
	}
	d.log.Debug().
		Err(&domain.ValidationError{Field: field, Err: err}).
		Str("session_id", t.req.SessionID).
		Msg("entrada rechazada")
	return "", d.render.Retry(reason, prompt), false
}

func (d *Dispatcher) onWorkerRegistration(t *turn, st ussdstate.WorkerRegistration) (outcome, error) {
	switch st.Step {
	case ussdstate.WorkerStepName:
		name, retry, ok := d.textField(t, "full_name", menu.PromptWorkerName)
		if !ok {
			return proceed(st, retry), nil
		}
		return proceed(ussdstate.WorkerRegistration{Step: ussdstate.WorkerStepSkills, FullName: name}, menu.PromptWorkerSkills), nil

	case ussdstate.WorkerStepSkills:
		skills, retry, ok := d.textField(t, "skills", menu.PromptWorkerSkills)
		if !ok {
			return proceed(st, retry), nil
		}
		st.Step = ussdstate.WorkerStepLocation
		st.Skills = skills
		return proceed(st, menu.PromptWorkerLocation), nil

	case ussdstate.WorkerStepLocation:
		location, retry, ok := d.textField(t, "location", menu.PromptWorkerLocation)
		if !ok {
			return proceed(st, retry), nil
		}
		w, err := t.stores.Workers.Upsert(t.ctx, t.req.PhoneNumber, st.FullName, st.Skills, location)
		if err != nil {
			return outcome{}, err
		}
		d.log.Info().Int64("worker_id", w.ID).Str("phone", w.PhoneNumber).Msg("trabajador registrado")
		return proceed(ussdstate.WorkerDashboard{}, d.render.WorkerDashboard(w.FullName)), nil
	}
	return outcome{}, domain.ErrUnknownState
}

func (d *Dispatcher) onEmployerRegistration(t *turn, st ussdstate.EmployerRegistration) (outcome, error) {
	switch st.Step {
	case ussdstate.EmployerStepCompany:
		company, retry, ok := d.textField(t, "company_name", menu.PromptCompanyName)
		if !ok {
			return proceed(st, retry), nil
		}
		return proceed(ussdstate.EmployerRegistration{Step: ussdstate.EmployerStepBusinessType, CompanyName: company}, menu.PromptBusinessType), nil

	case ussdstate.EmployerStepBusinessType:
		businessType, retry, ok := d.textField(t, "business_type", menu.PromptBusinessType)
		if !ok {
			return proceed(st, retry), nil
		}
		e, err := t.stores.Employers.Upsert(t.ctx, t.req.PhoneNumber, st.CompanyName, businessType)
		if err != nil {
			return outcome{}, err
		}
		d.log.Info().Int64("employer_id", e.ID).Str("phone", e.PhoneNumber).Msg("empleador registrado")
		return proceed(ussdstate.EmployerDashboard{}, d.render.EmployerDashboard(e.CompanyName)), nil
	}
	return outcome{}, domain.ErrUnknownState
}

func (d *Dispatcher) onPostJob(t *turn, st ussdstate.PostJob) (outcome, error) {
	switch st.Step {
	case ussdstate.PostJobStepTitle:
		title, retry, ok := d.textField(t, "title", menu.PromptJobTitle)
		if !ok {
			return proceed(st, retry), nil
		}
		st.Step, st.Title = ussdstate.PostJobStepDescription, title
		return proceed(st, menu.PromptJobDescription), nil

	case ussdstate.PostJobStepDescription:
		desc, retry, ok := d.textField(t, "description", menu.PromptJobDescription)
		if !ok {
			return proceed(st, retry), nil
		}
		st.Step, st.Description = ussdstate.PostJobStepLocation, desc
		return proceed(st, menu.PromptJobLocation), nil

	case ussdstate.PostJobStepLocation:
		location, retry, ok := d.textField(t, "location", menu.PromptJobLocation)
		if !ok {
			return proceed(st, retry), nil
		}
		st.Step, st.Location = ussdstate.PostJobStepAmount, location
		return proceed(st, menu.PromptJobAmount), nil

	case ussdstate.PostJobStepAmount:
		amount, err := validate.PaymentAmount(t.input)
		if err != nil {
			d.log.Debug().
				Err(&domain.ValidationError{Field: "payment_amount", Err: err}).
				Str("session_id", t.req.SessionID).
				Msg("entrada rechazada")
			return proceed(st, d.render.Retry(menu.ReasonInvalidAmount, menu.PromptJobAmount)), nil
		}
		st.Step, st.PaymentAmount = ussdstate.PostJobStepPaymentType, &amount
		return proceed(st, menu.PromptJobPaymentType), nil

	case ussdstate.PostJobStepPaymentType:
		paymentType, ok := parsePaymentType(t.input)
		if !ok {
			return proceed(st, d.render.Retry(menu.ReasonInvalidType, menu.PromptJobPaymentType)), nil
		}
		return d.publishJob(t, st, paymentType)
	}
	return outcome{}, domain.ErrUnknownState
}

// parsePaymentType acepta la tecla del menú o el nombre de la modalidad.
func parsePaymentType(input string) (entity.PaymentType, bool) {
	if pt, ok := entity.PaymentTypeFromChoice(input); ok {
		return pt, true
	}
	pt := entity.PaymentType(strings.ToLower(input))
	return pt, pt.Valid()
}

func (d *Dispatcher) publishJob(t *turn, st ussdstate.PostJob, paymentType entity.PaymentType) (outcome, error) {
	e, err := d.requireEmployer(t)
	if err != nil {
		return outcome{}, err
	}
	job := &entity.Job{
		EmployerID:    e.ID,
		Title:         st.Title,
		Description:   st.Description,
		Location:      st.Location,
		PaymentAmount: *st.PaymentAmount,
		PaymentType:   paymentType,
		Status:        entity.JobStatusActive,
	}
	if err := t.stores.Jobs.Create(t.ctx, job); err != nil {
		return outcome{}, err
	}
	d.log.Info().Int64("job_id", job.ID).Int64("employer_id", e.ID).Msg("trabajo publicado")

	out := finish(ussdstate.EmployerDashboard{}, d.render.JobPosted())
	out.sms = append(out.sms, sms{to: e.PhoneNumber, text: d.render.JobPostedSMS(job.Title)})
	out.events = append(out.events, Event{
		Type: EventJobPosted,
		Data: map[string]any{
			"job_id":         job.ID,
			"employer_id":    e.ID,
			"title":          job.Title,
			"location":       job.Location,
			"payment_amount": job.PaymentAmount.StringFixed(2),
			"payment_type":   string(job.PaymentType),
		},
	})
	return out, nil
}
