package ussd

import (
	"strings"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	ussdstate "github.com/jowa-zm/jowa-ussd/internal/domain/ussd"
)

// Listados paginados. La página vive en el payload del estado; un índice de
// elemento elegido por el usuario se resuelve siempre contra la página actual.

func (d *Dispatcher) jobsPage(t *turn, page int) ([]*entity.JobListing, error) {
	return t.stores.Jobs.ListActive(t.ctx, menu.JobsPageSize, page*menu.JobsPageSize)
}

func (d *Dispatcher) showJobs(t *turn, page int) (outcome, error) {
	jobs, err := d.jobsPage(t, page)
	if err != nil {
		return outcome{}, err
	}
	st := ussdstate.BrowseJobs{Page: page}
	if len(jobs) == 0 {
		return finish(st, d.render.NoJobs()), nil
	}
	return proceed(st, d.render.JobListing(jobs, page)), nil
}

func (d *Dispatcher) onBrowseJobs(t *turn, st ussdstate.BrowseJobs) (outcome, error) {
	input := t.input
	if strings.EqualFold(input, "back") {
		input = "5"
	}
	switch input {
	case "4":
		return d.showJobs(t, st.Page+1)
	case "5":
		screen, err := d.workerDashboardScreen(t)
		if err != nil {
			return outcome{}, err
		}
		return proceed(ussdstate.WorkerDashboard{}, screen), nil
	case "0":
		return proceed(ussdstate.MainMenu{}, d.render.MainMenu()), nil
	}

	jobs, err := d.jobsPage(t, st.Page)
	if err != nil {
		return outcome{}, err
	}
	if len(jobs) == 0 {
		return finish(st, d.render.NoJobs()), nil
	}
	if idx, ok := itemIndex(t.input, len(jobs)); ok {
		return d.apply(t, st, jobs[idx])
	}
	return d.invalid(t, st, d.render.JobListing(jobs, st.Page)), nil
}

// apply registra la postulación una sola vez por (trabajo, trabajador).
// Solo la primera postulación dispara SMS y evento.
func (d *Dispatcher) apply(t *turn, st ussdstate.BrowseJobs, job *entity.JobListing) (outcome, error) {
	w, err := d.requireWorker(t)
	if err != nil {
		return outcome{}, err
	}
	app, created, err := t.stores.Applications.CreateIfAbsent(t.ctx, job.ID, w.ID)
	if err != nil {
		return outcome{}, err
	}

	out := finish(st, d.render.ApplicationSubmitted(job.Title))
	if !created {
		return out, nil
	}
	d.log.Info().Int64("application_id", app.ID).Int64("job_id", job.ID).Int64("worker_id", w.ID).Msg("postulación creada")

	if job.EmployerPhone != "" {
		out.sms = append(out.sms, sms{to: job.EmployerPhone, text: d.render.EmployerApplicationSMS(job.Title, w.PhoneNumber)})
	}
	out.sms = append(out.sms, sms{to: w.PhoneNumber, text: d.render.ApplicantConfirmationSMS(job.Title)})
	out.events = append(out.events, Event{
		Type: EventApplicationSubmitted,
		Data: map[string]any{
			"application_id": app.ID,
			"job_id":         job.ID,
			"worker_id":      w.ID,
			"job_title":      job.Title,
		},
	})
	return out, nil
}

func (d *Dispatcher) applicationsPage(t *turn, page int) ([]*entity.WorkerApplicationView, error) {
	w, err := d.requireWorker(t)
	if err != nil {
		return nil, err
	}
	return t.stores.Applications.ListByWorker(t.ctx, w.ID, menu.ApplicationsPageSize, page*menu.ApplicationsPageSize)
}

func (d *Dispatcher) showApplications(t *turn, page int) (outcome, error) {
	apps, err := d.applicationsPage(t, page)
	if err != nil {
		return outcome{}, err
	}
	st := ussdstate.ViewApplications{Page: page}
	if len(apps) == 0 {
		return finish(st, d.render.NoApplications()), nil
	}
	return proceed(st, d.render.ApplicationList(apps, page)), nil
}

func (d *Dispatcher) onViewApplications(t *turn, st ussdstate.ViewApplications) (outcome, error) {
	if t.input == "0" {
		return proceed(ussdstate.MainMenu{}, d.render.MainMenu()), nil
	}

	apps, err := d.applicationsPage(t, st.Page)
	if err != nil {
		return outcome{}, err
	}
	if len(apps) == 0 {
		return finish(st, d.render.NoApplications()), nil
	}
	current := d.render.ApplicationList(apps, st.Page)

	switch t.input {
	case "6":
		next, err := d.applicationsPage(t, st.Page+1)
		if err != nil {
			return outcome{}, err
		}
		if len(next) == 0 {
			return proceed(st, d.render.LastPage(current)), nil
		}
		return proceed(ussdstate.ViewApplications{Page: st.Page + 1}, d.render.ApplicationList(next, st.Page+1)), nil
	case "7":
		if st.Page == 0 {
			return proceed(st, d.render.FirstPage(current)), nil
		}
		return d.showApplications(t, st.Page-1)
	}
	return d.invalid(t, st, current), nil
}

func (d *Dispatcher) paymentsPage(t *turn, page int) ([]*entity.Payment, error) {
	return t.stores.Payments.ListByPhone(t.ctx, t.req.PhoneNumber, menu.PaymentsPageSize, page*menu.PaymentsPageSize)
}

func (d *Dispatcher) showPayments(t *turn, page int) (outcome, error) {
	payments, err := d.paymentsPage(t, page)
	if err != nil {
		return outcome{}, err
	}
	st := ussdstate.PaymentHistory{Page: page}
	if len(payments) == 0 {
		return finish(st, d.render.NoPayments()), nil
	}
	return proceed(st, d.render.PaymentHistory(payments, page)), nil
}

func (d *Dispatcher) onPaymentHistory(t *turn, st ussdstate.PaymentHistory) (outcome, error) {
	if t.input == "0" {
		return proceed(ussdstate.MainMenu{}, d.render.MainMenu()), nil
	}

	payments, err := d.paymentsPage(t, st.Page)
	if err != nil {
		return outcome{}, err
	}
	if len(payments) == 0 {
		return finish(st, d.render.NoPayments()), nil
	}
	current := d.render.PaymentHistory(payments, st.Page)

	switch t.input {
	case "6":
		next, err := d.paymentsPage(t, st.Page+1)
		if err != nil {
			return outcome{}, err
		}
		if len(next) == 0 {
			return proceed(st, d.render.LastPage(current)), nil
		}
		return proceed(ussdstate.PaymentHistory{Page: st.Page + 1}, d.render.PaymentHistory(next, st.Page+1)), nil
	case "7":
		if st.Page == 0 {
			return proceed(st, d.render.FirstPage(current)), nil
		}
		return d.showPayments(t, st.Page-1)
	}
	return d.invalid(t, st, current), nil
}

// itemIndex traduce "1".."n" al índice dentro de la página actual.
func itemIndex(input string, n int) (int, bool) {
	if len(input) != 1 || input[0] < '1' || input[0] > '9' {
		return 0, false
	}
	idx := int(input[0] - '1')
	if idx >= n || idx >= menu.JobsPageSize {
		return 0, false
	}
	return idx, true
}
