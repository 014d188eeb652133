package ussd

import (
	"sort"

	"github.com/jowa-zm/jowa-ussd/internal/application/menu"
	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
	ussdstate "github.com/jowa-zm/jowa-ussd/internal/domain/ussd"
)

func (d *Dispatcher) onMainMenu(t *turn) (outcome, error) {
	switch t.input {
	case "1":
		w, err := t.stores.Workers.GetByPhone(t.ctx, t.req.PhoneNumber)
		if err != nil {
			return outcome{}, err
		}
		if w.IsRegistered() {
			return proceed(ussdstate.WorkerDashboard{}, d.render.WorkerDashboard(w.FullName)), nil
		}
		return proceed(ussdstate.WorkerRegistration{Step: ussdstate.WorkerStepName}, menu.PromptWorkerName), nil
	case "2":
		e, err := t.stores.Employers.GetByPhone(t.ctx, t.req.PhoneNumber)
		if err != nil {
			return outcome{}, err
		}
		if e.IsRegistered() {
			return proceed(ussdstate.EmployerDashboard{}, d.render.EmployerDashboard(e.CompanyName)), nil
		}
		return proceed(ussdstate.EmployerRegistration{Step: ussdstate.EmployerStepCompany}, menu.PromptCompanyName), nil
	case "3":
		return finish(ussdstate.MainMenu{}, d.render.About()), nil
	case "4":
		return finish(ussdstate.MainMenu{}, d.render.Contact()), nil
	}
	return d.invalid(t, ussdstate.MainMenu{}, d.render.MainMenu()), nil
}

func (d *Dispatcher) onWorkerDashboard(t *turn) (outcome, error) {
	switch t.input {
	case "1":
		return d.showJobs(t, 0)
	case "2":
		return d.showApplications(t, 0)
	case "3":
		return proceed(ussdstate.WorkerRegistration{Step: ussdstate.WorkerStepName}, menu.PromptWorkerName), nil
	case "4":
		return proceed(ussdstate.MainMenu{}, d.render.MainMenu()), nil
	case "5":
		return d.showPayments(t, 0)
	}
	screen, err := d.workerDashboardScreen(t)
	if err != nil {
		return outcome{}, err
	}
	return d.invalid(t, ussdstate.WorkerDashboard{}, screen), nil
}

func (d *Dispatcher) onEmployerDashboard(t *turn) (outcome, error) {
	switch t.input {
	case "1":
		return proceed(ussdstate.PostJob{Step: ussdstate.PostJobStepTitle}, menu.PromptJobTitle), nil
	case "2":
		e, err := d.requireEmployer(t)
		if err != nil {
			return outcome{}, err
		}
		jobs, err := t.stores.Jobs.ListByEmployer(t.ctx, e.ID, menu.EmployerJobsLimit)
		if err != nil {
			return outcome{}, err
		}
		return finish(ussdstate.EmployerDashboard{}, d.render.EmployerJobs(jobs)), nil
	case "3":
		apps, err := d.employerApplications(t)
		if err != nil {
			return outcome{}, err
		}
		return finish(ussdstate.EmployerDashboard{}, d.render.EmployerApplications(apps)), nil
	case "4":
		return proceed(ussdstate.MainMenu{}, d.render.MainMenu()), nil
	case "5":
		next := ussdstate.PaymentMethod{Amount: d.premiumFee, Purpose: entity.PurposePremiumListing}
		return proceed(next, d.render.PaymentMethods(next.Amount, next.Purpose)), nil
	case "6":
		return d.showPayments(t, 0)
	}
	e, err := d.requireEmployer(t)
	if err != nil {
		return outcome{}, err
	}
	return d.invalid(t, ussdstate.EmployerDashboard{}, d.render.EmployerDashboard(e.CompanyName)), nil
}

// employerApplications reúne las postulaciones de los trabajos recientes del empleador,
// más recientes primero.
func (d *Dispatcher) employerApplications(t *turn) ([]*entity.JobApplicationView, error) {
	e, err := d.requireEmployer(t)
	if err != nil {
		return nil, err
	}
	jobs, err := t.stores.Jobs.ListByEmployer(t.ctx, e.ID, menu.EmployerJobsLimit)
	if err != nil {
		return nil, err
	}
	var apps []*entity.JobApplicationView
	for _, j := range jobs {
		if j.ApplicationCount == 0 {
			continue
		}
		list, err := t.stores.Applications.ListByJob(t.ctx, j.ID)
		if err != nil {
			return nil, err
		}
		apps = append(apps, list...)
	}
	sort.SliceStable(apps, func(i, k int) bool { return apps[i].AppliedAt.After(apps[k].AppliedAt) })
	if len(apps) > menu.EmployerAppsLimit {
		apps = apps[:menu.EmployerAppsLimit]
	}
	return apps, nil
}

func (d *Dispatcher) workerDashboardScreen(t *turn) (string, error) {
	w, err := d.requireWorker(t)
	if err != nil {
		return "", err
	}
	return d.render.WorkerDashboard(w.FullName), nil
}

func (d *Dispatcher) requireWorker(t *turn) (*entity.Worker, error) {
	w, err := t.stores.Workers.GetByPhone(t.ctx, t.req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, &domain.NotFoundError{Entity: "worker", Key: t.req.PhoneNumber}
	}
	return w, nil
}

func (d *Dispatcher) requireEmployer(t *turn) (*entity.Employer, error) {
	e, err := t.stores.Employers.GetByPhone(t.ctx, t.req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if !e.IsRegistered() {
		return nil, &domain.NotFoundError{Entity: "employer", Key: t.req.PhoneNumber}
	}
	return e, nil
}
