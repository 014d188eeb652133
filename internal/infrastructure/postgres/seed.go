package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

type seedJob struct {
	employerPhone string
	title         string
	description   string
	location      string
	amount        string
	paymentType   entity.PaymentType
}

var (
	seedWorkers = []struct{ phone, name, skills, location string }{
		{"+260971234567", "John Banda", "Construction, Carpentry, Painting", "Lusaka"},
		{"+260972345678", "Mary Phiri", "Cleaning, Cooking, Childcare", "Ndola"},
	}
	seedEmployers = []struct{ phone, company, businessType string }{
		{"+260973456789", "BuildRight Construction", "Construction"},
		{"+260974567890", "CleanSweep Services", "Cleaning"},
	}
	seedJobs = []seedJob{
		{"+260973456789", "Construction Helper", "Need helper for construction site", "Lusaka", "80.00", entity.PaymentDaily},
		{"+260974567890", "Office Cleaner", "Cleaning office building", "Ndola", "50.00", entity.PaymentDaily},
	}
)

// Seed carga datos de demostración. Es idempotente: un trabajo de ejemplo solo se
// inserta si el empleador aún no tiene uno con el mismo título.
func Seed(ctx context.Context, q Querier) (jobsCreated int, err error) {
	workers := NewWorkerRepository(q)
	for _, w := range seedWorkers {
		if _, err := workers.Upsert(ctx, w.phone, w.name, w.skills, w.location); err != nil {
			return 0, fmt.Errorf("seed worker %s: %w", w.phone, err)
		}
	}

	employers := NewEmployerRepository(q)
	ids := make(map[string]int64, len(seedEmployers))
	for _, e := range seedEmployers {
		emp, err := employers.Upsert(ctx, e.phone, e.company, e.businessType)
		if err != nil {
			return 0, fmt.Errorf("seed employer %s: %w", e.phone, err)
		}
		ids[e.phone] = emp.ID
	}

	jobs := NewJobRepository(q)
	for _, sj := range seedJobs {
		var exists bool
		if err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM jobs WHERE employer_id = $1 AND title = $2)`,
			ids[sj.employerPhone], sj.title,
		).Scan(&exists); err != nil {
			return jobsCreated, fmt.Errorf("seed job %s: %w", sj.title, err)
		}
		if exists {
			continue
		}
		job := &entity.Job{
			EmployerID:    ids[sj.employerPhone],
			Title:         sj.title,
			Description:   sj.description,
			Location:      sj.location,
			PaymentAmount: decimal.RequireFromString(sj.amount),
			PaymentType:   sj.paymentType,
			Status:        entity.JobStatusActive,
		}
		if err := jobs.Create(ctx, job); err != nil {
			return jobsCreated, fmt.Errorf("seed job %s: %w", sj.title, err)
		}
		jobsCreated++
	}
	return jobsCreated, nil
}
