package ussd_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jowa-zm/jowa-ussd/internal/application/ussd"
	"github.com/jowa-zm/jowa-ussd/internal/domain"
	"github.com/jowa-zm/jowa-ussd/internal/domain/entity"
)

// memDB almacén en memoria con semántica transaccional: RunDispatch serializa
// los dispatch y restaura la copia previa si fn devuelve error.
type memDB struct {
	mu sync.Mutex

	workers   map[string]entity.Worker
	employers map[string]entity.Employer
	jobs      []entity.Job
	apps      []entity.Application
	payments  []entity.Payment
	sessions  map[string]entity.Session

	seq    int64
	clock  time.Time
	failOn string // nombre de la operación que debe fallar con StoreFault
}

func newMemDB() *memDB {
	return &memDB{
		workers:   map[string]entity.Worker{},
		employers: map[string]entity.Employer{},
		sessions:  map[string]entity.Session{},
		clock:     time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC),
	}
}

type snapshot struct {
	workers   map[string]entity.Worker
	employers map[string]entity.Employer
	jobs      []entity.Job
	apps      []entity.Application
	payments  []entity.Payment
	sessions  map[string]entity.Session
	seq       int64
}

func (db *memDB) snapshot() snapshot {
	return snapshot{
		workers:   maps.Clone(db.workers),
		employers: maps.Clone(db.employers),
		jobs:      slices.Clone(db.jobs),
		apps:      slices.Clone(db.apps),
		payments:  slices.Clone(db.payments),
		sessions:  maps.Clone(db.sessions),
		seq:       db.seq,
	}
}

func (db *memDB) restore(s snapshot) {
	db.workers, db.employers, db.sessions = s.workers, s.employers, s.sessions
	db.jobs, db.apps, db.payments = s.jobs, s.apps, s.payments
	db.seq = s.seq
}

func (db *memDB) RunDispatch(_ context.Context, fn func(ussd.Stores) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	snap := db.snapshot()
	err := fn(ussd.Stores{
		Workers:      memWorkers{db},
		Employers:    memEmployers{db},
		Jobs:         memJobs{db},
		Applications: memApplications{db},
		Payments:     memPayments{db},
		Sessions:     memSessions{db},
	})
	if err != nil {
		db.restore(snap)
	}
	return err
}

func (db *memDB) check(op string) error {
	if db.failOn == op {
		return domain.NewStoreFault(op, errors.New("conexión perdida"))
	}
	return nil
}

func (db *memDB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Minute)
	return db.clock
}

func (db *memDB) employerByID(id int64) (entity.Employer, bool) {
	for _, e := range db.employers {
		if e.ID == id {
			return e, true
		}
	}
	return entity.Employer{}, false
}

func (db *memDB) workerByID(id int64) (entity.Worker, bool) {
	for _, w := range db.workers {
		if w.ID == id {
			return w, true
		}
	}
	return entity.Worker{}, false
}

func (db *memDB) jobByID(id int64) (entity.Job, bool) {
	for _, j := range db.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return entity.Job{}, false
}

// Helpers de siembra (fuera de transacción).

func (db *memDB) addWorker(phone, name string) entity.Worker {
	db.mu.Lock()
	defer db.mu.Unlock()
	w := entity.Worker{ID: db.nextID(), PhoneNumber: phone, FullName: name, Skills: "General", Location: "Lusaka", CreatedAt: db.tick()}
	db.workers[phone] = w
	return w
}

func (db *memDB) addEmployer(phone, company string) entity.Employer {
	db.mu.Lock()
	defer db.mu.Unlock()
	e := entity.Employer{ID: db.nextID(), PhoneNumber: phone, CompanyName: company, BusinessType: "Construction", CreatedAt: db.tick()}
	db.employers[phone] = e
	return e
}

func (db *memDB) addJob(employerID int64, title string, amount int64) entity.Job {
	db.mu.Lock()
	defer db.mu.Unlock()
	j := entity.Job{
		ID: db.nextID(), EmployerID: employerID, Title: title, Description: "desc", Location: "Lusaka",
		PaymentAmount: decimal.NewFromInt(amount), PaymentType: entity.PaymentDaily, Status: entity.JobStatusActive, CreatedAt: db.tick(),
	}
	db.jobs = append(db.jobs, j)
	return j
}

func (db *memDB) setSession(id, phone, state string, payload string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sessions[id] = entity.Session{ID: id, PhoneNumber: phone, State: state, Payload: []byte(payload), CreatedAt: db.tick(), UpdatedAt: db.clock}
}

func (db *memDB) session(id string) (entity.Session, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.sessions[id]
	return s, ok
}

func (db *memDB) counts() (employers, jobs, apps, payments int) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.employers), len(db.jobs), len(db.apps), len(db.payments)
}

func (db *memDB) setFailOn(op string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failOn = op
}

type memWorkers struct{ db *memDB }

func (r memWorkers) GetByPhone(_ context.Context, phone string) (*entity.Worker, error) {
	if err := r.db.check("workers.get_by_phone"); err != nil {
		return nil, err
	}
	w, ok := r.db.workers[phone]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r memWorkers) EnsureExists(_ context.Context, phone string) error {
	if err := r.db.check("workers.ensure_exists"); err != nil {
		return err
	}
	if _, ok := r.db.workers[phone]; !ok {
		r.db.workers[phone] = entity.Worker{ID: r.db.nextID(), PhoneNumber: phone, CreatedAt: r.db.tick()}
	}
	return nil
}

func (r memWorkers) Upsert(_ context.Context, phone, fullName, skills, location string) (*entity.Worker, error) {
	if err := r.db.check("workers.upsert"); err != nil {
		return nil, err
	}
	w, ok := r.db.workers[phone]
	if !ok {
		w = entity.Worker{ID: r.db.nextID(), PhoneNumber: phone, CreatedAt: r.db.tick()}
	}
	w.FullName, w.Skills, w.Location = fullName, skills, location
	r.db.workers[phone] = w
	return &w, nil
}

type memEmployers struct{ db *memDB }

func (r memEmployers) GetByPhone(_ context.Context, phone string) (*entity.Employer, error) {
	if err := r.db.check("employers.get_by_phone"); err != nil {
		return nil, err
	}
	e, ok := r.db.employers[phone]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r memEmployers) Upsert(_ context.Context, phone, companyName, businessType string) (*entity.Employer, error) {
	if err := r.db.check("employers.upsert"); err != nil {
		return nil, err
	}
	e, ok := r.db.employers[phone]
	if !ok {
		e = entity.Employer{ID: r.db.nextID(), PhoneNumber: phone, CreatedAt: r.db.tick()}
	}
	e.CompanyName, e.BusinessType = companyName, businessType
	r.db.employers[phone] = e
	return &e, nil
}

type memJobs struct{ db *memDB }

// newestJobs trabajos más recientes primero.
func (r memJobs) newestJobs() []entity.Job {
	jobs := slices.Clone(r.db.jobs)
	sort.SliceStable(jobs, func(i, k int) bool { return jobs[i].ID > jobs[k].ID })
	return jobs
}

func (r memJobs) ListActive(_ context.Context, limit, offset int) ([]*entity.JobListing, error) {
	if err := r.db.check("jobs.list_active"); err != nil {
		return nil, err
	}
	var out []*entity.JobListing
	for _, j := range r.newestJobs() {
		if j.Status != entity.JobStatusActive {
			continue
		}
		e, _ := r.db.employerByID(j.EmployerID)
		out = append(out, &entity.JobListing{Job: j, CompanyName: e.CompanyName, EmployerPhone: e.PhoneNumber})
	}
	return window(out, limit, offset), nil
}

func (r memJobs) Create(_ context.Context, job *entity.Job) error {
	if err := r.db.check("jobs.create"); err != nil {
		return err
	}
	job.ID = r.db.nextID()
	job.CreatedAt = r.db.tick()
	r.db.jobs = append(r.db.jobs, *job)
	return nil
}

func (r memJobs) ListByEmployer(_ context.Context, employerID int64, limit int) ([]*entity.EmployerJobSummary, error) {
	var out []*entity.EmployerJobSummary
	for _, j := range r.newestJobs() {
		if j.EmployerID != employerID {
			continue
		}
		n := 0
		for _, a := range r.db.apps {
			if a.JobID == j.ID {
				n++
			}
		}
		out = append(out, &entity.EmployerJobSummary{Job: j, ApplicationCount: n})
	}
	return window(out, limit, 0), nil
}

type memApplications struct{ db *memDB }

func (r memApplications) CreateIfAbsent(_ context.Context, jobID, workerID int64) (*entity.Application, bool, error) {
	if err := r.db.check("applications.create"); err != nil {
		return nil, false, err
	}
	for _, a := range r.db.apps {
		if a.JobID == jobID && a.WorkerID == workerID {
			return &a, false, nil
		}
	}
	a := entity.Application{ID: r.db.nextID(), JobID: jobID, WorkerID: workerID, Status: entity.ApplicationPending, AppliedAt: r.db.tick()}
	r.db.apps = append(r.db.apps, a)
	return &a, true, nil
}

func (r memApplications) ListByWorker(_ context.Context, workerID int64, limit, offset int) ([]*entity.WorkerApplicationView, error) {
	var out []*entity.WorkerApplicationView
	for i := len(r.db.apps) - 1; i >= 0; i-- {
		a := r.db.apps[i]
		if a.WorkerID != workerID {
			continue
		}
		j, _ := r.db.jobByID(a.JobID)
		e, _ := r.db.employerByID(j.EmployerID)
		out = append(out, &entity.WorkerApplicationView{
			ApplicationID: a.ID, JobTitle: j.Title, CompanyName: e.CompanyName, Status: a.Status, AppliedAt: a.AppliedAt,
		})
	}
	return window(out, limit, offset), nil
}

func (r memApplications) ListByJob(_ context.Context, jobID int64) ([]*entity.JobApplicationView, error) {
	var out []*entity.JobApplicationView
	for i := len(r.db.apps) - 1; i >= 0; i-- {
		a := r.db.apps[i]
		if a.JobID != jobID {
			continue
		}
		j, _ := r.db.jobByID(a.JobID)
		w, _ := r.db.workerByID(a.WorkerID)
		out = append(out, &entity.JobApplicationView{
			ApplicationID: a.ID, JobID: j.ID, JobTitle: j.Title, ApplicantName: w.FullName,
			ApplicantPhone: w.PhoneNumber, Status: a.Status, AppliedAt: a.AppliedAt,
		})
	}
	return out, nil
}

type memPayments struct{ db *memDB }

func (r memPayments) GetBySession(_ context.Context, sessionID string, purpose entity.PaymentPurpose) (*entity.Payment, error) {
	for _, p := range r.db.payments {
		if p.SessionID == sessionID && p.Purpose == purpose {
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPayments) Create(_ context.Context, p *entity.Payment) error {
	if err := r.db.check("payments.create"); err != nil {
		return err
	}
	for _, existing := range r.db.payments {
		if existing.SessionID == p.SessionID && existing.Purpose == p.Purpose {
			return domain.ErrDuplicate
		}
	}
	p.ID = r.db.nextID()
	p.CreatedAt = r.db.tick()
	r.db.payments = append(r.db.payments, *p)
	return nil
}

func (r memPayments) ListByPhone(_ context.Context, phone string, limit, offset int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	for i := len(r.db.payments) - 1; i >= 0; i-- {
		p := r.db.payments[i]
		if p.PhoneNumber == phone {
			out = append(out, &p)
		}
	}
	return window(out, limit, offset), nil
}

type memSessions struct{ db *memDB }

func (r memSessions) GetForUpdate(_ context.Context, id string) (*entity.Session, error) {
	if err := r.db.check("sessions.get"); err != nil {
		return nil, err
	}
	s, ok := r.db.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r memSessions) Save(_ context.Context, s *entity.Session) error {
	if err := r.db.check("sessions.save"); err != nil {
		return err
	}
	now := r.db.tick()
	if prev, ok := r.db.sessions[s.ID]; ok {
		s.CreatedAt = prev.CreatedAt
	} else {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	r.db.sessions[s.ID] = *s
	return nil
}

func (r memSessions) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for id, s := range r.db.sessions {
		if s.UpdatedAt.Before(before) {
			delete(r.db.sessions, id)
			n++
		}
	}
	return n, nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit < len(items) {
		items = items[:limit]
	}
	return items
}

// fakeGateway proveedor de pagos con resultado fijo. Como un proveedor real,
// recuerda cada clave de idempotencia y solo cobra la primera vez.
type fakeGateway struct {
	mu      sync.Mutex
	success bool
	err     error
	calls   int
	keys    []string
	charged map[string]ussd.PaymentResult
}

func (g *fakeGateway) AttemptPayment(_ context.Context, req ussd.PaymentRequest) (ussd.PaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.keys = append(g.keys, req.IdempotencyKey)
	if g.err != nil {
		return ussd.PaymentResult{}, g.err
	}
	if res, ok := g.charged[req.IdempotencyKey]; ok {
		return res, nil
	}
	res := ussd.PaymentResult{}
	if g.success {
		res = ussd.PaymentResult{Success: true, Reference: "TXN-" + uuid.NewString()[:8]}
	}
	if g.charged == nil {
		g.charged = make(map[string]ussd.PaymentResult)
	}
	g.charged[req.IdempotencyKey] = res
	return res, nil
}

// chargeCount cobros distintos realizados.
func (g *fakeGateway) chargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.charged)
}

func (g *fakeGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type sentSMS struct {
	to, text string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentSMS{to: phone, text: message})
	return nil
}

func (n *fakeNotifier) messages() []sentSMS {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []ussd.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev ussd.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	failed   int
}

func (r *fakeRecorder) ObserveDispatch(_, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = map[string]int{}
	}
	r.outcomes[outcome]++
}

func (r *fakeRecorder) NotificationFailed(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}
