// Package housekeeping elimina periódicamente las sesiones USSD abandonadas.
package housekeeping

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jowa-zm/jowa-ussd/pkg/logger"
)

// SessionPruner borra sesiones sin actividad desde before.
type SessionPruner interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// Recorder métrica de sesiones eliminadas (opcional).
type Recorder interface {
	SessionsPruned(n int64)
}

// Cleaner aplica el TTL de sesión.
type Cleaner struct {
	sessions SessionPruner
	ttl      time.Duration
	metrics  Recorder
	log      *logger.Logger
	now      func() time.Time
}

// NewCleaner construye el limpiador. metrics puede ser nil.
func NewCleaner(sessions SessionPruner, ttl time.Duration, metrics Recorder, log *logger.Logger) *Cleaner {
	if log == nil {
		log = logger.Nop()
	}
	return &Cleaner{sessions: sessions, ttl: ttl, metrics: metrics, log: log, now: time.Now}
}

// Prune borra las sesiones cuyo updated_at es anterior a ahora - TTL.
func (c *Cleaner) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, fmt.Errorf("TTL de sesión inválido: %s", c.ttl)
	}
	cutoff := c.now().Add(-c.ttl)
	n, err := c.sessions.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if c.metrics != nil {
		c.metrics.SessionsPruned(n)
	}
	c.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("sesiones expiradas eliminadas")
	return n, nil
}

// Scheduler ejecuta Prune según una expresión de robfig/cron (ej. "@every 1h").
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	cleaner *Cleaner
	log     *logger.Logger

	mu      sync.Mutex
	started bool
}

// NewScheduler construye el scheduler sin arrancarlo.
func NewScheduler(spec string, cleaner *Cleaner, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cronLogger{log: log}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{log: log}))),
		spec:    spec,
		cleaner: cleaner,
		log:     log,
	}
}

// Start registra la tarea, arranca el cron y corre una limpieza inmediata en segundo plano.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	s.started = true
	s.log.Info().Str("spec", s.spec).Msg("limpieza de sesiones programada")

	go s.run(ctx)
	return nil
}

// Stop detiene el cron y espera a que termine la ejecución en curso.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	<-s.cron.Stop().Done()
	s.started = false
	s.log.Info().Msg("limpieza de sesiones detenida")
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.cleaner.Prune(ctx); err != nil {
		s.log.Error().Err(err).Msg("limpieza de sesiones falló")
	}
}

// cronLogger adapta el logger de la app a cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
