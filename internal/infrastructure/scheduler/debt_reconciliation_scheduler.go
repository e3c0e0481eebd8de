package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	financeapp "github.com/posledger/backend/internal/application/finance"
	"go.uber.org/zap"
)

// DebtReconciler recomputes customer debt from outstanding credit sales
type DebtReconciler interface {
	ReconcileAll(ctx context.Context) (*financeapp.ReconciliationReport, error)
}

// DebtReconciliationSchedulerConfig holds configuration for the reconciliation scheduler
type DebtReconciliationSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// RunHour is the UTC hour (0-23) of the daily run
	RunHour int

	// JobTimeout bounds a single run
	JobTimeout time.Duration
}

// DefaultDebtReconciliationSchedulerConfig returns default configuration
func DefaultDebtReconciliationSchedulerConfig() DebtReconciliationSchedulerConfig {
	return DebtReconciliationSchedulerConfig{
		Enabled:    true,
		RunHour:    3,
		JobTimeout: 15 * time.Minute,
	}
}

// Validate checks the configuration
func (c DebtReconciliationSchedulerConfig) Validate() error {
	if c.RunHour < 0 || c.RunHour > 23 {
		return fmt.Errorf("%w: run hour %d out of range", ErrInvalidConfig, c.RunHour)
	}
	if c.JobTimeout <= 0 {
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// DebtReconciliationScheduler runs debt reconciliation for all tenants once a day
type DebtReconciliationScheduler struct {
	reconciler DebtReconciler
	logger     *zap.Logger
	config     DebtReconciliationSchedulerConfig
	now        func() time.Time
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.Mutex
	isRunning  bool
	runMu      sync.Mutex
}

// NewDebtReconciliationScheduler creates a new reconciliation scheduler
func NewDebtReconciliationScheduler(
	reconciler DebtReconciler,
	logger *zap.Logger,
	config DebtReconciliationSchedulerConfig,
) *DebtReconciliationScheduler {
	return &DebtReconciliationScheduler{
		reconciler: reconciler,
		logger:     logger,
		config:     config,
		now:        time.Now,
	}
}

// Start starts the daily loop. A disabled scheduler starts as a no-op.
func (s *DebtReconciliationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Debt reconciliation scheduler is disabled")
		return nil
	}
	if err := s.config.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runDaily(ctx)

	s.logger.Info("Debt reconciliation scheduler started",
		zap.Int("run_hour_utc", s.config.RunHour),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop cancels the loop and waits for an in-flight run to finish
func (s *DebtReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Debt reconciliation scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Debt reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// NextRun returns the first run time strictly after now
func (s *DebtReconciliationScheduler) NextRun(now time.Time) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.config.RunHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

func (s *DebtReconciliationScheduler) runDaily(ctx context.Context) {
	defer s.wg.Done()

	for {
		nextRun := s.NextRun(s.now())
		delay := nextRun.Sub(s.now())

		s.logger.Info("Debt reconciliation scheduled",
			zap.Time("next_run", nextRun),
			zap.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			_, _ = s.execute(ctx)
		}
	}
}

// execute runs one reconciliation pass. Runs never overlap.
func (s *DebtReconciliationScheduler) execute(ctx context.Context) (*financeapp.ReconciliationReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	s.logger.Info("Starting debt reconciliation")
	startTime := time.Now()
	report, err := s.reconciler.ReconcileAll(runCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Debt reconciliation failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Debt reconciliation completed",
		zap.Duration("duration", duration),
		zap.Int("tenants_scanned", report.TenantsScanned),
		zap.Int("customers_corrected", report.CustomersCorrected),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// TriggerNow starts an immediate run in the background
func (s *DebtReconciliationScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate debt reconciliation")

	go func() {
		defer s.wg.Done()
		_, _ = s.execute(ctx)
	}()
	return nil
}

// RunNow runs reconciliation synchronously whether or not the loop is started
func (s *DebtReconciliationScheduler) RunNow(ctx context.Context) (*financeapp.ReconciliationReport, error) {
	return s.execute(ctx)
}

// IsRunning returns whether the scheduler is running
func (s *DebtReconciliationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
