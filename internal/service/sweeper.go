package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sempaphie/FSMappointment/internal/metrics"
)

// DefaultSweepInterval is how often the sweeper scans for expired instances.
const DefaultSweepInterval = 15 * time.Minute

// Sweeper periodically deletes appointment instances whose TTL has passed.
// Expiry is otherwise only applied at read time, so the sweeper is what
// keeps the table from growing without bound.
type Sweeper struct {
	appointments *AppointmentService
	logger       *zap.Logger
	interval     time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSweeper creates a sweeper. A non-positive interval falls back to
// DefaultSweepInterval.
func NewSweeper(appointments *AppointmentService, logger *zap.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		appointments: appointments,
		logger:       logger,
		interval:     interval,
		stopCh:       make(chan struct{}),
	}
}

// Start launches the background sweep loop. An immediate sweep runs first
// so a restart cleans up anything that expired while the server was down.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for an in-progress sweep.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.appointments.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		metrics.InstancesSwept.Add(float64(removed))
		s.logger.Info("swept expired instances", zap.Int64("removed", removed))
	}
}
