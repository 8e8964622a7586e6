package scheduler

import (
	"context"
	"sync"

	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/scheduler/interfaces"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/roylee0704/gron"
)

type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	ledger      services.LedgerServiceInterface
	snapshotter storage.Snapshotter
	cron        *gron.Cron
	opsMu       sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
}

func (s *Scheduler) Init() {
	s.cron = gron.New()

	s.cron.AddFunc(newDelayedSchedule(s.config.Sweep.InitialDelay, s.config.Sweep.Interval), func() {
		_ = s.SweepNow(s.ctx)
	})

	if s.config.Storage.SnapshotPath != "" && s.config.Storage.SnapshotInterval > 0 {
		s.cron.AddFunc(gron.Every(s.config.Storage.SnapshotInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			if err := s.snapshotter.SaveToFile(s.config.Storage.SnapshotPath); err != nil {
				s.logger.Errorf(providers.TypeSweep, "Error while persisting ledger: %s", err)
				return
			}
			s.logger.Debugf(providers.TypeSweep, "Persisted ledger to %s", s.config.Storage.SnapshotPath)
		})
	}

	s.cron.Start()
	s.logger.Infof(providers.TypeSweep, "Sweep scheduled: first run in %s, then every %s", s.config.Sweep.InitialDelay, s.config.Sweep.Interval)
}

// SweepNow runs one sweep, serialized with snapshot writes.
func (s *Scheduler) SweepNow(ctx context.Context) error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	res, err := s.ledger.Sweep(ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeSweep, "Sweep finished with errors: %s", err)
		return err
	}
	s.logger.Debugf(providers.TypeSweep, "Sweep removed %d records, pruned %d", res.Deleted, res.Pruned)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()
}

func (s *Scheduler) Restore() error {
	if s.config.Storage.SnapshotPath == "" {
		return nil
	}
	return s.snapshotter.LoadFromFile(s.config.Storage.SnapshotPath)
}

func (s *Scheduler) Persist() error {
	if s.config.Storage.SnapshotPath == "" {
		return nil
	}
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeSweep, "Persisting ledger to file...")
	if err := s.snapshotter.SaveToFile(s.config.Storage.SnapshotPath); err != nil {
		s.logger.Errorf(providers.TypeSweep, "Error while persisting ledger: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, ledger services.LedgerServiceInterface, snapshotter storage.Snapshotter) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:      config,
		logger:      logger,
		ledger:      ledger,
		snapshotter: snapshotter,
		ctx:         ctx,
		cancel:      cancel,
	}
}
