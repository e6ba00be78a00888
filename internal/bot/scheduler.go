package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/edgard/steamguardbot/internal/bot/tasks"
	"github.com/edgard/steamguardbot/internal/config"
	"github.com/edgard/steamguardbot/internal/logger"
)

// Scheduler runs the configured tasks on gocron. Every job is single-flight:
// a tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	cfg       *config.SchedulerConfig
	taskMap   map[string]tasks.ScheduledTaskFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	jobs    []string
}

// NewScheduler creates a scheduler for taskMap. Extra gocron options (such as
// gocron.WithClock) are passed through.
func NewScheduler(log *slog.Logger, cfg *config.SchedulerConfig, taskMap map[string]tasks.ScheduledTaskFunc, opts ...gocron.SchedulerOption) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}

	opts = append([]gocron.SchedulerOption{gocron.WithLogger(logger.NewSchedulerLogger(log))}, opts...)
	s, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		logger:    log.With("component", "scheduler"),
		cfg:       cfg,
		taskMap:   taskMap,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start schedules every enabled task and starts ticking. Interval tasks run
// once immediately, cron tasks wait for their first slot.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	var names []string
	if s.cfg != nil {
		for name := range s.cfg.Tasks {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		s.logger.Warn("No scheduler tasks configured")
	}
	sort.Strings(names)

	for _, taskName := range names {
		taskConfig := s.cfg.Tasks[taskName]
		if !taskConfig.Enabled {
			s.logger.Info("Skipping disabled task", "task_name", taskName)
			continue
		}

		taskFunc, exists := s.taskMap[taskName]
		if !exists {
			s.logger.Warn("Scheduled task configured but not found in registry, skipping", "task_name", taskName)
			continue
		}

		definition, jobOpts, err := jobDefinition(taskConfig)
		if err != nil {
			s.logger.Warn("Skipping task", "task_name", taskName, "error", err)
			continue
		}
		jobOpts = append(jobOpts,
			gocron.WithName(taskName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)

		if _, err := s.scheduler.NewJob(definition, gocron.NewTask(s.runTask, taskName, taskFunc), jobOpts...); err != nil {
			s.logger.Error("Failed to schedule task", "task_name", taskName, "error", err)
			continue
		}

		s.logger.Info("Scheduled task", "task_name", taskName, "interval", taskConfig.Interval, "schedule", taskConfig.Schedule)
		s.jobs = append(s.jobs, taskName)
	}

	s.scheduler.Start()
	s.running = true
	s.logger.Info("Scheduler started", "tasks_scheduled", len(s.jobs))
	return nil
}

// Stop cancels the task context and waits for running jobs to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()
	err := s.scheduler.Shutdown()
	if err != nil {
		s.logger.Error("Error during scheduler shutdown", "error", err)
	} else {
		s.logger.Info("Scheduler stopped")
	}

	s.running = false
	return err
}

// ScheduledTasks returns the names of the tasks registered by Start.
func (s *Scheduler) ScheduledTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

func (s *Scheduler) runTask(name string, task tasks.ScheduledTaskFunc) {
	startTime := time.Now()
	if err := task(s.ctx); err != nil {
		s.logger.Error("Scheduled task failed", "task_name", name, "error", err, "duration", time.Since(startTime))
		return
	}
	s.logger.Debug("Finished scheduled task", "task_name", name, "duration", time.Since(startTime))
}

// jobDefinition maps a task's interval or cron schedule onto gocron.
//
//nolint:ireturn // gocron.JobDefinition is an interface
func jobDefinition(cfg config.TaskConfig) (gocron.JobDefinition, []gocron.JobOption, error) {
	switch {
	case cfg.Interval > 0:
		return gocron.DurationJob(cfg.Interval), []gocron.JobOption{gocron.WithStartAt(gocron.WithStartImmediately())}, nil
	case cfg.Schedule != "":
		return gocron.CronJob(cfg.Schedule, true), nil, nil
	default:
		return nil, nil, fmt.Errorf("task has neither interval nor schedule")
	}
}
