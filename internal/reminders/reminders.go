// Package reminders produces scheduled digests of todos that are due soon
// and pushes them to connected transports.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stewardapp/steward/internal/logging"
	"github.com/stewardapp/steward/internal/memory"
)

// Config holds reminder scheduling settings.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // Cron syntax: "0 9 * * *"
	Timezone string `yaml:"timezone"`
	Window   string `yaml:"window"` // how far ahead to look, e.g. "48h"
}

// DefaultConfig returns a daily 9am digest over the next two days.
func DefaultConfig() *Config {
	return &Config{
		Enabled:  true,
		Schedule: "0 9 * * *",
		Timezone: "UTC",
		Window:   "48h",
	}
}

// Digest is one reminder run's payload.
type Digest struct {
	GeneratedAt time.Time
	Window      time.Duration
	Due         []DueItem
}

// DueItem is a todo that is due (or overdue) within the digest window.
type DueItem struct {
	TodoID      string
	ProjectName string
	Title       string
	Priority    string
	DueAt       time.Time
	Overdue     bool
}

// Sink receives rendered digests. Transports register one per connection.
type Sink func(ctx context.Context, digest *Digest)

// Scheduler runs the digest on a cron schedule.
type Scheduler struct {
	store  *memory.Store
	config *Config
	window time.Duration
	cron   *cron.Cron
	log    *slog.Logger

	mu      sync.Mutex
	running bool
	entryID cron.EntryID
	sinks   []Sink
}

// NewScheduler builds a scheduler over the store. An unparseable timezone
// falls back to UTC, an unparseable window to 48h.
func NewScheduler(store *memory.Store, cfg *Config) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	log := logging.WithComponent("reminders")

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("invalid timezone, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}

	window, err := time.ParseDuration(cfg.Window)
	if err != nil || window <= 0 {
		if cfg.Window != "" {
			log.Warn("invalid window, using 48h", "window", cfg.Window)
		}
		window = 48 * time.Hour
	}

	return &Scheduler{
		store:  store,
		config: cfg,
		window: window,
		cron:   cron.New(cron.WithLocation(loc)),
		log:    log,
	}
}

// Subscribe registers a sink for future digests.
func (s *Scheduler) Subscribe(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Start begins scheduled digest runs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if !s.config.Enabled {
		s.log.Info("reminder scheduler disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runDigest(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", s.config.Schedule, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.log.Info("reminder scheduler started",
		"schedule", s.config.Schedule,
		"window", s.window.String(),
		"next_run", s.cron.Entry(s.entryID).Next,
	)
	return nil
}

// Stop halts the scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("reminder scheduler stopped")
}

// NextRun returns the next scheduled digest time.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// RunNow builds a digest immediately, outside the schedule.
func (s *Scheduler) RunNow(ctx context.Context) (*Digest, error) {
	return s.buildDigest(ctx)
}

func (s *Scheduler) runDigest(ctx context.Context) {
	digest, err := s.buildDigest(ctx)
	if err != nil {
		s.log.Error("reminder digest failed", "error", err)
		return
	}
	if len(digest.Due) == 0 {
		s.log.Debug("no todos due, skipping digest")
		return
	}

	s.mu.Lock()
	sinks := make([]Sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	s.log.Info("delivering reminder digest", "due", len(digest.Due), "sinks", len(sinks))
	for _, sink := range sinks {
		sink(ctx, digest)
	}
}

func (s *Scheduler) buildDigest(ctx context.Context) (*Digest, error) {
	todos, err := s.store.DueTodos(ctx, s.window)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	digest := &Digest{GeneratedAt: now, Window: s.window}

	// Project names are looked up once per project.
	names := make(map[string]string)
	for _, t := range todos {
		name, ok := names[t.ProjectID]
		if !ok {
			p, err := s.store.GetProject(ctx, t.ProjectID)
			if err != nil {
				return nil, err
			}
			name = p.Name
			names[t.ProjectID] = name
		}

		digest.Due = append(digest.Due, DueItem{
			TodoID:      t.ID,
			ProjectName: name,
			Title:       t.Title,
			Priority:    t.Priority,
			DueAt:       *t.DueAt,
			Overdue:     t.DueAt.Before(now),
		})
	}
	return digest, nil
}

// Format renders a digest as plain text for the transports.
func (d *Digest) Format() string {
	if len(d.Due) == 0 {
		return "Nothing due in the next " + d.Window.String() + "."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d todo(s) due within %s:\n", len(d.Due), d.Window)
	for _, item := range d.Due {
		state := "due"
		if item.Overdue {
			state = "OVERDUE"
		}
		fmt.Fprintf(&b, "- [%s] %s (%s, %s %s)\n",
			item.ProjectName, item.Title, item.Priority, state, item.DueAt.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}
