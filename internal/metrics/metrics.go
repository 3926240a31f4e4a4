package metrics

import (
	"log/slog"
	"time"
)

// Tracker accumulates per-command session statistics. In-memory only; the
// summary goes to the log and nothing is persisted.
type Tracker struct {
	start time.Time
	stats map[string]*commandStats
	order []string
}

type commandStats struct {
	Count  int64
	Errors int64
	Min    time.Duration
	Max    time.Duration
	Total  time.Duration
}

func NewTracker() *Tracker {
	return &Tracker{
		start: time.Now(),
		stats: make(map[string]*commandStats),
	}
}

// Track records one executed command.
func (t *Tracker) Track(command string, duration time.Duration, err error) {
	s, ok := t.stats[command]
	if !ok {
		s = &commandStats{Min: duration, Max: duration}
		t.stats[command] = s
		t.order = append(t.order, command)
	}
	s.Count++
	if err != nil {
		s.Errors++
	}
	s.Total += duration
	if duration < s.Min {
		s.Min = duration
	}
	if duration > s.Max {
		s.Max = duration
	}
}

// Commands returns the total number of commands tracked so far.
func (t *Tracker) Commands() int64 {
	var total int64
	for _, s := range t.stats {
		total += s.Count
	}
	return total
}

// Errors returns the total number of failed commands.
func (t *Tracker) Errors() int64 {
	var total int64
	for _, s := range t.stats {
		total += s.Errors
	}
	return total
}

// LogSummary writes the session summary, one line per command in first-use
// order.
func (t *Tracker) LogSummary(log *slog.Logger) {
	log.Info("session summary",
		"uptime", time.Since(t.start).Round(time.Second).String(),
		"commands", t.Commands(),
		"errors", t.Errors(),
	)
	for _, name := range t.order {
		s := t.stats[name]
		avg := s.Total / time.Duration(s.Count)
		log.Info("command metrics",
			"command", name,
			"count", s.Count,
			"errors", s.Errors,
			"min_ms", s.Min.Milliseconds(),
			"max_ms", s.Max.Milliseconds(),
			"avg_ms", avg.Milliseconds(),
		)
	}
}
