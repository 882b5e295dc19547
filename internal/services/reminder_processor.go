package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
)

// ReminderPublisher delivers a reminder to whoever shows notifications.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, msg amqp.ReminderMessage) error
}

// SettingsReader is the part of the store the reminder needs.
type SettingsReader interface {
	GetSettings(ctx context.Context) (core.Settings, error)
}

// ReminderProcessor sends at most one daily reminder per calendar day.
// The last send time lives in memory, so a restart after 7 PM may send
// the day's reminder a second time.
type ReminderProcessor struct {
	settings  SettingsReader
	publisher ReminderPublisher
	clock     Clock
	hour      int

	mu       sync.Mutex
	lastSent time.Time
}

func NewReminderProcessor(settings SettingsReader, publisher ReminderPublisher, clock Clock, hour int) *ReminderProcessor {
	if clock == nil {
		clock = SystemClock(nil)
	}
	return &ReminderProcessor{
		settings:  settings,
		publisher: publisher,
		clock:     clock,
		hour:      hour,
	}
}

// LastSent returns when the last reminder went out, or the zero time.
func (p *ReminderProcessor) LastSent() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSent
}

// Check sends the reminder if it is due and reports whether it did.
func (p *ReminderProcessor) Check(ctx context.Context) (bool, error) {
	if p.settings == nil || p.publisher == nil {
		return false, errors.New("reminder processor not properly initialized")
	}

	settings, err := p.settings.GetSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("read settings: %w", err)
	}

	now := p.clock()
	p.mu.Lock()
	last := p.lastSent
	p.mu.Unlock()

	if !ReminderCheckerFor(settings.ReminderEnabled, p.hour).IsDue(last, now) {
		return false, nil
	}

	msg := amqp.ReminderMessage{
		Language:  string(settings.Language),
		Title:     settings.Language.Pick("ಖರ್ಚು ನೆನಪು", "Expense reminder"),
		Body:      core.Label("daily_reminder", settings.Language),
		Timestamp: now,
	}
	if err := p.publisher.PublishReminder(ctx, msg); err != nil {
		return false, fmt.Errorf("publish reminder: %w", err)
	}

	p.mu.Lock()
	p.lastSent = now
	p.mu.Unlock()

	slog.InfoContext(ctx, "Daily reminder sent",
		"language", msg.Language,
		"at", now.Format(time.RFC3339))
	return true, nil
}

// Run checks once immediately and then on every tick until ctx ends.
func (p *ReminderProcessor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.Check(ctx); err != nil {
			slog.ErrorContext(ctx, "Reminder check failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Reminder processor stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
