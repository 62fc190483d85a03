package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kaizenflow/internal/notify"
	"github.com/robfig/cron/v3"
)

// GuardRailTriggered is the webhook event sent at each guard-rail hour.
const GuardRailTriggered = "guard_rail_triggered"

const guardRailNotifyTimeout = 10 * time.Second

// GuardRailScheduler fires webhook notifications at the emergency and
// hard-stop hours.
type GuardRailScheduler struct {
	cron     *cron.Cron
	notifier notify.Notifier
	now      func() time.Time
}

func NewGuardRailScheduler(loc *time.Location, notifier notify.Notifier) *GuardRailScheduler {
	if loc == nil {
		loc = time.Local
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &GuardRailScheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		notifier: notify.Safe{Next: notifier},
		now:      time.Now,
	}
}

func (s *GuardRailScheduler) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Register adds one daily job per guard rail.
func (s *GuardRailScheduler) Register() error {
	rails := []struct {
		hour int
		kind string
	}{
		{GuardRailEmergencyHour, GuardRailEmergency},
		{GuardRailHardStopHour, GuardRailHardStop},
	}
	for _, rail := range rails {
		kind := rail.kind
		if _, err := s.cron.AddFunc(dailySpec(rail.hour, 0), func() {
			ctx, cancel := context.WithTimeout(context.Background(), guardRailNotifyTimeout)
			defer cancel()
			s.Trigger(ctx, kind)
		}); err != nil {
			return fmt.Errorf("schedule guard rail %s: %w", kind, err)
		}
	}
	return nil
}

// Trigger sends one guard_rail_triggered event. Failures are only logged.
func (s *GuardRailScheduler) Trigger(ctx context.Context, kind string) {
	log.Printf("[guardrail] %s reached", kind)
	_ = s.notifier.Notify(ctx, GuardRailTriggered, map[string]any{
		"type":         kind,
		"triggered_at": s.now().UTC(),
	})
}

// Entries reports how many jobs are scheduled.
func (s *GuardRailScheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *GuardRailScheduler) Start() {
	s.cron.Start()
}

func (s *GuardRailScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// dailySpec builds a seconds-enabled cron spec: second minute hour dom month dow.
func dailySpec(hour, minute int) string {
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}
