package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/kaizenflow/internal/notify"
	"github.com/kaizenflow/internal/testutil"
)

func TestGuardRailRegistersTwoDailyJobs(t *testing.T) {
	scheduler := NewGuardRailScheduler(nil, nil)
	if err := scheduler.Register(); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if got := scheduler.Entries(); got != 2 {
		t.Fatalf("expected 2 scheduled jobs, got %d", got)
	}
	if got := dailySpec(16, 0); got != "0 0 16 * * *" {
		t.Fatalf("unexpected spec %q", got)
	}
}

func TestGuardRailTriggerNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := notify.NewMockNotifier(ctrl)

	scheduler := NewGuardRailScheduler(nil, notifier)
	scheduler.SetClock(testutil.NewClock(monday10am).Now)

	notifier.EXPECT().
		Notify(gomock.Any(), GuardRailTriggered, map[string]any{
			"type":         GuardRailHardStop,
			"triggered_at": monday10am,
		}).
		Return(errors.New("webhook down"))

	scheduler.Trigger(context.Background(), GuardRailHardStop)
}

func TestEnergyTable(t *testing.T) {
	cases := map[int]string{3: "medium", 9: "high", 13: "low", 16: "medium", 20: "low"}
	for hour, want := range cases {
		if got := EnergyForHour(hour); got != want {
			t.Fatalf("hour %d: expected %s, got %s", hour, want, got)
		}
	}
	if GuardRailFor(15) != "" || GuardRailFor(16) != GuardRailEmergency || GuardRailFor(23) != GuardRailHardStop {
		t.Fatal("unexpected guard rail boundaries")
	}
}
