package service

import (
	"sync"
	"testing"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/testutil"
	"gorm.io/gorm"
)

type publishedEvent struct {
	Type string
	Data any
}

type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *recordingBus) Publish(eventType string, data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{Type: eventType, Data: data})
}

func (b *recordingBus) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.events))
	for _, e := range b.events {
		types = append(types, e.Type)
	}
	return types
}

// monday10am is a fixed Monday morning used as the default test clock.
var monday10am = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func countActiveSprints(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := gdb.Model(&db.Sprint{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		t.Fatalf("count active sprints: %v", err)
	}
	return count
}

func newSprintFixture(t *testing.T) (*gorm.DB, *SprintService, *recordingBus, *testutil.Clock) {
	t.Helper()
	gdb := testutil.OpenDB(t)
	bus := &recordingBus{}
	clock := testutil.NewClock(monday10am)
	svc := NewSprintService(gdb, bus)
	svc.SetClock(clock.Now)
	return gdb, svc, bus, clock
}

func equalTypes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
