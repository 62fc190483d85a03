package testutil

import (
	"testing"
	"time"

	"github.com/kaizenflow/internal/db"
	"gorm.io/gorm"
)

// TaskBuilder provides a fluent API for seeding tasks.
type TaskBuilder struct {
	task db.Task
}

func NewTask(title string) *TaskBuilder {
	return &TaskBuilder{task: db.Task{Title: title, Bucket: db.BucketUnsorted, Source: db.SourceManual}}
}

func (b *TaskBuilder) InBucket(bucket string) *TaskBuilder {
	b.task.Bucket = bucket
	return b
}

func (b *TaskBuilder) WithPriority(priority string) *TaskBuilder {
	b.task.PriorityType = priority
	return b
}

func (b *TaskBuilder) WithEnergy(energy string) *TaskBuilder {
	b.task.EnergyLevel = energy
	return b
}

func (b *TaskBuilder) WithFriction(friction string) *TaskBuilder {
	b.task.FrictionLevel = friction
	return b
}

func (b *TaskBuilder) WithMinutes(minutes int) *TaskBuilder {
	b.task.EstimatedDuration = &minutes
	return b
}

func (b *TaskBuilder) WithDopamine(score int) *TaskBuilder {
	b.task.DopamineScore = &score
	return b
}

func (b *TaskBuilder) WithSortOrder(order int) *TaskBuilder {
	b.task.SortOrder = order
	return b
}

func (b *TaskBuilder) Completed(at time.Time) *TaskBuilder {
	b.task.IsCompleted = true
	b.task.CompletedAt = &at
	return b
}

func (b *TaskBuilder) Highlighted() *TaskBuilder {
	b.task.IsDailyHighlight = true
	return b
}

func (b *TaskBuilder) FromSource(source string) *TaskBuilder {
	b.task.Source = source
	return b
}

func (b *TaskBuilder) Build() db.Task {
	return b.task
}

// Create inserts the task and returns the stored row.
func (b *TaskBuilder) Create(t *testing.T, gdb *gorm.DB) db.Task {
	t.Helper()
	task := b.task
	if err := gdb.Create(&task).Error; err != nil {
		t.Fatalf("failed to seed task %q: %v", task.Title, err)
	}
	return task
}

// Clock is a settable time source for services under test.
type Clock struct {
	Current time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{Current: t}
}

func (c *Clock) Now() time.Time {
	return c.Current
}

func (c *Clock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}
