package service

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"time"

	"github.com/kaizenflow/internal/db"
	"github.com/kaizenflow/internal/events"
	"gorm.io/gorm"
)

const (
	maxTaskTitleLength = 255
	maxDopamineScore   = 3
	maxTaskListLimit   = 500
)

const taskListOrder = "CASE bucket WHEN 'unsorted' THEN 1 WHEN 'urgent' THEN 2 WHEN 'deadline' THEN 3 " +
	"WHEN 'admin' THEN 4 WHEN 'creative' THEN 5 ELSE 6 END ASC"

// TaskService owns task CRUD and the single daily highlight.
type TaskService struct {
	db  *gorm.DB
	bus events.Publisher
	now func() time.Time
}

// TaskFilter narrows List. Zero values mean "no constraint".
type TaskFilter struct {
	Buckets   []string
	Completed *bool
	Highlight *bool
	Source    string
	IDs       []uint
	Search    string
	Limit     int
}

// TaskInput defines the fields accepted on create.
type TaskInput struct {
	Title             string     `json:"title"`
	Bucket            string     `json:"bucket"`
	EstimatedDuration *int       `json:"estimated_duration"`
	EnergyLevel       string     `json:"energy_level"`
	PriorityType      string     `json:"priority_type"`
	DopamineScore     *int       `json:"dopamine_score"`
	FrictionLevel     string     `json:"friction_level"`
	Environment       string     `json:"environment"`
	Deadline          *time.Time `json:"deadline"`
	Source            string     `json:"source"`
	Tags              []string   `json:"tags"`
	IsDailyHighlight  bool       `json:"is_daily_highlight"`
	SortOrder         *int       `json:"sort_order"`
}

// TaskUpdate is a sparse update: only set fields are written.
type TaskUpdate struct {
	Title             Optional[string]     `json:"title"`
	Bucket            Optional[string]     `json:"bucket"`
	IsCompleted       Optional[bool]       `json:"is_completed"`
	IsDailyHighlight  Optional[bool]       `json:"is_daily_highlight"`
	SortOrder         Optional[int]        `json:"sort_order"`
	EstimatedDuration Optional[*int]       `json:"estimated_duration"`
	EnergyLevel       Optional[string]     `json:"energy_level"`
	PriorityType      Optional[string]     `json:"priority_type"`
	DopamineScore     Optional[*int]       `json:"dopamine_score"`
	FrictionLevel     Optional[string]     `json:"friction_level"`
	Environment       Optional[string]     `json:"environment"`
	Deadline          Optional[*time.Time] `json:"deadline"`
	Source            Optional[string]     `json:"source"`
	Tags              Optional[[]string]   `json:"tags"`
}

// ReorderItem moves one task to a position, possibly in another bucket.
type ReorderItem struct {
	ID        uint   `json:"id"`
	SortOrder int    `json:"sort_order"`
	Bucket    string `json:"bucket"`
}

func NewTaskService(gdb *gorm.DB, bus events.Publisher) *TaskService {
	return &TaskService{db: gdb, bus: bus, now: time.Now}
}

func (s *TaskService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Validate rejects unknown enum values.
func (f TaskFilter) Validate() error {
	for _, bucket := range f.Buckets {
		if !slices.Contains(db.Buckets, bucket) {
			return invalidField("bucket", "must be one of %s", strings.Join(db.Buckets, ", "))
		}
	}
	if f.Source != "" && !slices.Contains(db.TaskSources, f.Source) {
		return invalidField("source", "must be one of %s", strings.Join(db.TaskSources, ", "))
	}
	if f.Limit < 0 {
		return invalidField("limit", "must not be negative")
	}
	return nil
}

// Apply adds one parameterized condition per set field.
func (f TaskFilter) Apply(query *gorm.DB) *gorm.DB {
	if len(f.Buckets) > 0 {
		query = query.Where("bucket IN ?", f.Buckets)
	}
	if f.Completed != nil {
		query = query.Where("is_completed = ?", *f.Completed)
	}
	if f.Highlight != nil {
		query = query.Where("is_daily_highlight = ?", *f.Highlight)
	}
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if len(f.IDs) > 0 {
		query = query.Where("id IN ?", f.IDs)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if f.Limit > 0 {
		query = query.Limit(min(f.Limit, maxTaskListLimit))
	}
	return query
}

// List returns tasks grouped by bucket, then by manual order, newest first.
func (s *TaskService) List(ctx context.Context, filter TaskFilter) ([]db.Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var tasks []db.Task
	query := filter.Apply(s.db.WithContext(ctx).Model(&db.Task{}))
	if err := query.Order(taskListOrder).Order("sort_order ASC").Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, storeErr("list tasks", err)
	}
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*db.Task, error) {
	task, err := findTask(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, storeErr("get task", err)
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, input TaskInput) (*db.Task, error) {
	task, err := taskFromInput(input)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.SortOrder != nil {
			task.SortOrder = *input.SortOrder
		} else {
			next, err := nextSortOrder(tx, task.Bucket)
			if err != nil {
				return err
			}
			task.SortOrder = next
		}
		if task.IsDailyHighlight {
			if err := clearHighlights(tx, 0); err != nil {
				return err
			}
		}
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, storeErr("create task", err)
	}

	s.publish(events.TaskCreated, task)
	return task, nil
}

// Update writes only the fields set in update. Setting the highlight clears
// it from every other task in the same transaction.
func (s *TaskService) Update(ctx context.Context, id uint, update TaskUpdate) (*db.Task, error) {
	if err := update.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var task *db.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		task, err = findTask(tx, id)
		if err != nil {
			return err
		}

		columns := update.apply(task, now)
		task.UpdatedAt = now
		columns = append(columns, "updated_at")

		if task.IsDailyHighlight && update.IsDailyHighlight.Set {
			if err := clearHighlights(tx, task.ID); err != nil {
				return err
			}
		}
		return tx.Model(task).Select(columns).Updates(task).Error
	})
	if err != nil {
		return nil, storeErr("update task", err)
	}

	s.publish(events.TaskUpdated, task)
	return task, nil
}

// SetCompleted toggles completion and maintains completed_at.
func (s *TaskService) SetCompleted(ctx context.Context, id uint, completed bool) (*db.Task, error) {
	return s.Update(ctx, id, TaskUpdate{IsCompleted: Some(completed)})
}

// Delete hard-deletes a task.
func (s *TaskService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&db.Task{}, id)
	if result.Error != nil {
		return storeErr("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	s.publish(events.TaskDeleted, map[string]any{"id": id})
	return nil
}

// Reorder applies every move or none.
func (s *TaskService) Reorder(ctx context.Context, items []ReorderItem) error {
	if len(items) == 0 {
		return invalidField("tasks", "must not be empty")
	}
	for _, item := range items {
		if !slices.Contains(db.Buckets, item.Bucket) {
			return invalidField("bucket", "must be one of %s", strings.Join(db.Buckets, ", "))
		}
	}

	now := s.now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			result := tx.Model(&db.Task{}).Where("id = ?", item.ID).Updates(map[string]any{
				"sort_order": item.SortOrder,
				"bucket":     item.Bucket,
				"updated_at": now,
			})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrTaskNotFound
			}
		}
		return nil
	})
	if err != nil {
		return storeErr("reorder tasks", err)
	}

	s.publish(events.TasksReordered, map[string]any{"count": len(items)})
	return nil
}

func (s *TaskService) publish(eventType string, data any) {
	if s.bus != nil {
		s.bus.Publish(eventType, data)
	}
}

func findTask(gdb *gorm.DB, id uint) (*db.Task, error) {
	var tasks []db.Task
	if err := gdb.Where("id = ?", id).Limit(1).Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrTaskNotFound
	}
	return &tasks[0], nil
}

func clearHighlights(tx *gorm.DB, keepID uint) error {
	return tx.Model(&db.Task{}).
		Where("is_daily_highlight = ? AND id <> ?", true, keepID).
		Update("is_daily_highlight", false).Error
}

func nextSortOrder(tx *gorm.DB, bucket string) (int, error) {
	var maxOrder sql.NullInt64
	row := tx.Model(&db.Task{}).Where("bucket = ?", bucket).Select("MAX(sort_order)").Row()
	if err := row.Scan(&maxOrder); err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}

func taskFromInput(input TaskInput) (*db.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidField("title", "is required")
	}
	if len(title) > maxTaskTitleLength {
		return nil, invalidField("title", "must be at most %d characters", maxTaskTitleLength)
	}

	bucket := strings.TrimSpace(input.Bucket)
	if bucket == "" {
		bucket = db.BucketUnsorted
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = db.SourceManual
	}

	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"bucket", bucket, db.Buckets},
		{"source", source, db.TaskSources},
		{"energy_level", input.EnergyLevel, db.EnergyLevels},
		{"priority_type", input.PriorityType, db.PriorityTypes},
		{"friction_level", input.FrictionLevel, db.EnergyLevels},
	}
	for _, c := range checks {
		if err := checkEnum(c.field, c.value, c.allowed); err != nil {
			return nil, err
		}
	}
	if err := checkDopamine(input.DopamineScore); err != nil {
		return nil, err
	}
	if err := checkDuration(input.EstimatedDuration); err != nil {
		return nil, err
	}

	tags := normalizeTags(input.Tags)
	return &db.Task{
		Title:             title,
		Bucket:            bucket,
		IsDailyHighlight:  input.IsDailyHighlight,
		EstimatedDuration: input.EstimatedDuration,
		EnergyLevel:       input.EnergyLevel,
		PriorityType:      input.PriorityType,
		DopamineScore:     input.DopamineScore,
		FrictionLevel:     input.FrictionLevel,
		Environment:       strings.TrimSpace(input.Environment),
		Deadline:          input.Deadline,
		Source:            source,
		Tags:              tags,
	}, nil
}

func (u TaskUpdate) validate() error {
	if !u.any() {
		return invalidField("fields", "no fields to update")
	}
	if title, ok := u.Title.Get(); ok {
		title = strings.TrimSpace(title)
		if title == "" {
			return invalidField("title", "must not be empty")
		}
		if len(title) > maxTaskTitleLength {
			return invalidField("title", "must be at most %d characters", maxTaskTitleLength)
		}
	}
	if bucket, ok := u.Bucket.Get(); ok && !slices.Contains(db.Buckets, bucket) {
		return invalidField("bucket", "must be one of %s", strings.Join(db.Buckets, ", "))
	}
	if source, ok := u.Source.Get(); ok && !slices.Contains(db.TaskSources, source) {
		return invalidField("source", "must be one of %s", strings.Join(db.TaskSources, ", "))
	}
	enums := []struct {
		field   string
		value   Optional[string]
		allowed []string
	}{
		{"energy_level", u.EnergyLevel, db.EnergyLevels},
		{"priority_type", u.PriorityType, db.PriorityTypes},
		{"friction_level", u.FrictionLevel, db.EnergyLevels},
	}
	for _, e := range enums {
		if value, ok := e.value.Get(); ok {
			if err := checkEnum(e.field, value, e.allowed); err != nil {
				return err
			}
		}
	}
	if score, ok := u.DopamineScore.Get(); ok {
		if err := checkDopamine(score); err != nil {
			return err
		}
	}
	if minutes, ok := u.EstimatedDuration.Get(); ok {
		if err := checkDuration(minutes); err != nil {
			return err
		}
	}
	return nil
}

func (u TaskUpdate) any() bool {
	return u.Title.Set || u.Bucket.Set || u.IsCompleted.Set || u.IsDailyHighlight.Set ||
		u.SortOrder.Set || u.EstimatedDuration.Set || u.EnergyLevel.Set || u.PriorityType.Set ||
		u.DopamineScore.Set || u.FrictionLevel.Set || u.Environment.Set || u.Deadline.Set ||
		u.Source.Set || u.Tags.Set
}

// apply copies set fields onto task and returns the touched columns.
func (u TaskUpdate) apply(task *db.Task, now time.Time) []string {
	var columns []string
	if v, ok := u.Title.Get(); ok {
		task.Title = strings.TrimSpace(v)
		columns = append(columns, "title")
	}
	if v, ok := u.Bucket.Get(); ok {
		task.Bucket = v
		columns = append(columns, "bucket")
	}
	if v, ok := u.IsCompleted.Get(); ok {
		if v && !task.IsCompleted {
			completedAt := now
			task.CompletedAt = &completedAt
		} else if !v {
			task.CompletedAt = nil
		}
		task.IsCompleted = v
		columns = append(columns, "is_completed", "completed_at")
	}
	if v, ok := u.IsDailyHighlight.Get(); ok {
		task.IsDailyHighlight = v
		columns = append(columns, "is_daily_highlight")
	}
	if v, ok := u.SortOrder.Get(); ok {
		task.SortOrder = v
		columns = append(columns, "sort_order")
	}
	if v, ok := u.EstimatedDuration.Get(); ok {
		task.EstimatedDuration = v
		columns = append(columns, "estimated_duration")
	}
	if v, ok := u.EnergyLevel.Get(); ok {
		task.EnergyLevel = v
		columns = append(columns, "energy_level")
	}
	if v, ok := u.PriorityType.Get(); ok {
		task.PriorityType = v
		columns = append(columns, "priority_type")
	}
	if v, ok := u.DopamineScore.Get(); ok {
		task.DopamineScore = v
		columns = append(columns, "dopamine_score")
	}
	if v, ok := u.FrictionLevel.Get(); ok {
		task.FrictionLevel = v
		columns = append(columns, "friction_level")
	}
	if v, ok := u.Environment.Get(); ok {
		task.Environment = strings.TrimSpace(v)
		columns = append(columns, "environment")
	}
	if v, ok := u.Deadline.Get(); ok {
		task.Deadline = v
		columns = append(columns, "deadline")
	}
	if v, ok := u.Source.Get(); ok {
		task.Source = v
		columns = append(columns, "source")
	}
	if v, ok := u.Tags.Get(); ok {
		task.Tags = normalizeTags(v)
		columns = append(columns, "tags")
	}
	return columns
}

// checkEnum accepts the empty string as "unset".
func checkEnum(field, value string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return invalidField(field, "must be one of %s", strings.Join(allowed, ", "))
}

func checkDopamine(score *int) error {
	if score != nil && (*score < 0 || *score > maxDopamineScore) {
		return invalidField("dopamine_score", "must be between 0 and %d", maxDopamineScore)
	}
	return nil
}

func checkDuration(minutes *int) error {
	if minutes != nil && *minutes <= 0 {
		return invalidField("estimated_duration", "must be positive, got %d", *minutes)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
