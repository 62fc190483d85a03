package db

// Bucket values group tasks by the kind of energy they need.
const (
	BucketUnsorted = "unsorted"
	BucketUrgent   = "urgent"
	BucketDeadline = "deadline"
	BucketAdmin    = "admin"
	BucketCreative = "creative"
)

// Buckets lists every valid bucket in display order.
var Buckets = []string{BucketUnsorted, BucketUrgent, BucketDeadline, BucketAdmin, BucketCreative}

const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// EnergyLevels is shared by task energy, friction and morning energy.
var EnergyLevels = []string{EnergyLow, EnergyMedium, EnergyHigh}

const (
	PriorityFire   = "fire"
	PriorityBolt   = "bolt"
	PriorityTurtle = "turtle"
)

var PriorityTypes = []string{PriorityFire, PriorityBolt, PriorityTurtle}

const (
	SourceManual     = "manual"
	SourceParkingLot = "parking_lot"
	SourceVoice      = "voice"
	SourceAgent      = "agent"
)

var TaskSources = []string{SourceManual, SourceParkingLot, SourceVoice, SourceAgent}

const (
	MoodFlow    = "flow"
	MoodOkay    = "okay"
	MoodDrained = "drained"
)

var Moods = []string{MoodFlow, MoodOkay, MoodDrained}

var DistractionSources = []string{"phone", "thought", "person", "environment", "internal", "other"}

const (
	StreakDailyPlan         = "daily_plan"
	StreakMorningActivation = "morning_activation"
	StreakSprintComplete    = "sprint_complete"
	StreakFocusSession      = "focus_session"
)

var StreakTypes = []string{StreakDailyPlan, StreakMorningActivation, StreakSprintComplete, StreakFocusSession}
