package service

import (
	"cmp"
	"slices"

	"github.com/kaizenflow/internal/db"
)

func bucketRank(bucket string) int {
	switch bucket {
	case db.BucketUrgent:
		return 1
	case db.BucketDeadline:
		return 2
	case db.BucketAdmin:
		return 3
	case db.BucketCreative:
		return 4
	default:
		return 5
	}
}

func priorityRank(priority string) int {
	switch priority {
	case db.PriorityFire:
		return 1
	case db.PriorityBolt:
		return 2
	case db.PriorityTurtle:
		return 3
	default:
		return 4
	}
}

func frictionRank(friction string) int {
	switch friction {
	case db.EnergyLow:
		return 0
	case db.EnergyMedium:
		return 1
	default:
		return 2
	}
}

func boolRank(b bool) int {
	if b {
		return 0
	}
	return 1
}

func byManualOrder(a, b db.Task) int {
	return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
}

// sortForSprint: priority, low friction first, dopamine desc.
func sortForSprint(tasks []db.Task) {
	slices.SortStableFunc(tasks, func(a, b db.Task) int {
		return cmp.Or(
			cmp.Compare(priorityRank(a.PriorityType), priorityRank(b.PriorityType)),
			cmp.Compare(boolRank(a.FrictionLevel == db.EnergyLow), boolRank(b.FrictionLevel == db.EnergyLow)),
			cmp.Compare(b.Dopamine(), a.Dopamine()),
			byManualOrder(a, b),
		)
	})
}

// sortForPlan: bucket, priority, dopamine desc, manual order.
func sortForPlan(tasks []db.Task) {
	slices.SortStableFunc(tasks, func(a, b db.Task) int {
		return cmp.Or(
			cmp.Compare(bucketRank(a.Bucket), bucketRank(b.Bucket)),
			cmp.Compare(priorityRank(a.PriorityType), priorityRank(b.PriorityType)),
			cmp.Compare(b.Dopamine(), a.Dopamine()),
			byManualOrder(a, b),
		)
	})
}

// sortForRecommendation: urgent and deadline first, energy match, friction,
// dopamine desc.
func sortForRecommendation(tasks []db.Task, energy string) {
	urgency := func(bucket string) int { return min(bucketRank(bucket), 3) }
	slices.SortStableFunc(tasks, func(a, b db.Task) int {
		return cmp.Or(
			cmp.Compare(urgency(a.Bucket), urgency(b.Bucket)),
			cmp.Compare(boolRank(a.EnergyLevel == energy), boolRank(b.EnergyLevel == energy)),
			cmp.Compare(frictionRank(a.FrictionLevel), frictionRank(b.FrictionLevel)),
			cmp.Compare(b.Dopamine(), a.Dopamine()),
			byManualOrder(a, b),
		)
	})
}

func taskIDs(tasks []db.Task) []uint {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func totalMinutes(tasks []db.Task) int {
	total := 0
	for _, t := range tasks {
		total += t.Minutes()
	}
	return total
}
