package service

import "github.com/kaizenflow/internal/db"

// Guard-rail hours and the hour table are fixed and read in process local time.
const (
	GuardRailEmergencyHour  = 16
	GuardRailHardStopHour   = 21
	DefaultAvailableMinutes = 480

	GuardRailEmergency = "emergency_4pm"
	GuardRailHardStop  = "hard_stop_9pm"
)

var energyByHour = map[int]string{
	6: db.EnergyMedium, 7: db.EnergyMedium, 8: db.EnergyHigh, 9: db.EnergyHigh,
	10: db.EnergyHigh, 11: db.EnergyHigh, 12: db.EnergyMedium, 13: db.EnergyLow,
	14: db.EnergyMedium, 15: db.EnergyMedium, 16: db.EnergyMedium, 17: db.EnergyLow,
	18: db.EnergyLow, 19: db.EnergyLow, 20: db.EnergyLow, 21: db.EnergyLow,
	22: db.EnergyLow,
}

// EnergyForHour returns the suggested energy for an hour of the day.
func EnergyForHour(hour int) string {
	if energy, ok := energyByHour[hour]; ok {
		return energy
	}
	return db.EnergyMedium
}

// GuardRailFor returns the guard rail in force at hour, or "".
func GuardRailFor(hour int) string {
	switch {
	case hour >= GuardRailHardStopHour:
		return GuardRailHardStop
	case hour >= GuardRailEmergencyHour:
		return GuardRailEmergency
	default:
		return ""
	}
}
