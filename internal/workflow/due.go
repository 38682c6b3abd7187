package workflow

import "time"

// Interval thresholds per frequency. Unrecognized frequencies fall back
// to the daily threshold so a bad row slows down rather than spins.
const (
	quarterHourEvery = 15 * time.Minute
	hourlyEvery      = time.Hour
	dailyEvery       = 24 * time.Hour
)

// Threshold returns the minimum elapsed time between runs for a frequency.
func (f Frequency) Threshold() time.Duration {
	switch f {
	case FrequencyQuarterHour:
		return quarterHourEvery
	case FrequencyHourly:
		return hourlyEvery
	case FrequencyDaily:
		return dailyEvery
	default:
		return dailyEvery
	}
}

// Due reports whether a workflow should run at the given instant. A
// workflow that has never run is always due. The check is a pure
// function of (frequency, last_run, now), safe to call repeatedly
// within one scheduling pass.
func (w Workflow) Due(now time.Time) bool {
	if w.LastRun == nil {
		return true
	}
	return now.Sub(*w.LastRun) >= w.Frequency.Threshold()
}
