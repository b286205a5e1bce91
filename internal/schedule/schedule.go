// Package schedule turns a corrected commute estimate into a wake-up
// deadline, a refresh cadence and progressive alarm times.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"
)

// ErrInvalidArrivalTime indicates a target time outside HH:mm.
var ErrInvalidArrivalTime = errors.New("target arrival time must be in HH:mm format")

var arrivalRegex = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

// Update interval steps, by remaining seconds until wake time. Polling
// tightens as the deadline approaches.
const (
	intervalImminentSec = 5
	intervalCloseSec    = 30
	intervalNearSec     = 60
	intervalMidSec      = 300
	intervalFarSec      = 1800
)

// DefaultAlarmLevels are the default progressive alarm offsets in minutes
// before the wake time.
var DefaultAlarmLevels = []int{30, 10, 0}

// Config holds the caller-supplied scheduling margins.
type Config struct {
	// PrepMinutes is time needed to get ready before leaving.
	PrepMinutes int

	// SafetyMarginMinutes is a flat buffer against estimate error.
	SafetyMarginMinutes int

	// ExtraMarginMinutes is an additional caller buffer (default 0).
	ExtraMarginMinutes int

	// RollForward moves a target time that already passed today to the
	// next day instead of producing a wake time in the past.
	RollForward bool
}

// Decision is the derived scheduling output. Never persisted; recomputed
// on every evaluation.
type Decision struct {
	WakeAt                time.Time
	TotalMinutes          int
	UpdateIntervalSeconds int
	Alarms                []time.Time
}

// ParseArrival parses an HH:mm local time-of-day string.
func ParseArrival(s string) (hour, minute int, err error) {
	m := arrivalRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidArrivalTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// TotalMinutes sums the contributions to the wake-time offset. Each term
// contributes at least zero.
func TotalMinutes(commute, waitETA, weatherPenalty, prep, safety, extra int) int {
	total := 0
	for _, v := range []int{commute, waitETA, weatherPenalty, prep, safety, extra} {
		if v > 0 {
			total += v
		}
	}
	return total
}

// WakeTime computes the wake timestamp: the target arrival on now's day
// minus totalMinutes. When the arrival time has already passed and
// rollForward is set, the target moves to the next day; otherwise the
// past wake time is returned as-is and the caller decides.
func WakeTime(targetArrival string, totalMinutes int, now time.Time, rollForward bool) (time.Time, error) {
	hour, minute, err := ParseArrival(targetArrival)
	if err != nil {
		return time.Time{}, err
	}

	arrival := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if rollForward && !arrival.After(now) {
		arrival = arrival.AddDate(0, 0, 1)
	}
	return arrival.Add(-time.Duration(totalMinutes) * time.Minute), nil
}

// UpdateIntervalSeconds returns the recommended re-evaluation interval
// given the time remaining until wakeAt. Pure function of the two
// timestamps.
func UpdateIntervalSeconds(wakeAt, now time.Time) int {
	remaining := wakeAt.Sub(now).Seconds()
	switch {
	case remaining <= 0:
		return intervalImminentSec
	case remaining < 600:
		return intervalCloseSec
	case remaining < 3600:
		return intervalNearSec
	case remaining < 10800:
		return intervalMidSec
	default:
		return intervalFarSec
	}
}

// ProgressiveAlarms returns the alarm timestamps for each lead level (in
// minutes before wakeAt) that are still in the future, earliest first.
func ProgressiveAlarms(wakeAt time.Time, levels []int, now time.Time) []time.Time {
	if len(levels) == 0 {
		levels = DefaultAlarmLevels
	}
	var alarms []time.Time
	for _, lvl := range levels {
		at := wakeAt.Add(-time.Duration(lvl) * time.Minute)
		if at.After(now) {
			alarms = append(alarms, at)
		}
	}
	sort.Slice(alarms, func(i, j int) bool { return alarms[i].Before(alarms[j]) })
	return alarms
}

// Decide combines the pieces into a single decision.
func Decide(targetArrival string, commute, waitETA, weatherPenalty int, cfg Config, now time.Time, alarmLevels []int) (Decision, error) {
	total := TotalMinutes(commute, waitETA, weatherPenalty, cfg.PrepMinutes, cfg.SafetyMarginMinutes, cfg.ExtraMarginMinutes)
	wakeAt, err := WakeTime(targetArrival, total, now, cfg.RollForward)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		WakeAt:                wakeAt,
		TotalMinutes:          total,
		UpdateIntervalSeconds: UpdateIntervalSeconds(wakeAt, now),
		Alarms:                ProgressiveAlarms(wakeAt, alarmLevels, now),
	}, nil
}
