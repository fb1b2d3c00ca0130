package weather

import "errors"

// ErrNoSamples is returned when the provider forecast has no time-slots.
var ErrNoSamples = errors.New("weather: forecast has no samples")

const (
	secondsPerDay = 86400
	noonMinute    = 12 * 60
)

// DayAggregate summarizes one local calendar day of a forecast: the slot
// nearest local noon plus min/max aggregates over all slots of that day.
type DayAggregate struct {
	When           When
	Representative Sample
	// Degraded is set when the requested day had no samples and the first
	// sample of the whole forecast was used instead.
	Degraded     bool
	MinTemp      *float64
	MaxTemp      *float64
	MinFeelsLike *float64
	MaxFeelsLike *float64
	MaxPop       float64
}

// SelectDay picks the samples of the requested day and aggregates them.
//
// Day boundaries are computed in provider-local time using the forecast's
// timezone offset. "Today" is anchored on the local date of the first
// sample rather than the server clock, so a stale or timezone-skewed host
// cannot shift which day is reported.
func SelectDay(f *Forecast, when When) (*DayAggregate, error) {
	if f == nil || len(f.Samples) == 0 {
		return nil, ErrNoSamples
	}

	localDay := func(epoch int64) int64 {
		return (epoch + f.TimezoneOffset) / secondsPerDay
	}

	target := localDay(f.Samples[0].Epoch) + int64(when.Offset())

	var day []Sample
	for _, s := range f.Samples {
		if localDay(s.Epoch) == target {
			day = append(day, s)
		}
	}

	if len(day) == 0 {
		return &DayAggregate{
			When:           when,
			Representative: f.Samples[0],
			Degraded:       true,
			MaxPop:         f.Samples[0].Pop,
		}, nil
	}

	agg := &DayAggregate{When: when, Representative: day[0]}
	bestDiff := noonDistance(day[0].Epoch, f.TimezoneOffset)

	for _, s := range day {
		if d := noonDistance(s.Epoch, f.TimezoneOffset); d < bestDiff {
			bestDiff = d
			agg.Representative = s
		}
		if s.Temp != nil {
			agg.MinTemp = minPtr(agg.MinTemp, *s.Temp)
			agg.MaxTemp = maxPtr(agg.MaxTemp, *s.Temp)
		}
		if s.FeelsLike != nil {
			agg.MinFeelsLike = minPtr(agg.MinFeelsLike, *s.FeelsLike)
			agg.MaxFeelsLike = maxPtr(agg.MaxFeelsLike, *s.FeelsLike)
		}
		if s.Pop > agg.MaxPop {
			agg.MaxPop = s.Pop
		}
	}

	return agg, nil
}

func noonDistance(epoch, offset int64) int64 {
	minute := ((epoch + offset) % secondsPerDay) / 60
	if minute < 0 {
		minute += 24 * 60
	}
	d := minute - noonMinute
	if d < 0 {
		d = -d
	}
	return d
}

func minPtr(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxPtr(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}
