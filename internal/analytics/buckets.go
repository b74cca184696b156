package analytics

import (
	"sort"
	"time"
)

// DefaultBucketCount is the fixed width of the trend-bar views.
const DefaultBucketCount = 14

// BarMode selects how WindowedBars buckets a series.
type BarMode string

const (
	// Rolling resample modes: one bucket per period, most recent first N.
	BarHourly  BarMode = "hourly"
	BarDaily   BarMode = "daily"
	BarWeekly  BarMode = "weekly"
	BarMonthly BarMode = "monthly"
	// Fixed-lookback modes: the window is split into N equal-width bins.
	BarLast3Months BarMode = "3m"
	BarLastYear    BarMode = "1y"
)

// TimeValue is one observation of a value series on a time axis.
type TimeValue struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Bucket is one trend bar: the bucket's start (zero for the ordinal
// fallback), the mean of the values that fell into it, and how many did.
// Synthetic padding buckets carry a zero mean and zero count.
type Bucket struct {
	Start   time.Time `json:"start,omitempty"`
	Ordinal int       `json:"ordinal"`
	Mean    float64   `json:"mean"`
	Count   int       `json:"count"`
}

// WindowedBars buckets a time series for a fixed-width trend chart. It
// always returns exactly bucketCount buckets: leading synthetic zero
// buckets pad short histories, older buckets are truncated away. Series
// without a single usable timestamp degrade to the last bucketCount raw
// values on an ordinal axis.
func WindowedBars(series []TimeValue, mode BarMode, bucketCount int) []Bucket {
	if bucketCount <= 0 {
		bucketCount = DefaultBucketCount
	}

	usable := make([]TimeValue, 0, len(series))
	for _, tv := range series {
		if !tv.Time.IsZero() {
			usable = append(usable, tv)
		}
	}
	if len(usable) == 0 {
		return ordinalBars(series, bucketCount)
	}
	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Time.Before(usable[j].Time) })

	switch mode {
	case BarLast3Months:
		return lookbackBars(usable, bucketCount, func(end time.Time) time.Time {
			return end.AddDate(0, -3, 0)
		})
	case BarLastYear:
		return lookbackBars(usable, bucketCount, func(end time.Time) time.Time {
			return end.AddDate(-1, 0, 0)
		})
	default:
		return resampledBars(usable, mode, bucketCount)
	}
}

// ordinalBars is the no-timestamp fallback: raw values on an index axis.
func ordinalBars(series []TimeValue, bucketCount int) []Bucket {
	out := make([]Bucket, bucketCount)
	for i := range out {
		out[i].Ordinal = i
	}
	vals := series
	if len(vals) > bucketCount {
		vals = vals[len(vals)-bucketCount:]
	}
	offset := bucketCount - len(vals)
	for i, tv := range vals {
		out[offset+i].Mean = tv.Value
		out[offset+i].Count = 1
	}
	return out
}

// resampledBars assigns values to calendar periods and returns the most
// recent bucketCount periods ending at the newest observation, zero-filled
// where no values landed.
func resampledBars(series []TimeValue, mode BarMode, bucketCount int) []Bucket {
	floor := periodFloor(mode)
	step := periodStep(mode)

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, tv := range series {
		key := floor(tv.Time)
		sums[key] += tv.Value
		counts[key]++
	}

	end := floor(series[len(series)-1].Time)
	out := make([]Bucket, bucketCount)
	start := end
	for i := 0; i < bucketCount-1; i++ {
		start = step(start, -1)
	}

	cur := start
	for i := 0; i < bucketCount; i++ {
		out[i] = Bucket{Start: cur, Ordinal: i}
		if n := counts[cur]; n > 0 {
			out[i].Mean = sums[cur] / float64(n)
			out[i].Count = n
		}
		cur = step(cur, 1)
	}
	return out
}

// lookbackBars splits a fixed lookback window ending at the newest
// observation into bucketCount equal-width bins and averages per bin.
func lookbackBars(series []TimeValue, bucketCount int, lookback func(time.Time) time.Time) []Bucket {
	end := series[len(series)-1].Time
	start := lookback(end)
	width := end.Sub(start) / time.Duration(bucketCount)
	if width <= 0 {
		width = time.Nanosecond
	}

	out := make([]Bucket, bucketCount)
	for i := range out {
		out[i] = Bucket{Start: start.Add(time.Duration(i) * width), Ordinal: i}
	}

	sums := make([]float64, bucketCount)
	for _, tv := range series {
		if tv.Time.Before(start) {
			continue
		}
		idx := int(tv.Time.Sub(start) / width)
		if idx >= bucketCount {
			idx = bucketCount - 1 // the window's end is inclusive
		}
		sums[idx] += tv.Value
		out[idx].Count++
	}
	for i := range out {
		if out[i].Count > 0 {
			out[i].Mean = sums[i] / float64(out[i].Count)
		}
	}
	return out
}

func periodFloor(mode BarMode) func(time.Time) time.Time {
	switch mode {
	case BarHourly:
		return func(t time.Time) time.Time { return t.Truncate(time.Hour) }
	case BarWeekly:
		return weekStart
	case BarMonthly:
		return func(t time.Time) time.Time {
			y, m, _ := t.Date()
			return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
		}
	default: // daily
		return dayOf
	}
}

func periodStep(mode BarMode) func(time.Time, int) time.Time {
	switch mode {
	case BarHourly:
		return func(t time.Time, n int) time.Time { return t.Add(time.Duration(n) * time.Hour) }
	case BarWeekly:
		return func(t time.Time, n int) time.Time { return t.AddDate(0, 0, 7*n) }
	case BarMonthly:
		return func(t time.Time, n int) time.Time { return t.AddDate(0, n, 0) }
	default: // daily
		return func(t time.Time, n int) time.Time { return t.AddDate(0, 0, n) }
	}
}

// weekStart floors a timestamp to its Monday.
func weekStart(t time.Time) time.Time {
	d := dayOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}
