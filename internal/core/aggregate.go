package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TaggedAmount is one monetized record entering the aggregator. Amount is
// already converted to the base currency; expense magnitudes are positive
// regardless of how the source recorded the sign, so profit is always
// income minus expenses. Kind is set at ingestion time, never inferred.
type TaggedAmount struct {
	Date      string
	Amount    decimal.Decimal
	Kind      EntryKind
	ProjectID *int64
}

// PeriodBucket is one time-keyed trend row. Period is YYYY-MM for monthly
// buckets and YYYY for yearly ones.
type PeriodBucket struct {
	Period   string
	Income   float64
	Expenses float64
	Profit   float64
}

// ProjectTotals is one entity-keyed rollup row, in insertion order of the
// project's first occurrence in the input.
type ProjectTotals struct {
	ProjectID int64
	Income    float64
	Expenses  float64
	Profit    float64
}

type accumulator struct {
	income   decimal.Decimal
	expenses decimal.Decimal
}

func (a *accumulator) add(e TaggedAmount) {
	if e.Kind == KindIncome {
		a.income = a.income.Add(e.Amount)
	} else {
		a.expenses = a.expenses.Add(e.Amount)
	}
}

// round2 converts an exact accumulator value to the emitted 2-decimal form.
// Accumulation itself is never rounded.
func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func bucketByPeriod(entries []TaggedAmount, keyFormat string) []PeriodBucket {
	buckets := make(map[string]*accumulator)
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		key := d.Format(keyFormat)
		acc, ok := buckets[key]
		if !ok {
			acc = &accumulator{}
			buckets[key] = acc
		}
		acc.add(e)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	// Lexicographic order is date order for YYYY-MM and YYYY keys.
	sort.Strings(keys)

	out := make([]PeriodBucket, 0, len(keys))
	for _, k := range keys {
		acc := buckets[k]
		out = append(out, PeriodBucket{
			Period:   k,
			Income:   round2(acc.income),
			Expenses: round2(acc.expenses),
			Profit:   round2(acc.income.Sub(acc.expenses)),
		})
	}
	return out
}

// BucketByMonth groups entries into YYYY-MM buckets, ascending. Entries
// with unparseable dates are skipped.
func BucketByMonth(entries []TaggedAmount) []PeriodBucket {
	return bucketByPeriod(entries, "2006-01")
}

// BucketByYear groups entries into YYYY buckets, ascending.
func BucketByYear(entries []TaggedAmount) []PeriodBucket {
	return bucketByPeriod(entries, "2006")
}

// ForecastBuckets is BucketByMonth restricted to the forecast window: from
// today (midnight) up to, excluding, the first day of the next calendar
// month.
func ForecastBuckets(entries []TaggedAmount, today time.Time) []PeriodBucket {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	until := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)

	var window []TaggedAmount
	for _, e := range entries {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		if !d.Before(from) && d.Before(until) {
			window = append(window, e)
		}
	}
	return BucketByMonth(window)
}

// BucketByProject groups entries by project id. Entries without a project
// (general, company-level) are excluded — they belong to company-wide
// totals only. Output order is first-occurrence order.
func BucketByProject(entries []TaggedAmount) []ProjectTotals {
	buckets := make(map[int64]*accumulator)
	var order []int64
	for _, e := range entries {
		if e.ProjectID == nil {
			continue
		}
		id := *e.ProjectID
		acc, ok := buckets[id]
		if !ok {
			acc = &accumulator{}
			buckets[id] = acc
			order = append(order, id)
		}
		acc.add(e)
	}

	out := make([]ProjectTotals, 0, len(order))
	for _, id := range order {
		acc := buckets[id]
		out = append(out, ProjectTotals{
			ProjectID: id,
			Income:    round2(acc.income),
			Expenses:  round2(acc.expenses),
			Profit:    round2(acc.income.Sub(acc.expenses)),
		})
	}
	return out
}
