// Package rule implements the declarative date and time rules that select
// when scheduled actions fire, together with the evaluator that tests a
// tick against them. Rules are stateless and re-evaluable; all calendar
// knowledge comes from the collaborator passed at evaluation time.
package rule

import (
	"time"

	"github.com/samber/lo"

	"github.com/quantforge/algotick/core"
)

// DateOf truncates an instant to its calendar date, preserving location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type everyDay struct{}

// EveryDay matches every calendar date.
func EveryDay() core.DateRule { return everyDay{} }

func (everyDay) Matches(_ time.Time, _ core.Calendar) (bool, error) {
	return true, nil
}

type weekdays struct {
	days []time.Weekday
}

// Weekdays matches dates falling on any of the given weekdays.
func Weekdays(days ...time.Weekday) core.DateRule {
	return weekdays{days: days}
}

// EveryWeekday matches Monday through Friday.
func EveryWeekday() core.DateRule {
	return Weekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
}

func (r weekdays) Matches(date time.Time, _ core.Calendar) (bool, error) {
	return lo.Contains(r.days, date.Weekday()), nil
}

type monthStart struct{}

// MonthStart matches the first trading day of each month.
func MonthStart() core.DateRule { return monthStart{} }

func (monthStart) Matches(date time.Time, cal core.Calendar) (bool, error) {
	trading, err := cal.IsTradingDay(date)
	if err != nil {
		return false, err
	}
	if !trading {
		return false, nil
	}

	// No earlier trading day may exist in the same month.
	for d := DateOf(date).AddDate(0, 0, -1); d.Month() == date.Month(); d = d.AddDate(0, 0, -1) {
		trading, err := cal.IsTradingDay(d)
		if err != nil {
			return false, err
		}
		if trading {
			return false, nil
		}
	}
	return true, nil
}

type monthEnd struct{}

// MonthEnd matches the last trading day of each month.
func MonthEnd() core.DateRule { return monthEnd{} }

func (monthEnd) Matches(date time.Time, cal core.Calendar) (bool, error) {
	trading, err := cal.IsTradingDay(date)
	if err != nil {
		return false, err
	}
	if !trading {
		return false, nil
	}

	for d := DateOf(date).AddDate(0, 0, 1); d.Month() == date.Month(); d = d.AddDate(0, 0, 1) {
		trading, err := cal.IsTradingDay(d)
		if err != nil {
			return false, err
		}
		if trading {
			return false, nil
		}
	}
	return true, nil
}

type onDates struct {
	dates []time.Time
}

// On matches only the given calendar dates.
func On(dates ...time.Time) core.DateRule {
	normalized := lo.Map(dates, func(d time.Time, _ int) time.Time {
		return DateOf(d)
	})
	return onDates{dates: normalized}
}

func (r onDates) Matches(date time.Time, _ core.Calendar) (bool, error) {
	date = DateOf(date)
	return lo.ContainsBy(r.dates, func(d time.Time) bool {
		return d.Equal(date)
	}), nil
}
