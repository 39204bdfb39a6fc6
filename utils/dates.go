package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

// NextOccurrence returns the next day on or after from that falls on date's
// month and day. February 29 falls on March 1 in common years.
func NextOccurrence(date, from time.Time) time.Time {
	from = BeginningOfDay(from)
	next := time.Date(from.Year(), date.Month(), date.Day(), 0, 0, 0, 0, from.Location())
	if next.Before(from) {
		next = time.Date(from.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, from.Location())
	}
	return next
}

// WithinDays reports whether the yearly recurrence of date is at most days
// days after from.
func WithinDays(date, from time.Time, days int) bool {
	return DaysBetween(from, NextOccurrence(date, from)) <= days
}
