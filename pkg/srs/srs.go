// Package srs implements the spaced-repetition schedule used for vocabulary review.
//
// A word's mastery level runs from 0 to MaxMastery. Each level maps to a review
// interval in days; a correct answer raises the level, an incorrect one lowers it.
// Dates are compared as UTC calendar days.
package srs

import "time"

// Intervals holds the review interval in days for each mastery level.
var Intervals = [...]int{1, 3, 7, 14, 30, 90}

// MaxMastery is the level at which a word is considered mastered and leaves the queue.
const MaxMastery = 5

// Clamp bounds m to [0, MaxMastery].
func Clamp(m int) int {
	if m < 0 {
		return 0
	}
	if m > MaxMastery {
		return MaxMastery
	}
	return m
}

// Apply returns the mastery level after an answer.
func Apply(mastery int, correct bool) int {
	m := Clamp(mastery)
	if correct {
		return Clamp(m + 1)
	}
	return Clamp(m - 1)
}

// IntervalDays returns the review interval for a mastery level.
func IntervalDays(mastery int) int {
	i := mastery
	if i < 0 {
		i = 0
	}
	if i >= len(Intervals) {
		i = len(Intervals) - 1
	}
	return Intervals[i]
}

// NextReview returns when a word at mastery, last reviewed at last, is next due.
func NextReview(mastery int, last time.Time) time.Time {
	return last.UTC().AddDate(0, 0, IntervalDays(mastery))
}

// Day truncates t to midnight of its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsDue reports whether a word scheduled for next is due on now's UTC date.
// Mastered words are never due.
func IsDue(next time.Time, mastery int, now time.Time) bool {
	if mastery >= MaxMastery {
		return false
	}
	return !Day(next).After(Day(now))
}
