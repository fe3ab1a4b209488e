package vocabulary

import (
	"time"

	"github.com/japaniel/readlex/pkg/srs"
)

const (
	// LearnedMastery is the lowest mastery counted as learned.
	LearnedMastery = 3
	// streakWindow bounds how many days Streak walks back.
	streakWindow = 30
	weekDays     = 7
)

// ComputeStats derives stats from words and sessions as of now.
func ComputeStats(words []Word, sessions []Session, weeklyGoal int, now time.Time) Stats {
	st := Stats{TotalWords: len(words), WeeklyGoal: weeklyGoal}
	sum := 0
	for _, w := range words {
		sum += w.Mastery
		if w.Mastery >= LearnedMastery {
			st.Learned++
		}
		if w.Mastery >= 1 && w.Mastery < srs.MaxMastery {
			st.Reviewing++
		}
		if w.Mastery >= srs.MaxMastery {
			st.Mastered++
		}
		if w.IsDue(now) {
			st.Due++
		}
	}
	if len(words) > 0 {
		st.AverageMastery = float64(sum) / float64(len(words))
	}
	st.Streak = Streak(sessions, now)
	st.WeeklyProgress = WeeklyProgress(sessions, now)
	return st
}

// Streak counts consecutive UTC days with at least one session, walking back
// from today for at most 30 days. An empty today does not break the streak; any
// earlier empty day does.
func Streak(sessions []Session, now time.Time) int {
	days := make(map[time.Time]bool, len(sessions))
	for _, s := range sessions {
		days[srs.Day(s.CreatedAt)] = true
	}

	today := srs.Day(now)
	streak := 0
	for i := 0; i < streakWindow; i++ {
		if days[today.AddDate(0, 0, -i)] {
			streak++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}
	return streak
}

// WeeklyProgress counts answers given in sessions created during the last seven
// UTC days, today included.
func WeeklyProgress(sessions []Session, now time.Time) int {
	since := srs.Day(now).AddDate(0, 0, -(weekDays - 1))
	total := 0
	for _, s := range sessions {
		if srs.Day(s.CreatedAt).Before(since) {
			continue
		}
		total += len(s.Results)
	}
	return total
}
