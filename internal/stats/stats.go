package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
)

// Totals accumulates the additive fields of a set of activities.
type Totals struct {
	Count         int     `json:"count"`
	DistanceM     float64 `json:"distance_m"`
	MovingTimeS   int     `json:"moving_time_s"`
	ElevationGain float64 `json:"elevation_gain"`
	Calories      float64 `json:"calories"`
	KudosCount    int     `json:"kudos_count"`
}

func (t *Totals) add(a *models.Activity) {
	t.Count++
	t.DistanceM += a.DistanceM
	t.MovingTimeS += a.MovingTimeS
	t.ElevationGain += a.ElevationGain
	if a.Calories != nil {
		t.Calories += *a.Calories
	}
	t.KudosCount += a.KudosCount
}

// Window is the totals for a rolling period plus the distance change versus
// the prior equivalent period. PercentChange is nil when the prior period had
// no distance.
type Window struct {
	Totals
	PercentChange *float64 `json:"percent_change,omitempty"`
}

// Traits are the 0-100 personality scores derived from activity patterns.
type Traits struct {
	EarlyBird      int `json:"early_bird"`
	NightOwl       int `json:"night_owl"`
	WeekendWarrior int `json:"weekend_warrior"`
	Consistency    int `json:"consistency"`
	Explorer       int `json:"explorer"`
	Social         int `json:"social"`
	Masochist      int `json:"masochist"`
}

// Summary is the full aggregation output for one user.
type Summary struct {
	Totals  Totals            `json:"totals"`
	BySport map[string]Totals `json:"by_sport"`

	Week  Window `json:"week"`
	Month Window `json:"month"`
	YTD   Window `json:"ytd"`

	WeekdayHistogram [7]int  `json:"weekday_histogram"`
	HourHistogram    [24]int `json:"hour_histogram"`

	CurrentStreakDays int `json:"current_streak_days"`
	LongestStreakDays int `json:"longest_streak_days"`

	// BiggestActivityM is the longest single activity by distance.
	BiggestActivityM float64 `json:"biggest_activity_m"`

	Traits Traits `json:"traits"`
}

// Compute aggregates the given activities as of now. Pure: no IO, no clock
// reads besides the passed reference time.
func Compute(activities []models.Activity, now time.Time) Summary {
	s := Summary{BySport: map[string]Totals{}}
	now = now.UTC()

	days := map[string]struct{}{}
	for i := range activities {
		a := &activities[i]
		s.Totals.add(a)

		sport := s.BySport[a.SportType]
		sport.add(a)
		s.BySport[a.SportType] = sport

		local := a.StartDateLocal
		s.WeekdayHistogram[int(local.Weekday())]++
		s.HourHistogram[local.Hour()]++

		days[a.StartDate.UTC().Format("2006-01-02")] = struct{}{}

		if a.DistanceM > s.BiggestActivityM {
			s.BiggestActivityM = a.DistanceM
		}
	}

	s.Week = window(activities, now.AddDate(0, 0, -7), now, now.AddDate(0, 0, -14))
	s.Month = window(activities, now.AddDate(0, 0, -30), now, now.AddDate(0, 0, -60))
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	s.YTD = window(activities, yearStart, now, yearStart.AddDate(-1, 0, 0))

	s.CurrentStreakDays = currentStreak(days, now)
	s.LongestStreakDays = longestStreak(days)
	s.Traits = computeTraits(activities, days)

	return s
}

// window sums activities with start date in (from, to] and derives the
// distance change against the window of the same length ending at from.
func window(activities []models.Activity, from, to, priorFrom time.Time) Window {
	var w Window
	var prior Totals
	for i := range activities {
		a := &activities[i]
		start := a.StartDate.UTC()
		switch {
		case start.After(from) && !start.After(to):
			w.add(a)
		case start.After(priorFrom) && !start.After(from):
			prior.add(a)
		}
	}
	if prior.DistanceM > 0 {
		change := (w.DistanceM - prior.DistanceM) / prior.DistanceM * 100
		w.PercentChange = &change
	}
	return w
}

// currentStreak counts consecutive active UTC days ending today, with a
// one-day grace: a streak ending yesterday is still considered current.
func currentStreak(days map[string]struct{}, now time.Time) int {
	day := now.UTC().Truncate(24 * time.Hour)
	if _, ok := days[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// longestStreak finds the longest run of consecutive active days anywhere in
// the set.
func longestStreak(days map[string]struct{}) int {
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(days))
	for key := range days {
		day, err := time.Parse("2006-01-02", key)
		if err != nil {
			continue
		}
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, run := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func computeTraits(activities []models.Activity, days map[string]struct{}) Traits {
	total := len(activities)
	if total == 0 {
		return Traits{}
	}

	var early, night, weekend, located int
	var kudos, suffer, elevation float64
	areas := map[string]struct{}{}
	var first, last time.Time

	for i := range activities {
		a := &activities[i]
		local := a.StartDateLocal
		if local.Hour() < 8 {
			early++
		}
		if local.Hour() >= 20 {
			night++
		}
		if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
		if a.StartLat != nil && a.StartLng != nil {
			located++
			areas[fmt.Sprintf("%.2f,%.2f", *a.StartLat, *a.StartLng)] = struct{}{}
		}
		kudos += float64(a.KudosCount)
		if a.SufferScore != nil {
			suffer += *a.SufferScore
		}
		elevation += a.ElevationGain

		start := a.StartDate.UTC()
		if first.IsZero() || start.Before(first) {
			first = start
		}
		if start.After(last) {
			last = start
		}
	}

	spanDays := int(last.Truncate(24*time.Hour).Sub(first.Truncate(24*time.Hour))/(24*time.Hour)) + 1
	consistency := float64(len(days)) / float64(spanDays) * 100

	explorer := 0.0
	if located > 0 {
		explorer = float64(len(areas)) / float64(located) * 100
	}

	avgKudos := kudos / float64(total)
	avgSuffer := suffer / float64(total)
	avgElevation := elevation / float64(total)

	return Traits{
		EarlyBird:      clampScore(float64(early) / float64(total) * 100),
		NightOwl:       clampScore(float64(night) / float64(total) * 100),
		WeekendWarrior: clampScore(float64(weekend) / float64(total) * 100),
		Consistency:    clampScore(consistency),
		Explorer:       clampScore(explorer),
		Social:         clampScore(avgKudos * 10),
		Masochist:      clampScore(avgSuffer/150*50 + avgElevation/1000*50),
	}
}

func clampScore(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
