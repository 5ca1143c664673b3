package stats

import (
	"testing"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activityAt(start time.Time, distance float64) models.Activity {
	return models.Activity{
		SportType:      "Run",
		StartDate:      start,
		StartDateLocal: start,
		DistanceM:      distance,
		MovingTimeS:    int(distance / 3),
	}
}

func TestComputeEmptyInput(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	s := Compute(nil, now)

	assert.Equal(t, 0, s.Totals.Count)
	assert.Zero(t, s.Totals.DistanceM)
	assert.Equal(t, 0, s.CurrentStreakDays)
	assert.Equal(t, 0, s.LongestStreakDays)
	assert.Equal(t, Traits{}, s.Traits)
	assert.Nil(t, s.Week.PercentChange)
}

func TestTotalDistanceIsExactSum(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.AddDate(0, 0, -1), 5000.5),
		activityAt(now.AddDate(0, 0, -2), 10000.25),
		activityAt(now.AddDate(0, 0, -3), 21097.5),
	}

	s := Compute(rows, now)
	assert.Equal(t, 3, s.Totals.Count)
	assert.Equal(t, 5000.5+10000.25+21097.5, s.Totals.DistanceM)
}

func TestWorkedExample(t *testing.T) {
	// 5000m today plus 10000m yesterday: total 15000, streak 2, weekly 15000.
	now := time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.Add(-2*time.Hour), 5000),
		activityAt(now.AddDate(0, 0, -1), 10000),
	}

	s := Compute(rows, now)
	assert.Equal(t, float64(15000), s.Totals.DistanceM)
	assert.Equal(t, 2, s.CurrentStreakDays)
	assert.Equal(t, float64(15000), s.Week.DistanceM)
}

func TestCurrentStreakThreeDays(t *testing.T) {
	// Activity on D, D-1 and D-2 but not D-3 yields a streak of exactly 3.
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.Add(-time.Hour), 5000),
		activityAt(now.AddDate(0, 0, -1), 5000),
		activityAt(now.AddDate(0, 0, -2), 5000),
		activityAt(now.AddDate(0, 0, -5), 5000),
	}

	s := Compute(rows, now)
	assert.Equal(t, 3, s.CurrentStreakDays)
}

func TestCurrentStreakOneDayGrace(t *testing.T) {
	// Nothing today, but yesterday and the day before count as a live streak.
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.AddDate(0, 0, -1), 5000),
		activityAt(now.AddDate(0, 0, -2), 5000),
	}

	s := Compute(rows, now)
	assert.Equal(t, 2, s.CurrentStreakDays)

	// A two-day gap breaks it.
	rows = []models.Activity{
		activityAt(now.AddDate(0, 0, -2), 5000),
		activityAt(now.AddDate(0, 0, -3), 5000),
	}
	s = Compute(rows, now)
	assert.Equal(t, 0, s.CurrentStreakDays)
}

func TestLongestStreakSpansHistory(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.AddDate(0, 0, -30), 5000),
		activityAt(now.AddDate(0, 0, -29), 5000),
		activityAt(now.AddDate(0, 0, -28), 5000),
		activityAt(now.AddDate(0, 0, -27), 5000),
		activityAt(now.AddDate(0, 0, -10), 5000),
	}

	s := Compute(rows, now)
	assert.Equal(t, 4, s.LongestStreakDays)
	assert.Equal(t, 0, s.CurrentStreakDays)
}

func TestMultipleActivitiesSameDayCountOnceForStreak(t *testing.T) {
	now := time.Date(2026, 6, 15, 20, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.Add(-time.Hour), 5000),
		activityAt(now.Add(-8*time.Hour), 3000),
		activityAt(now.AddDate(0, 0, -1), 5000),
	}

	s := Compute(rows, now)
	assert.Equal(t, 2, s.CurrentStreakDays)
}

func TestWindowPercentChange(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(now.AddDate(0, 0, -2), 12000),
		activityAt(now.AddDate(0, 0, -10), 10000),
	}

	s := Compute(rows, now)
	require.NotNil(t, s.Week.PercentChange)
	assert.InDelta(t, 20.0, *s.Week.PercentChange, 0.0001)

	// No prior-window distance means no percent change.
	rows = rows[:1]
	s = Compute(rows, now)
	assert.Nil(t, s.Week.PercentChange)
}

func TestHistograms(t *testing.T) {
	// A Monday 07:30 run and a Saturday 21:00 ride.
	monday := time.Date(2026, 6, 8, 7, 30, 0, 0, time.UTC)
	saturday := time.Date(2026, 6, 13, 21, 0, 0, 0, time.UTC)
	rows := []models.Activity{
		activityAt(monday, 5000),
		activityAt(saturday, 20000),
	}

	s := Compute(rows, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, s.WeekdayHistogram[int(time.Monday)])
	assert.Equal(t, 1, s.WeekdayHistogram[int(time.Saturday)])
	assert.Equal(t, 1, s.HourHistogram[7])
	assert.Equal(t, 1, s.HourHistogram[21])
}

func TestBySportBreakdown(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	run := activityAt(now.AddDate(0, 0, -1), 5000)
	ride := activityAt(now.AddDate(0, 0, -2), 30000)
	ride.SportType = "Ride"

	s := Compute([]models.Activity{run, ride}, now)
	assert.Equal(t, float64(5000), s.BySport["Run"].DistanceM)
	assert.Equal(t, float64(30000), s.BySport["Ride"].DistanceM)
	assert.Equal(t, 1, s.BySport["Run"].Count)
}

func TestTraitScoresClamped(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	// Every activity before 08:00 with brutal suffer scores and climbing.
	var rows []models.Activity
	for i := 0; i < 5; i++ {
		a := activityAt(time.Date(2026, 6, 10-i, 6, 0, 0, 0, time.UTC), 10000)
		suffer := 400.0
		a.SufferScore = &suffer
		a.ElevationGain = 3000
		a.KudosCount = 50
		rows = append(rows, a)
	}

	s := Compute(rows, now)
	assert.Equal(t, 100, s.Traits.EarlyBird)
	assert.Equal(t, 0, s.Traits.NightOwl)
	assert.Equal(t, 100, s.Traits.Masochist, "score never exceeds 100")
	assert.Equal(t, 100, s.Traits.Social)
	assert.Equal(t, 100, s.Traits.Consistency)
}

func TestExplorerCountsDistinctStartAreas(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	lat1, lng1 := 51.5074, -0.1278
	lat2, lng2 := 48.8566, 2.3522

	a := activityAt(now.AddDate(0, 0, -1), 5000)
	a.StartLat, a.StartLng = &lat1, &lng1
	b := activityAt(now.AddDate(0, 0, -2), 5000)
	b.StartLat, b.StartLng = &lat1, &lng1
	c := activityAt(now.AddDate(0, 0, -3), 5000)
	c.StartLat, c.StartLng = &lat2, &lng2

	s := Compute([]models.Activity{a, b, c}, now)
	assert.Equal(t, 67, s.Traits.Explorer)
}
