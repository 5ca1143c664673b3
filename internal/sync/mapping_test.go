package sync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	"github.com/couchproof/couchproof-backend/pkg/strava"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() strava.SummaryActivity {
	hr := 152.0
	sa := strava.SummaryActivity{
		ID:                 987654321,
		Name:               "Morning Run",
		SportType:          "Run",
		StartDate:          time.Date(2026, 5, 2, 6, 30, 0, 0, time.UTC),
		StartDateLocal:     time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC),
		Timezone:           "(GMT+01:00) Europe/Berlin",
		Distance:           10042.5,
		MovingTime:         2941,
		ElapsedTime:        3010,
		TotalElevationGain: 87,
		AverageSpeed:       3.41,
		AverageHeartrate:   &hr,
		KudosCount:         12,
		GearID:             "g1234",
		StartLatlng:        []float64{52.52, 13.405},
	}
	sa.Map.SummaryPolyline = "abc123"
	return sa
}

func TestMapActivity(t *testing.T) {
	userID := uuid.New()
	sa := sampleSummary()

	row := MapActivity(userID, &sa)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, models.ActivitySourceStrava, row.Source)
	assert.Equal(t, "987654321", row.ExternalID)
	assert.Equal(t, "Run", row.SportType)
	assert.Equal(t, 10042.5, row.DistanceM)
	assert.Equal(t, 2941, row.MovingTimeS)
	require.NotNil(t, row.AverageHR)
	assert.Equal(t, 152.0, *row.AverageHR)
	assert.Nil(t, row.MaxSpeed, "zero provider values map to null")
	require.NotNil(t, row.GearID)
	assert.Equal(t, "g1234", *row.GearID)
	require.NotNil(t, row.StartLat)
	assert.Equal(t, 52.52, *row.StartLat)
	require.NotNil(t, row.MapPolyline)
	assert.Equal(t, "abc123", *row.MapPolyline)
	assert.Nil(t, row.EndLat)
	assert.False(t, row.Complete())
}

func TestApplyDetailAndStreamsMakeRowComplete(t *testing.T) {
	sa := sampleSummary()
	row := MapActivity(uuid.New(), &sa)

	calories := 734.0
	detail := &strava.DetailedActivity{
		SummaryActivity: sa,
		Calories:        &calories,
		Laps:            json.RawMessage(`[{"lap_index":1}]`),
	}
	ApplyDetail(row, detail)
	ApplyStreams(row, strava.StreamSet{
		"heartrate": json.RawMessage(`{"data":[150,151]}`),
	})

	require.NotNil(t, row.Calories)
	assert.Equal(t, 734.0, *row.Calories)
	assert.NotEmpty(t, row.Laps)
	assert.NotEmpty(t, row.Streams)
	assert.True(t, row.Complete())
}

func TestMapGearTypeFromIDPrefix(t *testing.T) {
	userID := uuid.New()

	bike := MapGear(userID, &strava.Gear{ID: "b42", Name: "Canyon", Distance: 1200000, Primary: true})
	assert.Equal(t, "bike", bike.Type)
	assert.True(t, bike.Primary)

	shoes := MapGear(userID, &strava.Gear{ID: "g99", Name: "Pegasus", Distance: 400000})
	assert.Equal(t, "shoes", shoes.Type)
	assert.Equal(t, 400000.0, shoes.DistanceM)
}

func TestMapAthleteStats(t *testing.T) {
	userID := uuid.New()
	snapshot := &strava.AthleteStats{
		BiggestRideDistance:  160934,
		BiggestClimbElevGain: 1204,
		YTDRunTotals:         strava.ActivityTotals{Count: 42, Distance: 412345},
		AllRideTotals:        strava.ActivityTotals{Count: 310, Distance: 9876543},
	}

	row := MapAthleteStats(userID, snapshot)
	assert.Equal(t, userID, row.UserID)
	assert.Equal(t, 42, row.YTDRunCount)
	assert.Equal(t, 412345.0, row.YTDRunDistance)
	assert.Equal(t, 310, row.AllRideCount)
	assert.Equal(t, 160934.0, row.BiggestRideDistance)
	assert.Equal(t, 1204.0, row.BiggestClimb)
}
