package sync

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/couchproof/couchproof-backend/pkg/db/models"
	dbtypes "github.com/couchproof/couchproof-backend/pkg/db/types"
	"github.com/couchproof/couchproof-backend/pkg/strava"
	"github.com/google/uuid"
)

// MapActivity converts a provider summary into an activity row. This is the
// single mapping used by sync and the webhook paths; detail and stream fields
// are layered on by ApplyDetail and ApplyStreams.
func MapActivity(userID uuid.UUID, sa *strava.SummaryActivity) *models.Activity {
	row := &models.Activity{
		ID:             uuid.New(),
		UserID:         userID,
		Source:         models.ActivitySourceStrava,
		ExternalID:     strconv.FormatInt(sa.ID, 10),
		Name:           sa.Name,
		SportType:      sa.SportType,
		StartDate:      sa.StartDate.UTC(),
		StartDateLocal: sa.StartDateLocal,
		Timezone:       sa.Timezone,

		DistanceM:     sa.Distance,
		MovingTimeS:   sa.MovingTime,
		ElapsedTimeS:  sa.ElapsedTime,
		ElevationGain: sa.TotalElevationGain,

		AverageSpeed: nonZeroPtr(sa.AverageSpeed),
		MaxSpeed:     nonZeroPtr(sa.MaxSpeed),
		AverageHR:    sa.AverageHeartrate,
		MaxHR:        sa.MaxHeartrate,
		AverageWatts: sa.AverageWatts,
		MaxWatts:     sa.MaxWatts,
		SufferScore:  sa.SufferScore,

		KudosCount:       sa.KudosCount,
		CommentCount:     sa.CommentCount,
		AchievementCount: sa.AchievementCount,
		PRCount:          sa.PRCount,

		Trainer: sa.Trainer,
		Commute: sa.Commute,
		Manual:  sa.Manual,
	}

	if sa.GearID != "" {
		gearID := sa.GearID
		row.GearID = &gearID
	}
	if sa.Map.SummaryPolyline != "" {
		polyline := sa.Map.SummaryPolyline
		row.MapPolyline = &polyline
	}
	if len(sa.StartLatlng) == 2 {
		lat, lng := sa.StartLatlng[0], sa.StartLatlng[1]
		row.StartLat, row.StartLng = &lat, &lng
	}
	if len(sa.EndLatlng) == 2 {
		lat, lng := sa.EndLatlng[0], sa.EndLatlng[1]
		row.EndLat, row.EndLng = &lat, &lng
	}
	return row
}

// ApplyDetail layers the detail-endpoint fields onto a mapped row.
func ApplyDetail(row *models.Activity, d *strava.DetailedActivity) {
	row.Calories = d.Calories
	if len(d.Laps) > 0 {
		row.Laps = dbtypes.JSON(d.Laps)
	}
	if len(d.SplitsMetric) > 0 {
		row.SplitsMetric = dbtypes.JSON(d.SplitsMetric)
	}
	if len(d.SegmentEfforts) > 0 {
		row.SegmentEfforts = dbtypes.JSON(d.SegmentEfforts)
	}
}

// ApplyStreams stores the raw stream payload on the row.
func ApplyStreams(row *models.Activity, streams strava.StreamSet) {
	if len(streams) == 0 {
		return
	}
	encoded, err := json.Marshal(streams)
	if err != nil {
		return
	}
	row.Streams = dbtypes.JSON(encoded)
}

// MapAthleteStats converts the provider aggregate snapshot.
func MapAthleteStats(userID uuid.UUID, s *strava.AthleteStats) *models.AthleteStats {
	return &models.AthleteStats{
		ID:     uuid.New(),
		UserID: userID,

		RecentRideCount:    s.RecentRideTotals.Count,
		RecentRideDistance: s.RecentRideTotals.Distance,
		RecentRunCount:     s.RecentRunTotals.Count,
		RecentRunDistance:  s.RecentRunTotals.Distance,
		RecentSwimCount:    s.RecentSwimTotals.Count,
		RecentSwimDistance: s.RecentSwimTotals.Distance,

		YTDRideCount:    s.YTDRideTotals.Count,
		YTDRideDistance: s.YTDRideTotals.Distance,
		YTDRunCount:     s.YTDRunTotals.Count,
		YTDRunDistance:  s.YTDRunTotals.Distance,
		YTDSwimCount:    s.YTDSwimTotals.Count,
		YTDSwimDistance: s.YTDSwimTotals.Distance,

		AllRideCount:    s.AllRideTotals.Count,
		AllRideDistance: s.AllRideTotals.Distance,
		AllRunCount:     s.AllRunTotals.Count,
		AllRunDistance:  s.AllRunTotals.Distance,
		AllSwimCount:    s.AllSwimTotals.Count,
		AllSwimDistance: s.AllSwimTotals.Distance,

		BiggestRideDistance: s.BiggestRideDistance,
		BiggestClimb:        s.BiggestClimbElevGain,
	}
}

// MapGear converts a gear row. Strava ids are prefixed b for bikes and g for
// shoes; that prefix is the only type signal the endpoint gives.
func MapGear(userID uuid.UUID, g *strava.Gear) *models.Gear {
	gearType := "shoes"
	if strings.HasPrefix(g.ID, "b") {
		gearType = "bike"
	}
	return &models.Gear{
		ID:         uuid.New(),
		UserID:     userID,
		ExternalID: g.ID,
		Name:       g.Name,
		Type:       gearType,
		DistanceM:  g.Distance,
		Primary:    g.Primary,
		Retired:    g.Retired,
	}
}

func nonZeroPtr(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
