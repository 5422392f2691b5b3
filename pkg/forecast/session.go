package forecast

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/codeGROOVE-dev/gymassist/pkg/forest"
	"github.com/codeGROOVE-dev/gymassist/pkg/model"
	"github.com/codeGROOVE-dev/gymassist/pkg/timeslot"
)

// GridRow is one (location, month, weekday, hour) point to predict.
type GridRow struct {
	LocationID int
	Month      int
	Weekday    int
	Hour       int
}

func (g GridRow) features() []float64 {
	return []float64{float64(g.LocationID), float64(g.Month), float64(g.Weekday), float64(g.Hour)}
}

// Prediction is a grid row with its predicted occupancy ratio. Ratio is an
// unconstrained regression output and may fall outside [0,1].
type Prediction struct {
	GridRow
	Ratio float64
}

// Session is a fitted occupancy model together with its hold-out metrics.
type Session struct {
	model       *forest.Forest
	Fingerprint string
	TrainedAt   time.Time

	TrainRows      int
	ValidationRows int
	// MAE and R2 are NaN when there was no validation split.
	MAE float64
	R2  float64
}

// Train fits a forest on samples after a seeded shuffle and hold-out split.
// The hold-out rows are only scored.
func Train(ctx context.Context, samples []model.OccupancySample, cfg forest.Config, testFraction float64) (*Session, error) {
	if len(samples) == 0 {
		return nil, forest.ErrNoData
	}

	X := make([][]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		if s.Capacity <= 0 {
			return nil, fmt.Errorf("sample %d for gym %d has capacity %d", i, s.LocationID, s.Capacity)
		}
		X[i] = GridRow{LocationID: s.LocationID, Month: s.Month, Weekday: s.Weekday, Hour: s.Hour}.features()
		y[i] = s.Ratio()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, 0))
	perm := rng.Perm(len(samples))

	nTest := int(math.Ceil(testFraction * float64(len(samples))))
	if nTest >= len(samples) {
		nTest = 0
	}

	trainX, trainY := pick(X, y, perm[nTest:])
	testX, testY := pick(X, y, perm[:nTest])

	f, err := forest.Fit(ctx, trainX, trainY, cfg)
	if err != nil {
		return nil, fmt.Errorf("fitting forest: %w", err)
	}

	s := &Session{
		model:          f,
		TrainRows:      len(trainX),
		ValidationRows: len(testX),
		MAE:            math.NaN(),
		R2:             math.NaN(),
	}
	if len(testX) > 0 {
		pred, err := f.PredictBatch(testX)
		if err != nil {
			return nil, fmt.Errorf("scoring validation rows: %w", err)
		}
		s.MAE = forest.MAE(pred, testY)
		s.R2 = forest.R2(pred, testY)
	}
	return s, nil
}

func pick(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	px := make([][]float64, len(idx))
	py := make([]float64, len(idx))
	for i, j := range idx {
		px[i] = X[j]
		py[i] = y[j]
	}
	return px, py
}

// Grid returns the 105 rows for a location, weekdays outer and hours inner.
// Every row carries the month seven days after target.
func Grid(locationID int, target time.Time) []GridRow {
	month := int(timeslot.AddDays(target, 7).Month())
	rows := make([]GridRow, 0, timeslot.DaysPerWeek*timeslot.HoursPerDay)
	for day := range timeslot.DaysPerWeek {
		for hour := timeslot.FirstHour; hour <= timeslot.LastHour; hour++ {
			rows = append(rows, GridRow{LocationID: locationID, Month: month, Weekday: day, Hour: hour})
		}
	}
	return rows
}

// Predict runs the model over grid rows.
func (s *Session) Predict(grid []GridRow) ([]Prediction, error) {
	X := make([][]float64, len(grid))
	for i, g := range grid {
		X[i] = g.features()
	}
	ratios, err := s.model.PredictBatch(X)
	if err != nil {
		return nil, err
	}
	out := make([]Prediction, len(grid))
	for i, g := range grid {
		if math.IsNaN(ratios[i]) || math.IsInf(ratios[i], 0) {
			return nil, fmt.Errorf("non-finite prediction for %+v", g)
		}
		out[i] = Prediction{GridRow: g, Ratio: ratios[i]}
	}
	return out, nil
}
