package services

import (
	"math"
	"sort"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// ForecastEngine implements forecast.Engine with an ordinary least-squares
// line over units against period index. It holds no state.
type ForecastEngine struct{}

// NewForecastEngine creates a forecast engine
func NewForecastEngine() *ForecastEngine {
	return &ForecastEngine{}
}

// Forecast predicts the next period of the series
func (e *ForecastEngine) Forecast(series usage.Series) *forecast.Forecast {
	n := len(series)
	if n < forecast.MinPoints {
		return nil
	}

	units := series.Units()
	slope, intercept := fitLine(units)

	predictedUnits := math.Max(0, math.Round(slope*float64(n+1)+intercept))
	avgCost := averageCostPerUnit(series)
	predictedAmount := math.Max(0, math.Round(predictedUnits*avgCost))

	return &forecast.Forecast{
		PredictedUnits:    predictedUnits,
		PredictedAmount:   predictedAmount,
		GrowthRatePercent: growthRate(units),
		Trend:             classifyTrend(slope),
		Confidence:        gradeConfidence(n),
		AnomalyDetected:   detectAnomaly(units),
		AvgCostPerUnit:    round2(avgCost),
		Slope:             round2(slope),
		Intercept:         round2(intercept),
		ModelScore:        round2(rSquared(units, slope, intercept)),
		DataPoints:        n,
	}
}

// Analyze summarises the series. The trend is left empty below MinPoints.
func (e *ForecastEngine) Analyze(series usage.Series) *forecast.Analysis {
	n := len(series)
	if n == 0 {
		return nil
	}

	units := series.Units()
	var totalAmount float64
	for _, p := range series {
		totalAmount += p.Amount
	}
	mean, std := meanStd(units)
	minUnits, maxUnits := units[0], units[0]
	for _, u := range units[1:] {
		minUnits = math.Min(minUnits, u)
		maxUnits = math.Max(maxUnits, u)
	}

	a := &forecast.Analysis{
		Periods:           n,
		TotalUnits:        sum(units),
		TotalAmount:       totalAmount,
		AverageUnits:      round2(mean),
		AverageAmount:     round2(totalAmount / float64(n)),
		MinUnits:          minUnits,
		MaxUnits:          maxUnits,
		StdDeviation:      round2(std),
		AvgCostPerUnit:    round2(averageCostPerUnit(series)),
		GrowthRatePercent: growthRate(units),
		AnomalyDetected:   detectAnomaly(units),
	}
	if n >= forecast.MinPoints {
		slope, _ := fitLine(units)
		a.Trend = classifyTrend(slope)
	}
	return a
}

// ForecastBatch forecasts every series independently
func (e *ForecastEngine) ForecastBatch(batch map[string]usage.Series) forecast.BatchResult {
	result := forecast.BatchResult{
		Predictions: make(map[string]*forecast.Forecast, len(batch)),
		Errors:      make(map[string]string),
	}

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if f := e.Forecast(batch[k]); f != nil {
			result.Predictions[k] = f
			continue
		}
		result.Errors[k] = forecast.ErrInsufficientData.Error()
	}
	return result
}

// fitLine returns the least-squares slope and intercept of y against x = 1..n
func fitLine(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range y {
		x := float64(i + 1)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func classifyTrend(slope float64) forecast.Trend {
	switch {
	case slope > forecast.TrendBand:
		return forecast.TrendIncreasing
	case slope < -forecast.TrendBand:
		return forecast.TrendDecreasing
	default:
		return forecast.TrendStable
	}
}

func gradeConfidence(n int) forecast.Confidence {
	switch {
	case n >= forecast.HighConfidencePoints:
		return forecast.ConfidenceHigh
	case n >= forecast.MediumConfidencePoints:
		return forecast.ConfidenceMedium
	default:
		return forecast.ConfidenceLow
	}
}

// averageCostPerUnit skips zero-unit points; 0 when every point has zero units
func averageCostPerUnit(series usage.Series) float64 {
	var total float64
	var count int
	for _, p := range series {
		if p.Units <= 0 {
			continue
		}
		total += p.Amount / p.Units
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// growthRate is the first-to-last change in percent, 0 when the first value is 0
func growthRate(y []float64) float64 {
	if len(y) < 2 || y[0] == 0 {
		return 0
	}
	first, last := y[0], y[len(y)-1]
	return round2((last - first) / first * 100)
}

// detectAnomaly flags the last value when it is more than AnomalyDeviations
// population standard deviations from the mean
func detectAnomaly(y []float64) bool {
	if len(y) < forecast.MinPoints {
		return false
	}
	mean, std := meanStd(y)
	return math.Abs(y[len(y)-1]-mean) > forecast.AnomalyDeviations*std
}

// rSquared is the coefficient of determination of the fitted line. A flat
// series fitted exactly scores 1.
func rSquared(y []float64, slope, intercept float64) float64 {
	mean, _ := meanStd(y)
	var ssRes, ssTot float64
	for i, v := range y {
		predicted := slope*float64(i+1) + intercept
		ssRes += (v - predicted) * (v - predicted)
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func meanStd(y []float64) (mean, std float64) {
	if len(y) == 0 {
		return 0, 0
	}
	mean = sum(y) / float64(len(y))
	var variance float64
	for _, v := range y {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(y))
	return mean, math.Sqrt(variance)
}

func sum(y []float64) float64 {
	var total float64
	for _, v := range y {
		total += v
	}
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
