// Package sizing estimates body measurements from height, weight and body type
// and matches them against per-category size charts.
package sizing

import (
	"fmt"
	"math"
	"strings"
)

type BodyType string

const (
	BodySlim     BodyType = "slim"
	BodyAverage  BodyType = "average"
	BodyAthletic BodyType = "athletic"
	BodyCurvy    BodyType = "curvy"
	BodyPlus     BodyType = "plus"
)

type Fit string

const (
	FitTight   Fit = "tight"
	FitRegular Fit = "regular"
	FitLoose   Fit = "loose"
)

const (
	neutralBMI    = 22.0
	maxMatchScore = 8
	maxConfidence = 95
)

type bodyProfile struct {
	bustAdjust  float64
	waistOffset float64
	hipsOffset  float64
}

var bodyProfiles = map[BodyType]bodyProfile{
	BodySlim:     {bustAdjust: -1, waistOffset: -7, hipsOffset: 1},
	BodyAverage:  {bustAdjust: 0, waistOffset: -6, hipsOffset: 2},
	BodyAthletic: {bustAdjust: 1, waistOffset: -8, hipsOffset: 1},
	BodyCurvy:    {bustAdjust: 1, waistOffset: -9, hipsOffset: 4},
	BodyPlus:     {bustAdjust: 2, waistOffset: -4, hipsOffset: 3},
}

// ParseBodyType reports whether raw names a known body type. Empty means average.
func ParseBodyType(raw string) (BodyType, bool) {
	b := BodyType(strings.ToLower(strings.TrimSpace(raw)))
	if b == "" {
		return BodyAverage, true
	}
	_, ok := bodyProfiles[b]
	return b, ok
}

// ParseFit reports whether raw names a known fit. Empty means regular.
func ParseFit(raw string) (Fit, bool) {
	switch f := Fit(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FitRegular, true
	case FitTight, FitRegular, FitLoose:
		return f, true
	default:
		return f, false
	}
}

// Measurements are the shopper's inputs.
type Measurements struct {
	HeightCm float64  `json:"heightCm"`
	WeightKg float64  `json:"weightKg"`
	BodyType BodyType `json:"bodyType"`
	Fit      Fit      `json:"fitPreference"`
}

// Estimate holds derived body measurements in inches.
type Estimate struct {
	Bust  float64 `json:"bust"`
	Waist float64 `json:"waist"`
	Hips  float64 `json:"hips"`
}

type Recommendation struct {
	RecommendedSize string   `json:"recommendedSize"`
	Alternatives    []string `json:"alternatives"`
	Confidence      int      `json:"confidence"`
	Reason          string   `json:"reason"`
	BMI             float64  `json:"bmi"`
	Estimated       Estimate `json:"estimated"`
	Chart           Group    `json:"chart"`
}

// BMI returns weight over height squared, or a neutral value when either input
// is not positive.
func BMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 || weightKg <= 0 || math.IsNaN(heightCm) || math.IsNaN(weightKg) {
		return neutralBMI
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

func bustForBMI(bmi float64) float64 {
	switch {
	case bmi < 18.5:
		return 31
	case bmi < 20:
		return 32.5
	case bmi < 23:
		return 34
	case bmi < 25:
		return 36
	case bmi < 27.5:
		return 38
	case bmi < 30:
		return 40
	default:
		return 42
	}
}

// EstimateBody derives bust, waist and hips from BMI and body type.
func EstimateBody(bmi float64, body BodyType) Estimate {
	profile, ok := bodyProfiles[body]
	if !ok {
		profile = bodyProfiles[BodyAverage]
	}
	bust := bustForBMI(bmi) + profile.bustAdjust
	return Estimate{
		Bust:  bust,
		Waist: bust + profile.waistOffset,
		Hips:  bust + profile.hipsOffset,
	}
}

// Recommend picks a size from the chart of category. The result always names
// a size in that chart and confidence stays within 0..95.
func Recommend(m Measurements, category string) Recommendation {
	chart := ChartFor(category)
	bmi := BMI(m.HeightCm, m.WeightKg)
	est := EstimateBody(bmi, m.BodyType)

	best, bestScore := 0, -1
	for i, band := range chart.Bands {
		if s := matchScore(band, est); s > bestScore {
			best, bestScore = i, s
		}
	}
	if bestScore == 0 {
		best = nearestBand(chart.Bands, est)
	}
	matched := best

	switch m.Fit {
	case FitTight:
		best = max(0, best-1)
	case FitLoose:
		best = min(len(chart.Bands)-1, best+1)
	}

	confidence := int(math.Round(float64(bestScore) / maxMatchScore * 100))
	confidence = min(confidence, maxConfidence)

	return Recommendation{
		RecommendedSize: chart.Bands[best].Size,
		Alternatives:    neighbours(chart.Bands, best),
		Confidence:      confidence,
		Reason:          reason(chart, est, matched, best, bestScore, m.Fit),
		BMI:             math.Round(bmi*10) / 10,
		Estimated:       est,
		Chart:           chart.Group,
	}
}

func matchScore(b Band, est Estimate) int {
	score := 0
	if b.Bust.contains(est.Bust) {
		score += 3
	}
	if b.Waist.contains(est.Waist) {
		score += 3
	}
	if b.Hips.contains(est.Hips) {
		score += 2
	}
	return score
}

func nearestBand(bands []Band, est Estimate) int {
	best, bestDist := 0, math.Inf(1)
	for i, b := range bands {
		d := math.Abs(b.Bust.mid()-est.Bust) + math.Abs(b.Waist.mid()-est.Waist) + math.Abs(b.Hips.mid()-est.Hips)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func neighbours(bands []Band, i int) []string {
	out := make([]string, 0, 2)
	if i > 0 {
		out = append(out, bands[i-1].Size)
	}
	if i < len(bands)-1 {
		out = append(out, bands[i+1].Size)
	}
	return out
}

func reason(chart Chart, est Estimate, matched, final, score int, fit Fit) string {
	var b strings.Builder
	if score == 0 {
		fmt.Fprintf(&b, "No %s size matches an estimated %.1f\" bust, %.1f\" waist and %.1f\" hips; %s is the closest.",
			chart.Group, est.Bust, est.Waist, est.Hips, chart.Bands[matched].Size)
	} else {
		fmt.Fprintf(&b, "An estimated %.1f\" bust, %.1f\" waist and %.1f\" hips fits %s on the %s chart.",
			est.Bust, est.Waist, est.Hips, chart.Bands[matched].Size, chart.Group)
	}
	if final != matched {
		fmt.Fprintf(&b, " Adjusted to %s for a %s fit.", chart.Bands[final].Size, fit)
	}
	return b.String()
}
