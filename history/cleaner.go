package history

import (
	"errors"
	"math"
	"sort"
)

// samples at or below this value carry no usable signal
const noSignalEpsilon = 0.001

// group outliers are probed widest window first; the first match wins
var groupWindowSizes = []int{5, 4, 3, 2}

var errInvalidCleanerArgs = errors.New("all cleaner coefficients must be positive")

// ArgsSeriesCleaner is the DTO used to create a new series cleaner
type ArgsSeriesCleaner struct {
	ThresholdMultiplier float64
	CoefMin             float64
	CoefThresh          float64
	FallbackMin         float64
	FallbackThresh      float64
	MaxPasses           int
}

// seriesCleaner removes transient measurement artifacts (dips, single spikes and group
// outliers) from the persisted series, repeating full passes until a pass makes no
// correction
type seriesCleaner struct {
	thresholdMultiplier float64
	coefMin             float64
	coefThresh          float64
	fallbackMin         float64
	fallbackThresh      float64
	maxPasses           int
}

// NewSeriesCleaner creates a new series cleaner
func NewSeriesCleaner(args ArgsSeriesCleaner) (*seriesCleaner, error) {
	allPositive := args.ThresholdMultiplier > 0 &&
		args.CoefMin > 0 &&
		args.CoefThresh > 0 &&
		args.FallbackMin > 0 &&
		args.FallbackThresh > 0 &&
		args.MaxPasses > 0
	if !allPositive {
		return nil, errInvalidCleanerArgs
	}

	return &seriesCleaner{
		thresholdMultiplier: args.ThresholdMultiplier,
		coefMin:             args.CoefMin,
		coefThresh:          args.CoefThresh,
		fallbackMin:         args.FallbackMin,
		fallbackThresh:      args.FallbackThresh,
		maxPasses:           args.MaxPasses,
	}, nil
}

// Thresholds derives the (minAbsoluteValue, globalThreshold) pair shared by all series
// cleaned in one run, from the positive samples of the entire document
func (sc *seriesCleaner) Thresholds(doc *Document) (float64, float64) {
	values := make([]float64, 0, 256)
	for _, item := range doc.Items {
		for _, seq := range item {
			for _, val := range seq {
				if val > noSignalEpsilon {
					values = append(values, val)
				}
			}
		}
	}

	if len(values) == 0 {
		return sc.fallbackMin, sc.fallbackThresh
	}

	medianVal := median(values)
	return medianVal * sc.coefMin, medianVal * sc.coefThresh
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}

	return (sorted[mid-1] + sorted[mid]) / 2
}

// CleanSeries smooths one series to its fixed point, operating on a copy. It returns
// the cleaned series and the total number of corrected samples; a series with no
// anomalies comes back unchanged with zero fixes.
func (sc *seriesCleaner) CleanSeries(series []float64, minAbsVal float64, globalThresh float64) ([]float64, int) {
	cleaned := append([]float64(nil), series...)

	totalFixes := 0
	// bounded re-run instead of open recursion; the cap is unreachable on real data
	for pass := 0; pass < sc.maxPasses; pass++ {
		fixes := sc.cleanPass(cleaned, minAbsVal, globalThresh)
		totalFixes += fixes
		if fixes == 0 {
			break
		}
	}

	return cleaned, totalFixes
}

func (sc *seriesCleaner) cleanPass(cleaned []float64, minAbsVal float64, globalThresh float64) int {
	n := len(cleaned)
	fixes := 0
	i := 1

	for i < n-1 {
		prevVal := cleaned[i-1]
		currVal := cleaned[i]

		// dips below the minimum plausible value are bridged from the neighbors
		if currVal < minAbsVal {
			avg := (prevVal + cleaned[i+1]) / 2
			if avg < minAbsVal {
				avg = minAbsVal * 1.1
			}
			cleaned[i] = round4(avg)
			fixes++
			i++
			continue
		}

		// no usable left baseline, nothing to anchor the tests on
		if prevVal <= noSignalEpsilon {
			i++
			continue
		}

		size := sc.fixGroupOutlier(cleaned, i, globalThresh)
		if size > 0 {
			fixes += size
			i += size
			continue
		}

		nextVal := cleaned[i+1]
		if nextVal > noSignalEpsilon {
			expected := (prevVal + nextVal) / 2
			isSpike := currVal > expected*sc.thresholdMultiplier && currVal > globalThresh
			if isSpike {
				cleaned[i] = round4(expected)
				fixes++
			}
		}

		i++
	}

	return fixes
}

// fixGroupOutlier checks whether a full window starting at i sits above the linear
// interpolation between its neighbors; every sample of the window must exceed both the
// interpolated baseline scaled by the multiplier and the global threshold. On a match
// the window is overwritten with the interpolation and its size is returned.
func (sc *seriesCleaner) fixGroupOutlier(cleaned []float64, i int, globalThresh float64) int {
	n := len(cleaned)
	prevVal := cleaned[i-1]

	for _, size := range groupWindowSizes {
		if i >= n-size {
			continue
		}

		step := (cleaned[i+size] - prevVal) / float64(size+1)
		expected := make([]float64, size)
		isOutlier := true
		for k := 0; k < size; k++ {
			expected[k] = prevVal + step*float64(k+1)
			checkVal := cleaned[i+k]
			exceeds := checkVal > expected[k]*sc.thresholdMultiplier && checkVal > globalThresh
			if !exceeds {
				isOutlier = false
				break
			}
		}
		if !isOutlier {
			continue
		}

		for k := 0; k < size; k++ {
			cleaned[i+k] = round4(expected[k])
		}

		return size
	}

	return 0
}

// CleanHistory derives the thresholds once from the whole document, then cleans every
// metric sequence of every entity, replacing in place those that changed. It returns
// the total number of corrected samples.
func (sc *seriesCleaner) CleanHistory(doc *Document) int {
	minAbsVal, globalThresh := sc.Thresholds(doc)

	totalFixes := 0
	for name, item := range doc.Items {
		for metric, seq := range item {
			cleanedSeq, count := sc.CleanSeries(seq, minAbsVal, globalThresh)
			if count > 0 {
				doc.Items[name][metric] = cleanedSeq
				totalFixes += count
			}
		}
	}

	if totalFixes > 0 {
		log.Debug("spike cleaner corrected anomalous samples", "fixes", totalFixes)
	}

	return totalFixes
}

func round4(val float64) float64 {
	return math.Round(val*10000) / 10000
}

// IsInterfaceNil returns true if the value under the interface is nil
func (sc *seriesCleaner) IsInterfaceNil() bool {
	return sc == nil
}
