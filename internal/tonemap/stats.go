package tonemap

import (
	"gonum.org/v1/gonum/stat"
)

// Statistics summarises the distribution of a Histogram.
type Statistics struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // population standard deviation
	Median int     `json:"median"`
	Mode   int     `json:"mode"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
}

// levelValues holds 0..255 as float64, the sample values for weighted
// statistics over a histogram.
var levelValues = func() []float64 {
	v := make([]float64, Levels)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// ComputeStatistics derives mean, standard deviation, median, mode, min and
// max from h.
//
// The median is the first level whose cumulative count reaches half of the
// total; the mode is the first level holding the largest count. An empty
// histogram yields zero mean, deviation, median and mode, with Min 0 and
// Max 255.
func ComputeStatistics(h Histogram) Statistics {
	s := Statistics{Min: 0, Max: Levels - 1}

	total := h.Total()
	if total == 0 {
		return s
	}

	weights := make([]float64, Levels)
	for i, n := range h {
		weights[i] = float64(n)
	}
	s.Mean, s.StdDev = stat.PopMeanStdDev(levelValues, weights)

	cum := 0
	for i, n := range h {
		cum += n
		if 2*cum >= total {
			s.Median = i
			break
		}
	}

	for i, n := range h {
		if n > h[s.Mode] {
			s.Mode = i
		}
	}

	for i := 0; i < Levels; i++ {
		if h[i] != 0 {
			s.Min = i
			break
		}
	}
	for i := Levels - 1; i >= 0; i-- {
		if h[i] != 0 {
			s.Max = i
			break
		}
	}
	return s
}
