package processors

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	gfloats "gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// Histogram bins one variable of the connected data.
// Parameters:
//
//	variables (required): name of the variable to bin
//	n_bins_x: number of bins (default 100)
//	range: [min, max]; an empty or inverted range is taken from the data
//
// Bins include their lower edge and exclude their upper edge, so a value equal
// to max counts as overflow. NaN values are ignored.
//
// Input: data
// Results: results = {variable, edges, counts ([]float64), underflow, overflow}
type Histogram struct {
	Base
	variable string
	nBins    int
	xMin     float64
	xMax     float64

	data    map[string]any
	results map[string]any
}

func NewHistogram(name string, logger *slog.Logger) models.Processor {
	return &Histogram{Base: newBase(name, logger)}
}

func (h *Histogram) Configure(params map[string]any) error {
	if err := h.configureBase(params); err != nil {
		return err
	}
	var err error
	if h.variable, err = config.ParamRequired[string](params, "variables"); err != nil {
		return err
	}
	if h.nBins, err = config.Param(params, "n_bins_x", 100); err != nil {
		return err
	}
	if h.nBins <= 0 {
		return models.ErrInvalidParameter("n_bins_x", h.nBins, "positive integer")
	}
	bounds, err := config.Param(params, "range", []float64{0, -1})
	if err != nil {
		return err
	}
	if len(bounds) != 2 {
		return models.ErrInvalidParameter("range", bounds, "[min, max]")
	}
	h.xMin, h.xMax = bounds[0], bounds[1]
	h.results = nil
	return nil
}

func (h *Histogram) Run(ctx context.Context) error {
	raw, ok := h.data[h.variable]
	if !ok {
		return fmt.Errorf("variable %s not found in data", h.variable)
	}
	values, err := floats(raw)
	if err != nil {
		return fmt.Errorf("variable %s: %w", h.variable, err)
	}

	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)

	lo, hi := h.xMin, h.xMax
	if lo >= hi {
		lo, hi = dataRange(sorted)
		h.logger.Debug("range taken from data", "min", lo, "max", hi)
	}
	edges := gfloats.Span(make([]float64, h.nBins+1), lo, hi)
	edges[h.nBins] = hi

	// bins are [low, high); values on the upper edge are overflow
	first := sort.SearchFloat64s(sorted, lo)
	last := sort.SearchFloat64s(sorted, hi)
	counts := stat.Histogram(nil, edges, sorted[first:last], nil)

	h.results = map[string]any{
		"variable":  h.variable,
		"edges":     edges,
		"counts":    counts,
		"underflow": first,
		"overflow":  len(sorted) - last,
	}
	return nil
}

// dataRange spans the finite values of sorted. The upper edge is moved one
// ulp past the maximum so the largest value lands in the last bin.
func dataRange(sorted []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range sorted {
		if math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	switch {
	case lo > hi:
		return 0, 1
	case lo == hi:
		return lo, lo + 1
	}
	return lo, math.Nextafter(hi, math.Inf(1))
}

func (h *Histogram) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{
		"results": func() (any, bool) { return h.results, h.results != nil },
	}
}

func (h *Histogram) Inputs() map[string]models.InputFunc {
	return map[string]models.InputFunc{
		"data": func(value any) error {
			data, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("data must be a mapping, got %T", value)
			}
			h.data = data
			return nil
		},
	}
}
