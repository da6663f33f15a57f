package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project8/morpho/models"
)

func TestGaussianSampling(t *testing.T) {
	p := NewGaussianSampling("gen", testLogger())
	runProcessor(t, p, map[string]any{
		"iter":     4000,
		"mean":     5,
		"width":    0.1,
		"seed":     1,
		"variable": "y",
	})

	results := output(t, p, "results").(map[string]any)
	values, ok := results["y"].([]float64)
	require.True(t, ok)
	require.Len(t, values, 4000)

	var sum float64
	for _, v := range values {
		sum += v
	}
	assert.InDelta(t, 5.0, sum/float64(len(values)), 0.02)
}

func TestGaussianSampling_Seeded(t *testing.T) {
	draw := func() []float64 {
		p := NewGaussianSampling("gen", testLogger())
		runProcessor(t, p, map[string]any{"iter": 10, "seed": 99})
		return output(t, p, "results").(map[string]any)["x"].([]float64)
	}
	assert.Equal(t, draw(), draw())
}

func TestGaussianSampling_Defaults(t *testing.T) {
	p := NewGaussianSampling("gen", testLogger())
	runProcessor(t, p, map[string]any{})

	values := output(t, p, "results").(map[string]any)["x"].([]float64)
	assert.Len(t, values, 2000)
}

func TestGaussianSampling_InvalidParameters(t *testing.T) {
	for name, params := range map[string]map[string]any{
		"negative iter":  {"iter": -1},
		"negative width": {"width": -0.5},
		"text mean":      {"mean": "zero"},
	} {
		t.Run(name, func(t *testing.T) {
			var invalid *models.InvalidParameterError
			require.ErrorAs(t, NewGaussianSampling("gen", testLogger()).Configure(params), &invalid)
		})
	}
}

func TestGaussianSampling_NoResultsBeforeRun(t *testing.T) {
	p := NewGaussianSampling("gen", testLogger())
	require.NoError(t, p.Configure(map[string]any{}))

	_, produced := p.Outputs()["results"]()
	assert.False(t, produced)
}

func TestPriorSampling(t *testing.T) {
	p := NewPriorSampling("priors", testLogger())
	runProcessor(t, p, map[string]any{
		"seed":         3,
		"fixed_inputs": map[string]any{"sigma": 0.5, "already": 1.0},
		"priors": []any{
			map[string]any{"name": "u", "prior_dist": "uniform", "prior_params": []any{2, 3}},
			map[string]any{"name": "n", "prior_dist": "normal", "prior_params": []any{10.0, "sigma"}},
			map[string]any{"name": "lu", "prior_dist": "loguniform", "prior_params": []any{0, 2}},
			map[string]any{"name": "e", "prior_dist": "exponential", "prior_params": []any{1.5}},
			map[string]any{"name": "ln", "prior_dist": "lognormal", "prior_params": []any{0, 0.1}},
			map[string]any{"name": "already", "prior_dist": "uniform", "prior_params": []any{5, 6}},
		},
	})

	results := output(t, p, "results").(map[string]any)
	assert.Equal(t, 0.5, results["sigma"])
	assert.Equal(t, 1.0, results["already"], "fixed inputs are not resampled")

	u := results["u"].(float64)
	assert.GreaterOrEqual(t, u, 2.0)
	assert.Less(t, u, 3.0)

	lu := results["lu"].(float64)
	assert.GreaterOrEqual(t, lu, 1.0)
	assert.Less(t, lu, 100.0)

	assert.Greater(t, results["e"].(float64), 0.0)
	assert.Greater(t, results["ln"].(float64), 0.0)
	assert.InDelta(t, 10.0, results["n"].(float64), 5.0)
}

func TestPriorSampling_InvalidPriors(t *testing.T) {
	tests := map[string][]any{
		"unknown distribution": {map[string]any{"name": "a", "prior_dist": "cauchy", "prior_params": []any{0, 1}}},
		"wrong arity":          {map[string]any{"name": "a", "prior_dist": "uniform", "prior_params": []any{0}}},
		"missing name":         {map[string]any{"prior_dist": "uniform", "prior_params": []any{0, 1}}},
		"not a mapping":        {"uniform"},
	}
	for name, priors := range tests {
		t.Run(name, func(t *testing.T) {
			p := NewPriorSampling("priors", testLogger())
			assert.Error(t, p.Configure(map[string]any{"priors": priors}))
		})
	}
}

func TestPriorSampling_UnknownFixedReference(t *testing.T) {
	p := NewPriorSampling("priors", testLogger())
	require.NoError(t, p.Configure(map[string]any{
		"priors": []any{
			map[string]any{"name": "n", "prior_dist": "normal", "prior_params": []any{0, "nowhere"}},
		},
	}))

	assert.ErrorContains(t, p.Run(t.Context()), "nowhere")
}
