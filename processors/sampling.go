package processors

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/project8/morpho/config"
	"github.com/project8/morpho/models"
)

// newSource seeds the random source handed to the distuv distributions
func newSource(params map[string]any) (rand.Source, error) {
	if !config.Has(params, "seed") {
		now := uint64(time.Now().UnixNano())
		return rand.NewPCG(now, now>>1|1), nil
	}
	seed, err := config.Param(params, "seed", 0)
	if err != nil {
		return nil, err
	}
	return rand.NewPCG(uint64(seed), 0x6d6f7270686f), nil
}

// GaussianSamplingProcessor draws iter values from a normal distribution.
// Parameters:
//
//	iter: number of draws (default 2000)
//	mean, width: distribution parameters (default 0, 1)
//	seed: random seed (default from the clock)
//	variable: name of the sampled variable (default "x")
//
// Results: results = {variable: []float64}
type GaussianSamplingProcessor struct {
	Base
	iter     int
	mean     float64
	width    float64
	variable string
	src      rand.Source

	results map[string]any
}

func NewGaussianSampling(name string, logger *slog.Logger) models.Processor {
	return &GaussianSamplingProcessor{Base: newBase(name, logger)}
}

func (p *GaussianSamplingProcessor) Configure(params map[string]any) error {
	if err := p.configureBase(params); err != nil {
		return err
	}
	var err error
	if p.iter, err = config.Param(params, "iter", 2000); err != nil {
		return err
	}
	if p.iter < 0 {
		return models.ErrInvalidParameter("iter", p.iter, "non-negative integer")
	}
	if p.mean, err = config.Param(params, "mean", 0.0); err != nil {
		return err
	}
	if p.width, err = config.Param(params, "width", 1.0); err != nil {
		return err
	}
	if p.width < 0 {
		return models.ErrInvalidParameter("width", p.width, "non-negative number")
	}
	if p.variable, err = config.Param(params, "variable", "x"); err != nil {
		return err
	}
	p.src, err = newSource(params)
	p.results = nil
	return err
}

func (p *GaussianSamplingProcessor) Run(ctx context.Context) error {
	dist := distuv.Normal{Mu: p.mean, Sigma: p.width, Src: p.src}
	values := make([]float64, p.iter)
	for i := range values {
		values[i] = dist.Rand()
	}
	p.results = map[string]any{p.variable: values}
	p.logger.Debug("sampled gaussian", "iter", p.iter, "mean", p.mean, "width", p.width)
	return nil
}

func (p *GaussianSamplingProcessor) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{
		"results": func() (any, bool) { return p.results, p.results != nil },
	}
}

// prior is one entry of the priors list
type prior struct {
	name   string
	dist   string
	params []any
}

// PriorSamplingProcessor samples generator inputs from prior distributions.
// Parameters:
//
//	priors: list of {name, prior_dist, prior_params}; a string prior_param names a fixed input
//	fixed_inputs: inputs passed through unsampled (names already present are not resampled)
//	seed: random seed
//
// Supported distributions: uniform [low, high], normal [mean, sigma],
// loguniform [log10 low, log10 high], exponential [scale], lognormal [mu, sigma].
//
// Results: results = fixed_inputs plus one value per prior
type PriorSamplingProcessor struct {
	Base
	priors []prior
	fixed  map[string]any
	src    rand.Source

	results map[string]any
}

func NewPriorSampling(name string, logger *slog.Logger) models.Processor {
	return &PriorSamplingProcessor{Base: newBase(name, logger)}
}

var priorArity = map[string]int{
	"uniform":     2,
	"normal":      2,
	"loguniform":  2,
	"exponential": 1,
	"lognormal":   2,
}

func (p *PriorSamplingProcessor) Configure(params map[string]any) error {
	if err := p.configureBase(params); err != nil {
		return err
	}
	raw, err := config.Param(params, "priors", []any{})
	if err != nil {
		return err
	}
	if p.fixed, err = config.Param(params, "fixed_inputs", map[string]any{}); err != nil {
		return err
	}
	if p.fixed == nil {
		p.fixed = map[string]any{}
	}

	p.priors = p.priors[:0]
	for i, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			return models.ErrInvalidParameter(fmt.Sprintf("priors.%d", i), item, "mapping")
		}
		var pr prior
		if pr.name, err = config.ParamRequired[string](entry, "name"); err != nil {
			return fmt.Errorf("priors.%d: %w", i, err)
		}
		if pr.dist, err = config.ParamRequired[string](entry, "prior_dist"); err != nil {
			return fmt.Errorf("priors.%d: %w", i, err)
		}
		if pr.params, err = config.ParamRequired[[]any](entry, "prior_params"); err != nil {
			return fmt.Errorf("priors.%d: %w", i, err)
		}
		arity, known := priorArity[pr.dist]
		if !known {
			return fmt.Errorf("priors.%d: sampling for %s distribution is not implemented", i, pr.dist)
		}
		if len(pr.params) != arity {
			return models.ErrInvalidParameter(fmt.Sprintf("priors.%d.prior_params", i), pr.params, fmt.Sprintf("%d values", arity))
		}
		p.priors = append(p.priors, pr)
	}
	p.src, err = newSource(params)
	p.results = nil
	return err
}

func (p *PriorSamplingProcessor) Run(ctx context.Context) error {
	sampled := make(map[string]any, len(p.fixed)+len(p.priors))
	for k, v := range p.fixed {
		sampled[k] = v
	}
	for _, pr := range p.priors {
		if _, exists := sampled[pr.name]; exists {
			p.logger.Debug("already in sampled inputs; not resampled", "name", pr.name)
			continue
		}
		args := make([]float64, len(pr.params))
		for i, v := range pr.params {
			if ref, isRef := v.(string); isRef {
				fixed, ok := p.fixed[ref]
				if !ok {
					return fmt.Errorf("prior %s refers to unknown fixed input %q", pr.name, ref)
				}
				v = fixed
			}
			f, err := config.Param(map[string]any{"v": v}, "v", 0.0)
			if err != nil {
				return fmt.Errorf("prior %s: %w", pr.name, err)
			}
			args[i] = f
		}
		value := p.draw(pr.dist, args)
		sampled[pr.name] = value
		p.logger.Info("sampled value", "name", pr.name, "value", value)
	}
	p.results = sampled
	return nil
}

// draw samples one value; loguniform draws the exponent uniformly in base 10
func (p *PriorSamplingProcessor) draw(dist string, args []float64) float64 {
	switch dist {
	case "uniform":
		return distuv.Uniform{Min: args[0], Max: args[1], Src: p.src}.Rand()
	case "normal":
		return distuv.Normal{Mu: args[0], Sigma: args[1], Src: p.src}.Rand()
	case "loguniform":
		return math.Pow(10, distuv.Uniform{Min: args[0], Max: args[1], Src: p.src}.Rand())
	case "exponential":
		return distuv.Exponential{Rate: 1 / args[0], Src: p.src}.Rand()
	case "lognormal":
		return distuv.LogNormal{Mu: args[0], Sigma: args[1], Src: p.src}.Rand()
	}
	return math.NaN()
}

func (p *PriorSamplingProcessor) Outputs() map[string]models.OutputFunc {
	return map[string]models.OutputFunc{
		"results": func() (any, bool) { return p.results, p.results != nil },
	}
}
