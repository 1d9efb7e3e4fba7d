package sampler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
)

// ErrInvalidDistribution reports bad distribution parameters.
var ErrInvalidDistribution = errors.New("invalid distribution")

// Normal is a Gaussian with mean Mu and standard deviation Sigma.
type Normal struct {
	Mu    float64
	Sigma float64
}

func (d Normal) Sample(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Mu + d.Sigma*rng.NormFloat64()
	}
	return out
}

func (d Normal) Validate() error {
	if !finite(d.Mu) || !finite(d.Sigma) || d.Sigma <= 0 {
		return fmt.Errorf("%w: normal needs finite mu and sigma > 0, got mu=%g sigma=%g", ErrInvalidDistribution, d.Mu, d.Sigma)
	}
	return nil
}

func (d Normal) String() string {
	return fmt.Sprintf("Normal(mu=%s, sigma=%s)", num(d.Mu), num(d.Sigma))
}

// DiscreteUniform draws integers from [Lower, Upper] inclusive.
type DiscreteUniform struct {
	Lower int
	Upper int
}

func (d DiscreteUniform) Sample(rng *rand.Rand, n int) []float64 {
	span := d.Upper - d.Lower + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(d.Lower + rng.IntN(span))
	}
	return out
}

func (d DiscreteUniform) Validate() error {
	if d.Upper < d.Lower {
		return fmt.Errorf("%w: discrete uniform needs lower <= upper, got [%d, %d]", ErrInvalidDistribution, d.Lower, d.Upper)
	}
	return nil
}

func (d DiscreteUniform) String() string {
	return fmt.Sprintf("DiscreteUniform(lower=%d, upper=%d)", d.Lower, d.Upper)
}

// Uniform draws reals from [Lower, Upper).
type Uniform struct {
	Lower float64
	Upper float64
}

func (d Uniform) Sample(rng *rand.Rand, n int) []float64 {
	width := d.Upper - d.Lower
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Lower + width*rng.Float64()
	}
	return out
}

func (d Uniform) Validate() error {
	if !finite(d.Lower) || !finite(d.Upper) || d.Upper <= d.Lower {
		return fmt.Errorf("%w: uniform needs finite lower < upper, got [%g, %g)", ErrInvalidDistribution, d.Lower, d.Upper)
	}
	return nil
}

func (d Uniform) String() string {
	return fmt.Sprintf("Uniform(lower=%s, upper=%s)", num(d.Lower), num(d.Upper))
}

// Bernoulli is 1 with probability P and 0 otherwise.
type Bernoulli struct {
	P float64
}

func (d Bernoulli) Sample(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if rng.Float64() < d.P {
			out[i] = 1
		}
	}
	return out
}

func (d Bernoulli) Validate() error {
	if math.IsNaN(d.P) || d.P < 0 || d.P > 1 {
		return fmt.Errorf("%w: bernoulli needs 0 <= p <= 1, got %g", ErrInvalidDistribution, d.P)
	}
	return nil
}

func (d Bernoulli) String() string {
	return fmt.Sprintf("Bernoulli(p=%s)", num(d.P))
}

// Constant always yields Value. It consumes no randomness.
type Constant struct {
	Value float64
}

func (d Constant) Sample(_ *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Value
	}
	return out
}

func (d Constant) Validate() error {
	if !finite(d.Value) {
		return fmt.Errorf("%w: constant must be finite, got %g", ErrInvalidDistribution, d.Value)
	}
	return nil
}

func (d Constant) String() string {
	return fmt.Sprintf("Constant(%s)", num(d.Value))
}

// Parse builds a distribution from a kind name and named parameters, as found
// in scenario files. Kind matching ignores case; "discrete_uniform",
// "discreteuniform" and "discrete-uniform" are equivalent.
func Parse(kind string, params map[string]float64) (bowtie.Distribution, error) {
	k := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(kind))

	var (
		dist    bowtie.Distribution
		allowed []string
	)
	switch k {
	case "normal", "gaussian":
		allowed = []string{"mu", "sigma"}
		sigma, ok := params["sigma"]
		if !ok {
			sigma = 1
		}
		dist = Normal{Mu: params["mu"], Sigma: sigma}
	case "discreteuniform":
		allowed = []string{"lower", "upper"}
		lo, hi := params["lower"], params["upper"]
		if lo != math.Trunc(lo) || hi != math.Trunc(hi) {
			return nil, fmt.Errorf("%w: discrete uniform bounds must be integers, got [%g, %g]", ErrInvalidDistribution, lo, hi)
		}
		dist = DiscreteUniform{Lower: int(lo), Upper: int(hi)}
	case "uniform":
		allowed = []string{"lower", "upper"}
		hi, ok := params["upper"]
		if !ok {
			hi = 1
		}
		dist = Uniform{Lower: params["lower"], Upper: hi}
	case "bernoulli":
		allowed = []string{"p"}
		dist = Bernoulli{P: params["p"]}
	case "constant":
		allowed = []string{"value"}
		dist = Constant{Value: params["value"]}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidDistribution, kind)
	}

	if unknown := unknownParams(params, allowed); len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %s does not take %s", ErrInvalidDistribution, kind, strings.Join(unknown, ", "))
	}
	if err := dist.Validate(); err != nil {
		return nil, err
	}
	return dist, nil
}

func unknownParams(params map[string]float64, allowed []string) []string {
	var unknown []string
	for name := range params {
		ok := false
		for _, a := range allowed {
			if name == a {
				ok = true
				break
			}
		}
		if !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
