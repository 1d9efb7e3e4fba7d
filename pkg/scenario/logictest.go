package scenario

import (
	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
	"github.com/dd0wney/cluso-bowtie/pkg/threshold"
)

// LogicTestName is the registry key of the single-barrier check.
const LogicTestName = "logictest"

// Node names of the logic test.
const (
	LogicTestSignal   = "Signal"
	LogicTestBarrier  = "ATC Warning"
	LogicTestTopEvent = "Loss of Separation"
)

// LogicTest builds the smallest useful bow-tie: a constant signal through one
// barrier whose condition is Normal(3, 5). The barrier opens whenever the
// condition is positive, so about 73% of draws pass.
func LogicTest() (*Scenario, error) {
	bt, err := bowtie.NewBuilder(LogicTestName).
		Random("a", sampler.Normal{Mu: 3, Sigma: 5}).
		Random(LogicTestSignal, sampler.Constant{Value: threshold.Signal}).
		Tag(bowtie.RoleCause, LogicTestSignal).
		PreventativeBarrier(LogicTestBarrier, bowtie.BarrierAt(bowtie.Ref("a"), bowtie.Ref(LogicTestSignal), 0)).
		TopEvent(LogicTestTopEvent, bowtie.TopEvent(bowtie.Ref(LogicTestBarrier))).
		Build()
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:        LogicTestName,
		Description: "Single barrier switch check",
		Model:       bt,
	}, nil
}
