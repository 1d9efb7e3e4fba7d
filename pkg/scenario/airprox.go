package scenario

import (
	"github.com/dd0wney/cluso-bowtie/pkg/bowtie"
	"github.com/dd0wney/cluso-bowtie/pkg/sampler"
)

// AirproxName is the registry key of the near-miss model.
const AirproxName = "airprox"

// Node names of the airprox model.
const (
	AirproxContext              = "Flight activity"
	AirproxBadLuck              = "Bad Luck"
	AirproxNoFlightPlan         = "No Flight Plan"
	AirproxFlightPlan           = "Flight Plan"
	AirproxATCWarning           = "ATC Warning"
	AirproxSkyScanning          = "Pilot Sky Scanning"
	AirproxLossOfSeparation     = "Imminent Loss of Separation"
	AirproxSituationalAwareness = "Situational Awareness"
	AirproxCollision            = "Collision"
	AirproxAvoidingAction       = "Avoiding Action"
)

// Airprox builds the aviation near-miss bow-tie. Half the threats come from
// bad luck and half from a missing flight plan; three preventative barriers
// stand before the loss of separation and one mitigation barrier decides
// between a collision and avoiding action.
func Airprox() (*Scenario, error) {
	ref := bowtie.Ref

	bt, err := bowtie.NewBuilder(AirproxName).
		Context(AirproxContext).
		Random("a", sampler.Normal{Mu: 0, Sigma: 5}).
		Random("b", sampler.Normal{Mu: 0, Sigma: 1}).
		Random("c", sampler.Normal{Mu: 0, Sigma: 5}).
		Random("d", sampler.Normal{Mu: 0, Sigma: 1}).
		Random("e", sampler.Normal{Mu: 0, Sigma: 5}).
		Random("f", sampler.Normal{Mu: 0, Sigma: 5}).
		Random("g", sampler.Normal{Mu: 0, Sigma: 5}).
		Random("Even Split", sampler.DiscreteUniform{Lower: 0, Upper: 1}).
		Cause(AirproxBadLuck, bowtie.Cause(ref("Even Split"))).
		Cause(AirproxNoFlightPlan, bowtie.Cause(bowtie.Invert(ref("Even Split")))).
		PreventativeBarrier(AirproxFlightPlan, bowtie.Barrier(ref("c"), ref(AirproxBadLuck))).
		PreventativeBarrier(AirproxATCWarning, bowtie.Barrier(ref("d"), bowtie.Combine(ref(AirproxNoFlightPlan), ref(AirproxFlightPlan)))).
		PreventativeBarrier(AirproxSkyScanning, bowtie.BarrierAt(ref("d"), ref(AirproxATCWarning), 2)).
		TopEvent(AirproxLossOfSeparation, bowtie.TopEvent(ref(AirproxSkyScanning))).
		MitigationBarrier(AirproxSituationalAwareness, bowtie.Barrier(ref("e"), ref(AirproxLossOfSeparation))).
		Consequence(AirproxCollision, bowtie.Consequence(ref(AirproxSituationalAwareness))).
		Consequence(AirproxAvoidingAction, bowtie.Consequence(
			bowtie.InvertingAnd(ref(AirproxSituationalAwareness), ref(AirproxLossOfSeparation)))).
		Build()
	if err != nil {
		return nil, err
	}

	return &Scenario{
		Name:        AirproxName,
		Description: "Airprox (aircraft near-miss) bow-tie",
		Model:       bt,
		// inverting_and reads the top event, which adds an edge that is
		// not part of the diagram.
		RemoveEdges: [][2]string{{AirproxLossOfSeparation, AirproxAvoidingAction}},
	}, nil
}
