package game

import (
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
)

// leadDistance is how far off the bag a runner works their lead.
const leadDistance = 2.0

// RunningTree drives a base runner. On the run signal it sprints for the
// next base and keeps going while the signal holds; caught by a pickoff
// throw it scrambles back; between pitches it works a lead through a
// shuffled fidget routine.
//
// Reaction latency to the run signal is bounded by the fidget loop's longest
// running stretch, since a selector resumes its running branch without
// revisiting earlier ones.
func RunningTree(rng behavior.Rand) behavior.Node {
	advance := behavior.NewSequence("advance",
		flagSet("run_signal", KeyRunSignal),
		behavior.NewAction("round_the_bag", func(ec *behavior.ExecutionContext) behavior.Status {
			on, _ := baseOn(ec, KeyOnBase)
			ec.Blackboard.Set(KeyTargetBase, int(on.Next()))
			return behavior.StatusSuccess
		}),
		moveTo("sprint", ActionSprint, func(ec *behavior.ExecutionContext) (physics.Vec3, bool) {
			target, ok := baseOn(ec, KeyTargetBase)
			if !ok {
				return physics.Vec3{}, false
			}
			return target.Position(), true
		}),
		behavior.NewAction("claim_base", func(ec *behavior.ExecutionContext) behavior.Status {
			target, ok := baseOn(ec, KeyTargetBase)
			if !ok {
				return behavior.StatusFailure
			}
			ec.Blackboard.Set(KeyOnBase, int(target))
			ec.Blackboard.SetCurrentAction(ActionHoldBase)
			return behavior.StatusSuccess
		}),
	)

	retreat := behavior.NewSequence("scramble_back",
		flagSet("pickoff_thrown", KeyPickoffThrown),
		moveTo("dive_back", ActionDiveBack, func(ec *behavior.ExecutionContext) (physics.Vec3, bool) {
			on, ok := baseOn(ec, KeyOnBase)
			if !ok {
				return physics.Vec3{}, false
			}
			return on.Position(), true
		}),
	)

	lead := behavior.NewRandomSequence("work_a_lead", rng,
		moveTo("shuffle_out", ActionLeadOff, leadSpot),
		setAction("read_pitcher", ActionReadPitcher),
		behavior.NewWait("hesitate", 400*time.Millisecond),
		setAction("feint", ActionFeintSteal),
	)

	return behavior.NewSelector("base_running", advance, retreat, lead)
}

// leadSpot is a point leadDistance off the runner's bag toward the next one.
func leadSpot(ec *behavior.ExecutionContext) (physics.Vec3, bool) {
	on, ok := baseOn(ec, KeyOnBase)
	if !ok {
		return physics.Vec3{}, false
	}
	dir := on.Next().Position().Sub(on.Position()).Normalize()
	return on.Position().Add(dir.Scale(leadDistance)), true
}
