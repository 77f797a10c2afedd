package game

import (
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
)

// Pitch mix and pacing. The grip selector falls through the probability
// gates in order, so the effective mix is 50% fastball, 30% curveball, 20%
// changeup.
const (
	fastballChance  = 0.5
	curveballChance = 0.6
	pickoffChance   = 0.35

	windupTime   = 1100 * time.Millisecond
	pickoffEvery = 8 * time.Second
)

// PitchingTree runs the pitcher's delivery loop. With a runner leading off
// it may throw over to the bag, rate-limited by a cooldown; otherwise it
// picks a grip, winds up and releases. The pickoff roll happens at most once
// per delivery cycle: while the windup is running the selector resumes the
// delivery branch without revisiting the pickoff branch.
func PitchingTree(rng behavior.Rand) behavior.Node {
	pickoff := behavior.NewCooldown("pickoff_cooldown", pickoffEvery,
		behavior.NewSequence("pickoff",
			flagSet("runner_leading", KeyRunnerLeading),
			behavior.NewProbability("pickoff_roll", pickoffChance, rng,
				setAction("throw_over", ActionPickoff),
			),
		),
	)

	grip := behavior.NewSelector("select_pitch",
		behavior.NewProbability("try_fastball", fastballChance, rng,
			setValue("grip_fastball", KeySelectedPitch, PitchFastball)),
		behavior.NewProbability("try_curveball", curveballChance, rng,
			setValue("grip_curveball", KeySelectedPitch, PitchCurveball)),
		setValue("grip_changeup", KeySelectedPitch, PitchChangeup),
	)

	deliver := behavior.NewSequence("deliver",
		flagSet("batter_ready", KeyBatterReady),
		grip,
		setAction("set_windup", ActionWindup),
		behavior.NewWait("windup", windupTime),
		setAction("release", ActionPitch),
	)

	return behavior.NewSelector("pitching",
		pickoff,
		deliver,
		moveToSpot("take_the_rubber", ActionCover, MoundPosition),
	)
}
