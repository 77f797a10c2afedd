package game

import (
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
)

// chaseWindow bounds a single pursuit of a loose ball. A defender that
// cannot run it down in this long gives the play up rather than chasing
// forever.
const chaseWindow = 6 * time.Second

// FieldingTree drives one defender. Holding the ball it throws to the lead
// base; assigned to a live ball it runs it down under a time limit, calling
// for it on the way; otherwise it covers its spot.
func FieldingTree(role Role) behavior.Node {
	throwIn := behavior.NewSequence("throw_in",
		flagSet("has_ball", KeyHasBall),
		behavior.NewAction("pick_target", func(ec *behavior.ExecutionContext) behavior.Status {
			base, ok := baseOn(ec, KeyLeadBase)
			if !ok {
				base = FirstBase
			}
			ec.Blackboard.Set(KeyTargetBase, int(base))
			return behavior.StatusSuccess
		}),
		setAction("throw_ball", ActionThrow),
	)

	chase := behavior.NewSequence("chase_down",
		flagSet("assigned", KeyChaseBall),
		behavior.NewTimeLimit("chase_window", chaseWindow,
			behavior.NewParallel("pursue", behavior.ParallelRequireAll, behavior.ParallelRequireOne,
				setAction("call_ball", ActionCallBall),
				moveTo("run_to_ball", ActionChase, ballPosition),
			),
		),
		setAction("glove_it", ActionFieldBall),
	)

	return behavior.NewSelector("fielding",
		throwIn,
		chase,
		moveToSpot("cover_spot", ActionCover, DefensiveSpot(role)),
	)
}
