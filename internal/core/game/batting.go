package game

import (
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
)

// BattingTree decides the batter's response to the incoming pitch. Ahead in
// the count with a pitch in the zone it swings for power; with two strikes
// it protects the plate with a contact swing; otherwise it takes.
//
// The loop ticks it only while a pitch is on its way, so every activation is
// one decision for one pitch.
func BattingTree() behavior.Node {
	favorable := behavior.NewCondition("favorable_count", func(ec *behavior.ExecutionContext) bool {
		balls, _ := ec.Blackboard.GetInt(KeyBallCount)
		strikes, _ := ec.Blackboard.GetInt(KeyStrikeCount)
		return balls >= 2 && balls > strikes
	})

	return behavior.NewSelector("batting",
		behavior.NewSequence("power",
			favorable,
			flagSet("pitch_in_zone", KeyPitchInZone),
			setAction("set_power_swing", ActionPowerSwing),
		),
		behavior.NewSequence("protect",
			intAtLeast("two_strikes", KeyStrikeCount, 2),
			setAction("set_contact_swing", ActionContactSwing),
		),
		setAction("set_take", ActionTake),
	)
}

// AtBatTree gates BattingTree behind the pitch-incoming sensor so the batter
// idles between pitches instead of re-announcing a decision every frame.
func AtBatTree() behavior.Node {
	return behavior.NewSequence("at_bat",
		flagSet("pitch_incoming", KeyPitchIncoming),
		BattingTree(),
	)
}
