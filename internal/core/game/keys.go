package game

// Blackboard keys shared between the decision trees and the simulation
// loop. The loop writes sensor keys before ticking; trees write intent keys
// the loop consumes afterwards.
const (
	KeyBallCount     = "ball_count"
	KeyStrikeCount   = "strike_count"
	KeyOutCount      = "out_count"
	KeyPitchIncoming = "pitch_incoming"
	KeyPitchInZone   = "pitch_in_zone"
	KeyBatterReady   = "batter_ready"
	KeyRunnerLeading = "runner_leading"
	KeyPickoffThrown = "pickoff_thrown"
	KeyBallLive      = "ball_live"
	KeyBallInAir     = "ball_in_air"
	KeyBallPosition  = "ball_position"
	KeyChaseBall     = "chase_ball"
	KeyHasBall       = "has_ball"
	KeyLeadBase      = "lead_base"
	KeyOnBase        = "on_base"
	KeyRunSignal     = "run_signal"

	KeySelectedPitch = "selected_pitch"
	KeyTargetBase    = "target_base"
)

// Outward actions trees select and the loop performs.
const (
	ActionIdle         = ""
	ActionPowerSwing   = "power_swing"
	ActionContactSwing = "contact_swing"
	ActionTake         = "take"
	ActionWindup       = "windup"
	ActionPitch        = "pitch"
	ActionPickoff      = "pickoff"
	ActionCallBall     = "call_ball"
	ActionChase        = "chase"
	ActionFieldBall    = "field_ball"
	ActionThrow        = "throw"
	ActionCover        = "cover"
	ActionSprint       = "sprint"
	ActionLeadOff      = "lead_off"
	ActionReadPitcher  = "read_pitcher"
	ActionFeintSteal   = "feint_steal"
	ActionDiveBack     = "dive_back"
	ActionHoldBase     = "hold_base"
)

// Pitch grips the pitcher chooses between.
const (
	PitchFastball  = "fastball"
	PitchCurveball = "curveball"
	PitchChangeup  = "changeup"
)
