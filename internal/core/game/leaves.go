package game

import (
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
)

// arriveRadius is how close an agent must be to a target point before a
// movement leaf reports arrival.
const arriveRadius = 0.5

// flagSet succeeds while a blackboard bool reads true.
func flagSet(name, key string) *behavior.Condition {
	return behavior.NewCondition(name, func(ec *behavior.ExecutionContext) bool {
		v, ok := ec.Blackboard.GetBool(key)
		return ok && v
	})
}

// intAtLeast succeeds while an int key reads >= min. Missing keys read as
// zero.
func intAtLeast(name, key string, min int) *behavior.Condition {
	return behavior.NewCondition(name, func(ec *behavior.ExecutionContext) bool {
		v, _ := ec.Blackboard.GetInt(key)
		return v >= min
	})
}

// setAction publishes an outward action and succeeds.
func setAction(name, action string) *behavior.Action {
	return behavior.NewAction(name, func(ec *behavior.ExecutionContext) behavior.Status {
		ec.Blackboard.SetCurrentAction(action)
		return behavior.StatusSuccess
	})
}

// setValue writes a plain blackboard value and succeeds.
func setValue(name, key string, value any) *behavior.Action {
	return behavior.NewAction(name, func(ec *behavior.ExecutionContext) behavior.Status {
		ec.Blackboard.Set(key, value)
		return behavior.StatusSuccess
	})
}

// moveTo steers the agent toward the spot resolved by target each tick,
// returning Running until the agent is within arriveRadius. The leaf only
// writes intent (action and target position); the simulation loop performs
// the actual movement.
func moveTo(name, action string, target func(ec *behavior.ExecutionContext) (physics.Vec3, bool)) *behavior.Action {
	return behavior.NewAction(name, func(ec *behavior.ExecutionContext) behavior.Status {
		goal, ok := target(ec)
		if !ok {
			return behavior.StatusFailure
		}
		ec.Blackboard.SetCurrentAction(action)
		ec.Blackboard.SetTargetPosition(goal)
		if physics.Distance3(ec.Blackboard.Position(), goal) <= arriveRadius {
			ec.Blackboard.ClearTargetPosition()
			return behavior.StatusSuccess
		}
		return behavior.StatusRunning
	})
}

// moveToSpot is moveTo with a fixed destination.
func moveToSpot(name, action string, spot physics.Vec3) *behavior.Action {
	return moveTo(name, action, func(*behavior.ExecutionContext) (physics.Vec3, bool) {
		return spot, true
	})
}

// ballPosition reads the ball position sensor.
func ballPosition(ec *behavior.ExecutionContext) (physics.Vec3, bool) {
	v, ok := ec.Blackboard.Get(KeyBallPosition)
	if !ok {
		return physics.Vec3{}, false
	}
	p, ok := v.(physics.Vec3)
	return p, ok
}

// baseOn reads a Base stored under key. Bases cross the blackboard as ints.
func baseOn(ec *behavior.ExecutionContext, key string) (Base, bool) {
	v, ok := ec.Blackboard.GetInt(key)
	if !ok {
		return HomePlate, false
	}
	return Base(v), true
}
