package behavior

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
)

// Blackboard is the mutable record a tree's nodes read and write: the sole
// channel between an agent's decisions and the rest of the game. Fixed
// spatial and action fields cover what every agent has; the open named-value
// map carries domain signals (ball_in_air, strike_count, has_ball, ...).
// Exactly one Blackboard belongs to each Tree and is never shared across
// trees. Leaves write outward-facing fields (CurrentAction, TargetPosition);
// external systems read them each frame, perform the game effect, and write
// sensor values back before the next tick.
type Blackboard struct {
	mu sync.RWMutex

	entityID string
	position physics.Vec3
	rotation physics.Vec3
	velocity physics.Vec3

	currentAction  string
	targetPosition physics.Vec3
	hasTargetPos   bool
	targetEntity   string

	values map[string]any
}

// NewBlackboard creates a blackboard for the given entity. An empty id is
// replaced with a generated one.
func NewBlackboard(entityID string) *Blackboard {
	if entityID == "" {
		entityID = uuid.NewString()
	}
	return &Blackboard{
		entityID: entityID,
		values:   make(map[string]any),
	}
}

// EntityID returns the owning agent's entity id.
func (bb *Blackboard) EntityID() string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.entityID
}

// Position returns the agent's world position.
func (bb *Blackboard) Position() physics.Vec3 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.position
}

// SetPosition updates the agent's world position.
func (bb *Blackboard) SetPosition(v physics.Vec3) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.position = v
}

// Rotation returns the agent's orientation (Euler angles, radians).
func (bb *Blackboard) Rotation() physics.Vec3 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.rotation
}

// SetRotation updates the agent's orientation.
func (bb *Blackboard) SetRotation(v physics.Vec3) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.rotation = v
}

// Velocity returns the agent's current velocity.
func (bb *Blackboard) Velocity() physics.Vec3 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.velocity
}

// SetVelocity updates the agent's velocity.
func (bb *Blackboard) SetVelocity(v physics.Vec3) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.velocity = v
}

// CurrentAction returns the outward-facing action selected by the tree
// ("power_swing", "throw_to_base", ...). Empty means no decision yet.
func (bb *Blackboard) CurrentAction() string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.currentAction
}

// SetCurrentAction records the action the tree selected this tick.
func (bb *Blackboard) SetCurrentAction(action string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.currentAction = action
}

// TargetPosition returns the movement target, if one is set.
func (bb *Blackboard) TargetPosition() (physics.Vec3, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.targetPosition, bb.hasTargetPos
}

// SetTargetPosition sets the movement target.
func (bb *Blackboard) SetTargetPosition(v physics.Vec3) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.targetPosition = v
	bb.hasTargetPos = true
}

// ClearTargetPosition removes the movement target.
func (bb *Blackboard) ClearTargetPosition() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.targetPosition = physics.Vec3{}
	bb.hasTargetPos = false
}

// TargetEntity returns the id of the entity this agent is focused on
// (runner to tag, base to cover), or empty.
func (bb *Blackboard) TargetEntity() string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	return bb.targetEntity
}

// SetTargetEntity updates the focused entity id.
func (bb *Blackboard) SetTargetEntity(id string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.targetEntity = id
}

// Set stores a named value.
func (bb *Blackboard) Set(key string, value any) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.values[key] = value
}

// Get retrieves a named value.
func (bb *Blackboard) Get(key string) (any, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	value, exists := bb.values[key]
	return value, exists
}

// GetString retrieves a string value.
func (bb *Blackboard) GetString(key string) (string, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return "", false
	}
	str, ok := value.(string)
	return str, ok
}

// GetInt retrieves an int value, converting from float64 when the value
// arrived through JSON or YAML decoding.
func (bb *Blackboard) GetInt(key string) (int, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetFloat retrieves a float64 value.
func (bb *Blackboard) GetFloat(key string) (float64, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// GetBool retrieves a boolean value.
func (bb *Blackboard) GetBool(key string) (bool, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return false, false
	}
	b, ok := value.(bool)
	return b, ok
}

// Has checks whether a named value exists.
func (bb *Blackboard) Has(key string) bool {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	_, exists := bb.values[key]
	return exists
}

// Delete removes a named value.
func (bb *Blackboard) Delete(key string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	delete(bb.values, key)
}

// Keys returns all named-value keys in sorted order for deterministic
// iteration.
func (bb *Blackboard) Keys() []string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	keys := make([]string, 0, len(bb.values))
	for k := range bb.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes every named value. Fixed fields are untouched.
func (bb *Blackboard) Clear() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.values = make(map[string]any)
}

// Snapshot returns a flat copy of the blackboard for tracing and state
// endpoints: fixed fields under reserved keys plus every named value.
func (bb *Blackboard) Snapshot() map[string]any {
	bb.mu.RLock()
	defer bb.mu.RUnlock()
	snap := make(map[string]any, len(bb.values)+7)
	for k, v := range bb.values {
		snap[k] = v
	}
	snap["entity_id"] = bb.entityID
	snap["position"] = bb.position
	snap["rotation"] = bb.rotation
	snap["velocity"] = bb.velocity
	snap["current_action"] = bb.currentAction
	if bb.hasTargetPos {
		snap["target_position"] = bb.targetPosition
	}
	if bb.targetEntity != "" {
		snap["target_entity"] = bb.targetEntity
	}
	return snap
}
