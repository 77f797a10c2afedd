// Package game assembles the behavior-tree engine into a running sandlot
// baseball scrimmage: nine defenders, a batter and any runners they turn
// into, each driven by its own tree over its own blackboard. The Sim owns
// everything the trees cannot: ball flight, pitch outcomes, the count,
// movement integration and the play phase machine. Trees and the loop talk
// exclusively through blackboard keys.
package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/behavior"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/trace"
)

// Phase is where the play currently stands.
type Phase string

const (
	// PhaseAtBat: the pitcher is working toward a release, runners lead off.
	PhaseAtBat Phase = "at_bat"
	// PhasePitch: the ball is on its way to the plate, the batter decides.
	PhasePitch Phase = "pitch"
	// PhaseBallLive: the ball is in play, fielders chase, runners go.
	PhaseBallLive Phase = "ball_live"
)

// Options configure a Sim.
type Options struct {
	// Seed drives every random element: agent tree rolls, pitch placement,
	// contact and spray. Equal seeds replay equal games.
	Seed   int64
	Logger log.Log
	// Sink receives trace events. Nil disables tracing.
	Sink trace.Sink
	// Parallelism is handed to the agent registry. Zero ticks serially.
	Parallelism int
	// TraceNodes records every tree-node resolution as an event. Very
	// chatty; meant for debugging single plays.
	TraceNodes bool
}

// Agent is one simulated player.
type Agent struct {
	ID    string
	Role  Role
	Speed float64

	bb         *behavior.Blackboard
	tree       *behavior.Tree
	lastAction string
	base       Base // runners: last base safely reached
}

// Ball tracks the single ball on the field.
type Ball struct {
	Position physics.Vec3
	InAir    bool
	Live     bool   // in play; a dead ball returns to the pitcher
	Carrier  string // agent holding it, if any

	from, to physics.Vec3
	flight   time.Duration
	flown    time.Duration
	arc      float64
}

// Count is the at-bat state.
type Count struct {
	Balls   int `json:"balls"`
	Strikes int `json:"strikes"`
	Outs    int `json:"outs"`
}

// Sim runs the scrimmage. All methods are safe for concurrent use.
type Sim struct {
	mu  sync.Mutex
	log log.Log

	registry *behavior.Registry
	agents   []*Agent
	byID     map[string]*Agent

	ball   Ball
	count  Count
	inning int
	runs   int
	hits   int
	phase  Phase
	clock  time.Duration

	pendingSwing string
	pitchInZone  bool
	pickoffUntil time.Duration
	chaser       string
	batterSerial int

	seed       int64
	rng        behavior.Rand
	sink       trace.Sink
	traceNodes bool
}

// NewSim builds the field: nine defenders at their spots and a batter in
// the box.
func NewSim(opts Options) (*Sim, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	s := &Sim{
		log:        logger.With(log.String("component", "game")),
		registry:   behavior.NewRegistry(logger),
		byID:       make(map[string]*Agent),
		inning:     1,
		phase:      PhaseAtBat,
		seed:       opts.Seed,
		rng:        behavior.NewRand(opts.Seed),
		sink:       opts.Sink,
		traceNodes: opts.TraceNodes,
	}
	s.ball.Position = MoundPosition
	if opts.Parallelism > 0 {
		s.registry.SetParallelism(opts.Parallelism)
	}
	for _, role := range DefensiveRoles {
		if _, err := s.addAgent(string(role), role, DefensiveSpot(role)); err != nil {
			return nil, err
		}
	}
	if err := s.newBatter(); err != nil {
		return nil, err
	}
	return s, nil
}

// Step advances the scrimmage by one frame: write sensors, tick every
// agent's tree, act on what the trees decided, then move bodies and ball.
func (s *Sim) Step(ctx context.Context, dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock += dt
	s.writeSensors()
	s.registry.Update(ctx, dt)
	s.applyIntents()
	s.moveAgents(dt)
	s.flyBall(dt)
}

// Clock is total simulated time.
func (s *Sim) Clock() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Registry exposes the agent registry for stats endpoints.
func (s *Sim) Registry() *behavior.Registry { return s.registry }

// --- roster ---

func (s *Sim) addAgent(id string, role Role, spot physics.Vec3) (*Agent, error) {
	bb := behavior.NewBlackboard(id)
	bb.SetPosition(spot)
	tree, err := s.registry.Create(id, bb, s.buildTree(id, role))
	if err != nil {
		return nil, err
	}
	if s.traceNodes {
		tree.SetObserver(s.nodeObserver(id))
	}
	a := &Agent{ID: id, Role: role, Speed: roleSpeed(role), bb: bb, tree: tree}
	s.agents = append(s.agents, a)
	s.byID[id] = a
	return a, nil
}

func (s *Sim) removeAgent(id string) {
	if err := s.registry.Remove(id); err != nil {
		s.log.Warn("removing unknown agent", log.String("agent_id", id))
	}
	delete(s.byID, id)
	for i, a := range s.agents {
		if a.ID == id {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			break
		}
	}
}

func (s *Sim) buildTree(id string, role Role) behavior.Node {
	rng := behavior.NewRand(behavior.AgentSeed(s.seed, id))
	switch role {
	case RolePitcher:
		return PitchingTree(rng)
	case RoleBatter:
		return AtBatTree()
	case RoleRunner:
		return RunningTree(rng)
	default:
		return FieldingTree(role)
	}
}

func (s *Sim) newBatter() error {
	s.batterSerial++
	id := fmt.Sprintf("batter_%d", s.batterSerial)
	_, err := s.addAgent(id, RoleBatter, BatterBox)
	return err
}

// batterToRunner converts the current batter into a runner starting from
// home. The agent keeps its identity and blackboard; only the tree and role
// change.
func (s *Sim) batterToRunner(a *Agent) {
	a.Role = RoleRunner
	a.Speed = roleSpeed(RoleRunner)
	a.base = HomePlate
	a.bb.Set(KeyOnBase, int(HomePlate))
	a.bb.SetCurrentAction(ActionIdle)
	a.lastAction = ActionIdle
	a.tree.SetRoot(s.buildTree(a.ID, RoleRunner))
	a.tree.Reset()
}

func (s *Sim) batter() *Agent {
	for _, a := range s.agents {
		if a.Role == RoleBatter {
			return a
		}
	}
	return nil
}

func (s *Sim) runners() []*Agent {
	var out []*Agent
	for _, a := range s.agents {
		if a.Role == RoleRunner {
			out = append(out, a)
		}
	}
	return out
}

func roleSpeed(r Role) float64 {
	switch r {
	case RolePitcher:
		return 3.0
	case RoleCatcher:
		return 3.5
	case RoleBatter:
		return 4.0
	case RoleRunner:
		return 6.5
	case RoleLeftFielder, RoleCenterFielder, RoleRightFielder:
		return 6.0
	default:
		return 5.5
	}
}

// --- sensors ---

func (s *Sim) writeSensors() {
	leading := false
	for _, r := range s.runners() {
		if physics.Distance3(r.bb.Position(), r.base.Position()) > 1.0 {
			leading = true
			break
		}
	}
	lead := s.leadBase()
	loose := s.ball.Live && !s.ball.InAir && s.ball.Carrier == ""
	if loose && s.chaser == "" {
		s.chaser = s.nearestDefender(s.ball.Position)
	}

	for _, a := range s.agents {
		bb := a.bb
		bb.Set(KeyBallPosition, s.ball.Position)
		switch a.Role {
		case RolePitcher:
			bb.Set(KeyRunnerLeading, leading && s.phase == PhaseAtBat)
			bb.Set(KeyBatterReady, s.phase == PhaseAtBat && s.batter() != nil)
		case RoleBatter:
			bb.Set(KeyBallCount, s.count.Balls)
			bb.Set(KeyStrikeCount, s.count.Strikes)
			bb.Set(KeyOutCount, s.count.Outs)
			bb.Set(KeyPitchIncoming, s.phase == PhasePitch)
			bb.Set(KeyPitchInZone, s.pitchInZone)
		case RoleRunner:
			bb.Set(KeyRunSignal, s.phase == PhaseBallLive)
			bb.Set(KeyPickoffThrown, s.clock < s.pickoffUntil)
		default:
			bb.Set(KeyBallLive, loose)
			bb.Set(KeyBallInAir, s.ball.InAir)
			bb.Set(KeyChaseBall, a.ID == s.chaser)
			bb.Set(KeyHasBall, s.ball.Carrier == a.ID)
			bb.Set(KeyLeadBase, int(lead))
		}
	}
}

// leadBase is the bag the defense should throw to: wherever the furthest
// runner is headed. Home outranks third.
func (s *Sim) leadBase() Base {
	best, bestRank := FirstBase, 0
	for _, r := range s.runners() {
		target := r.base.Next()
		if v, ok := r.bb.GetInt(KeyTargetBase); ok {
			target = Base(v)
		}
		rank := int(target)
		if target == HomePlate {
			rank = 4
		}
		if rank > bestRank {
			best, bestRank = target, rank
		}
	}
	return best
}

func (s *Sim) nearestDefender(p physics.Vec3) string {
	bestID, bestDist := "", math.MaxFloat64
	for _, a := range s.agents {
		switch a.Role {
		case RolePitcher, RoleBatter, RoleRunner:
			continue
		}
		if d := physics.Distance3(a.bb.Position(), p); d < bestDist {
			bestID, bestDist = a.ID, d
		}
	}
	return bestID
}

// --- intents ---

// applyIntents performs the discrete actions trees selected this tick.
// Actions are edge-triggered: a tree re-announcing the same action is not a
// new intent.
func (s *Sim) applyIntents() {
	for _, a := range s.agents {
		act := a.bb.CurrentAction()
		if act == a.lastAction {
			continue
		}
		a.lastAction = act
		if act != ActionIdle {
			s.record(trace.Event{Kind: trace.KindAction, AgentID: a.ID, Action: act})
		}
		switch act {
		case ActionPitch:
			if a.Role == RolePitcher && s.phase == PhaseAtBat {
				s.launchPitch(a)
			}
		case ActionPickoff:
			if a.Role == RolePitcher && s.phase == PhaseAtBat {
				s.pickoffUntil = s.clock + 600*time.Millisecond
				s.gameEvent("pickoff_throw", map[string]any{"by": a.ID})
				s.consume(a)
			}
		case ActionPowerSwing, ActionContactSwing, ActionTake:
			if a.Role == RoleBatter && s.phase == PhasePitch {
				s.pendingSwing = act
			}
		case ActionFieldBall:
			if s.ball.Live && !s.ball.InAir && s.ball.Carrier == "" &&
				physics.Distance3(a.bb.Position(), s.ball.Position) <= 1.2 {
				s.ball.Carrier = a.ID
				s.chaser = ""
				s.gameEvent("fielded", map[string]any{"by": a.ID})
			}
			s.consume(a)
		case ActionThrow:
			if s.ball.Carrier == a.ID {
				s.resolveThrow(a)
			}
		}
	}
}

// consume clears a performed action so the next identical decision
// re-triggers.
func (s *Sim) consume(a *Agent) {
	a.bb.SetCurrentAction(ActionIdle)
	a.lastAction = ActionIdle
}

// --- pitching ---

func pitchProfile(grip string) (speed, zoneChance float64) {
	switch grip {
	case PitchCurveball:
		return 13.5, 0.48
	case PitchChangeup:
		return 12.0, 0.55
	default:
		return 17.0, 0.62
	}
}

func (s *Sim) launchPitch(pitcher *Agent) {
	grip, _ := pitcher.bb.GetString(KeySelectedPitch)
	if grip == "" {
		grip = PitchFastball
	}
	speed, zoneChance := pitchProfile(grip)

	// Crossing point over the plate. Misses scatter around the aim point
	// and can still catch a corner.
	var cross physics.Vec3
	if s.rng.Float64() < zoneChance {
		cross.X = (s.rng.Float64()*2 - 1) * DefaultStrikeZone.HalfWidth * 0.9
		cross.Z = DefaultStrikeZone.Bottom + s.rng.Float64()*(DefaultStrikeZone.Top-DefaultStrikeZone.Bottom)
	} else {
		cross.X = StrikeZoneTarget.X + (s.rng.Float64()*2-1)*0.9
		cross.Z = StrikeZoneTarget.Z + (s.rng.Float64()*2-1)*0.8
	}
	s.pitchInZone = DefaultStrikeZone.Contains(cross)

	from := MoundPosition
	from.Z = 1.6
	dist := physics.Distance3(from, cross)
	s.ball = Ball{
		Position: from,
		InAir:    true,
		from:     from,
		to:       cross,
		flight:   time.Duration(dist / speed * float64(time.Second)),
	}
	s.phase = PhasePitch
	s.pendingSwing = ""
	s.gameEvent("pitch", map[string]any{"grip": grip, "in_zone": s.pitchInZone})
	s.consume(pitcher)
}

// --- plate resolution ---

func contactChance(swing string, inZone bool) float64 {
	chance := 0.72
	if swing == ActionPowerSwing {
		chance = 0.45
	}
	if !inZone {
		chance *= 0.5
	}
	return chance
}

func (s *Sim) resolvePitch() {
	batter := s.batter()
	swing := s.pendingSwing
	if swing == "" {
		swing = ActionTake
	}
	s.pendingSwing = ""
	if batter != nil {
		s.consume(batter)
	}

	switch swing {
	case ActionTake:
		if s.pitchInZone {
			s.addStrike("looking")
		} else {
			s.addBall()
		}
	default:
		if s.rng.Float64() < contactChance(swing, s.pitchInZone) {
			s.launchHit(batter, swing == ActionPowerSwing)
		} else {
			s.addStrike("swinging")
		}
	}

	if s.phase != PhaseBallLive {
		s.deadBall()
	}
}

func (s *Sim) addStrike(how string) {
	s.count.Strikes++
	s.gameEvent("strike", map[string]any{"how": how, "strikes": s.count.Strikes})
	if s.count.Strikes >= 3 {
		s.strikeout()
	}
}

func (s *Sim) addBall() {
	s.count.Balls++
	s.gameEvent("ball", map[string]any{"balls": s.count.Balls})
	if s.count.Balls >= 4 {
		s.walk()
	}
}

func (s *Sim) strikeout() {
	batter := s.batter()
	s.gameEvent("strikeout", nil)
	if batter != nil {
		s.removeAgent(batter.ID)
	}
	s.resetCount()
	_ = s.newBatter()
	s.out()
}

func (s *Sim) walk() {
	s.gameEvent("walk", nil)
	s.advanceForced()
	if batter := s.batter(); batter != nil {
		s.batterToRunner(batter)
		s.placeRunner(batter, FirstBase)
	}
	s.resetCount()
	_ = s.newBatter()
}

// advanceForced pushes runners ahead of a walk, furthest base first. A
// forced runner on third scores.
func (s *Sim) advanceForced() {
	occupied := make(map[Base]*Agent)
	for _, r := range s.runners() {
		occupied[r.base] = r
	}
	var chain []*Agent
	for b := FirstBase; b <= ThirdBase; b++ {
		r, ok := occupied[b]
		if !ok {
			break
		}
		chain = append(chain, r)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		r := chain[i]
		next := r.base.Next()
		if next == HomePlate {
			s.scoreRun(r)
			continue
		}
		s.placeRunner(r, next)
	}
}

// placeRunner is a dead-ball placement straight onto a bag.
func (s *Sim) placeRunner(r *Agent, b Base) {
	r.base = b
	r.bb.Set(KeyOnBase, int(b))
	r.bb.Delete(KeyTargetBase)
	r.bb.ClearTargetPosition()
	r.bb.SetPosition(b.Position())
}

func (s *Sim) scoreRun(r *Agent) {
	s.runs++
	s.gameEvent("run_scored", map[string]any{"runner": r.ID, "runs": s.runs})
	s.removeAgent(r.ID)
}

// --- contact ---

func (s *Sim) launchHit(batter *Agent, power bool) {
	angle := (-15 + s.rng.Float64()*110) * math.Pi / 180
	dist := 8 + s.rng.Float64()*26
	if power {
		dist = 20 + s.rng.Float64()*38
	}
	landing := physics.Vec3{X: dist * math.Cos(angle), Y: dist * math.Sin(angle)}

	if !InFairTerritory(landing) {
		s.foulBall()
		return
	}
	if dist >= FenceRadius {
		s.homeRun()
		return
	}

	s.hits++
	s.ball = Ball{
		Position: physics.Vec3{Z: 1.0},
		InAir:    true,
		Live:     true,
		from:     physics.Vec3{Z: 1.0},
		to:       landing,
		flight:   time.Duration((1.2 + dist/28) * float64(time.Second)),
		arc:      4 + s.rng.Float64()*8,
	}
	s.phase = PhaseBallLive
	s.gameEvent("hit", map[string]any{"power": power, "distance": math.Round(dist*10) / 10})
	if batter != nil {
		s.batterToRunner(batter)
	}
	s.resetCount()
	_ = s.newBatter()
}

func (s *Sim) foulBall() {
	if s.count.Strikes < 2 {
		s.count.Strikes++
	}
	s.gameEvent("foul", map[string]any{"strikes": s.count.Strikes})
}

func (s *Sim) homeRun() {
	scored := 1 + len(s.runners())
	s.runs += scored
	s.hits++
	s.gameEvent("home_run", map[string]any{"runs_scored": scored, "runs": s.runs})
	for _, r := range s.runners() {
		s.removeAgent(r.ID)
	}
	if batter := s.batter(); batter != nil {
		s.removeAgent(batter.ID)
	}
	s.resetCount()
	_ = s.newBatter()
}

// --- defense resolution ---

func (s *Sim) resolveThrow(carrier *Agent) {
	target := FirstBase
	if v, ok := carrier.bb.GetInt(KeyTargetBase); ok {
		target = Base(v)
	}
	s.gameEvent("throw_in", map[string]any{"by": carrier.ID, "to": target.String()})
	s.deadBall()
	s.consume(carrier)
}

// deadBall ends the play: ball back with the pitcher, next pitch coming.
func (s *Sim) deadBall() {
	s.ball = Ball{Position: MoundPosition}
	s.chaser = ""
	s.phase = PhaseAtBat
	s.pitchInZone = false
}

func (s *Sim) out() {
	s.count.Outs++
	s.gameEvent("out", map[string]any{"outs": s.count.Outs})
	if s.count.Outs >= 3 {
		s.endInning()
	}
}

func (s *Sim) endInning() {
	for _, r := range s.runners() {
		s.removeAgent(r.ID)
	}
	s.count = Count{}
	s.inning++
	s.gameEvent("side_retired", map[string]any{"inning": s.inning})
}

func (s *Sim) resetCount() {
	s.count.Balls = 0
	s.count.Strikes = 0
}

// --- integration ---

func (s *Sim) moveAgents(dt time.Duration) {
	for _, a := range s.agents {
		target, ok := a.bb.TargetPosition()
		if !ok {
			a.bb.SetVelocity(physics.Vec3{})
			continue
		}
		pos := a.bb.Position()
		next := physics.MoveToward(pos, target, a.Speed*dt.Seconds())
		a.bb.SetPosition(next)
		if secs := dt.Seconds(); secs > 0 {
			a.bb.SetVelocity(next.Sub(pos).Scale(1 / secs))
		}
	}
	if c := s.ball.Carrier; c != "" {
		if a, ok := s.byID[c]; ok {
			s.ball.Position = a.bb.Position()
		}
	}
	s.settleRunners()
}

// settleRunners syncs runner bases from their blackboards and scores anyone
// who claimed home from third.
func (s *Sim) settleRunners() {
	var scored []*Agent
	for _, r := range s.runners() {
		v, ok := r.bb.GetInt(KeyOnBase)
		if !ok || Base(v) == r.base {
			continue
		}
		claimed := Base(v)
		if claimed == HomePlate && r.base == ThirdBase {
			scored = append(scored, r)
			continue
		}
		r.base = claimed
		s.gameEvent("safe", map[string]any{"runner": r.ID, "base": claimed.String()})
	}
	for _, r := range scored {
		s.scoreRun(r)
	}
}

func (s *Sim) flyBall(dt time.Duration) {
	if !s.ball.InAir {
		return
	}
	s.ball.flown += dt
	t := float64(s.ball.flown) / float64(s.ball.flight)
	if t >= 1 {
		s.ball.Position = s.ball.to
		s.ball.InAir = false
		s.ball.flown = 0
		switch s.phase {
		case PhasePitch:
			s.resolvePitch()
		case PhaseBallLive:
			s.gameEvent("ball_down", map[string]any{
				"x": math.Round(s.ball.Position.X*10) / 10,
				"y": math.Round(s.ball.Position.Y*10) / 10,
			})
		}
		return
	}
	p := physics.Lerp(s.ball.from, s.ball.to, t)
	p.Z += s.ball.arc * 4 * t * (1 - t)
	s.ball.Position = p
}

// --- tracing ---

func (s *Sim) record(ev trace.Event) {
	if s.sink == nil {
		return
	}
	ev.Wall = time.Now()
	ev.Clock = s.clock
	s.sink.Record(ev)
}

func (s *Sim) gameEvent(name string, detail map[string]any) {
	s.record(trace.Event{Kind: trace.KindGame, Action: name, Detail: detail})
}

func (s *Sim) nodeObserver(agentID string) behavior.Observer {
	return func(n behavior.Node, st behavior.Status) {
		s.record(trace.Event{
			Kind:    trace.KindNode,
			AgentID: agentID,
			Node:    n.Name(),
			Status:  st.String(),
		})
	}
}

// --- snapshots ---

// AgentSnapshot is one player's public state.
type AgentSnapshot struct {
	ID       string       `json:"id"`
	Role     Role         `json:"role"`
	Position physics.Vec3 `json:"position"`
	Action   string       `json:"action,omitempty"`
	OnBase   string       `json:"on_base,omitempty"`
}

// BallSnapshot is the ball's public state.
type BallSnapshot struct {
	Position physics.Vec3 `json:"position"`
	InAir    bool         `json:"in_air"`
	Live     bool         `json:"live"`
	Carrier  string       `json:"carrier,omitempty"`
}

// Snapshot is a consistent view of the whole scrimmage, shaped for JSON.
type Snapshot struct {
	Clock  float64         `json:"clock_s"`
	Inning int             `json:"inning"`
	Phase  Phase           `json:"phase"`
	Count  Count           `json:"count"`
	Runs   int             `json:"runs"`
	Hits   int             `json:"hits"`
	Ball   BallSnapshot    `json:"ball"`
	Agents []AgentSnapshot `json:"agents"`
}

// TakeSnapshot captures the current state under the sim lock.
func (s *Sim) TakeSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Clock:  s.clock.Seconds(),
		Inning: s.inning,
		Phase:  s.phase,
		Count:  s.count,
		Runs:   s.runs,
		Hits:   s.hits,
		Ball: BallSnapshot{
			Position: s.ball.Position,
			InAir:    s.ball.InAir,
			Live:     s.ball.Live,
			Carrier:  s.ball.Carrier,
		},
		Agents: make([]AgentSnapshot, 0, len(s.agents)),
	}
	for _, a := range s.agents {
		as := AgentSnapshot{
			ID:       a.ID,
			Role:     a.Role,
			Position: a.bb.Position(),
			Action:   a.bb.CurrentAction(),
		}
		if a.Role == RoleRunner {
			as.OnBase = a.base.String()
		}
		snap.Agents = append(snap.Agents, as)
	}
	return snap
}

// StateJSON is TakeSnapshot marshaled, for frames and the state endpoint.
func (s *Sim) StateJSON() (json.RawMessage, error) {
	return json.Marshal(s.TakeSnapshot())
}
