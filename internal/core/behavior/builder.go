package behavior

import (
	"fmt"
	"sync"
)

// ConditionFactory builds a condition predicate from definition parameters.
type ConditionFactory func(params map[string]any) (ConditionFunc, error)

// ActionFactory builds an action body from definition parameters.
type ActionFactory func(params map[string]any) (ActionFunc, error)

// NodeFactory builds a custom node from definition parameters. Children are
// already constructed; decorator-style factories receive exactly one.
type NodeFactory func(name string, params map[string]any, children []Node) (Node, error)

// Builder instantiates trees from declarative definitions. Composite and
// decorator types are built in; conditions, actions, and extra node types
// come from registered factories, so game code can expose its vocabulary to
// data files without the engine knowing about it.
type Builder struct {
	mu      sync.RWMutex
	conds   map[string]ConditionFactory
	acts    map[string]ActionFactory
	customs map[string]NodeFactory
	rng     Rand
}

// NewBuilder returns an empty builder with a time-seeded random source.
func NewBuilder() *Builder {
	return &Builder{
		conds:   make(map[string]ConditionFactory),
		acts:    make(map[string]ActionFactory),
		customs: make(map[string]NodeFactory),
		rng:     defaultRand(),
	}
}

// SetRand swaps the random source used by random_sequence and probability
// nodes built afterwards. Deterministic tests and per-agent seeding both go
// through here.
func (b *Builder) SetRand(rng Rand) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rng != nil {
		b.rng = rng
	}
}

// RegisterCondition registers a named condition factory.
func (b *Builder) RegisterCondition(name string, factory ConditionFactory) {
	b.mu.Lock()
	b.conds[name] = factory
	b.mu.Unlock()
}

// RegisterAction registers a named action factory.
func (b *Builder) RegisterAction(name string, factory ActionFactory) {
	b.mu.Lock()
	b.acts[name] = factory
	b.mu.Unlock()
}

// RegisterNode registers a factory for a custom node type. Built-in types
// cannot be overridden; the builtin switch runs first.
func (b *Builder) RegisterNode(typ string, factory NodeFactory) {
	b.mu.Lock()
	b.customs[typ] = factory
	b.mu.Unlock()
}

// Build constructs the tree rooted at def.Root. Node instances are memoized
// by name, so definitions referencing the same name share one node.
func (b *Builder) Build(def *TreeDefinition) (Node, error) {
	if def == nil || def.Root == "" {
		return nil, fmt.Errorf("%w: missing root", ErrInvalidDefinition)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	created := make(map[string]Node)
	building := make(map[string]bool)
	var buildNode func(name string) (Node, error)
	buildNode = func(name string) (Node, error) {
		if n, ok := created[name]; ok {
			return n, nil
		}
		if building[name] {
			return nil, fmt.Errorf("%w: node cycle at %q", ErrInvalidDefinition, name)
		}
		nd, ok := def.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("%w: undefined node %q", ErrInvalidDefinition, name)
		}
		building[name] = true
		defer delete(building, name)

		children := func() ([]Node, error) {
			out := make([]Node, 0, len(nd.Children))
			for _, ref := range nd.Children {
				ch, err := buildNode(ref)
				if err != nil {
					return nil, err
				}
				out = append(out, ch)
			}
			return out, nil
		}
		child := func() (Node, error) {
			if nd.Child == "" {
				return nil, fmt.Errorf("%w: %s %q requires child", ErrInvalidDefinition, nd.Type, name)
			}
			return buildNode(nd.Child)
		}

		var node Node
		switch nd.Type {
		case TypeSequence:
			kids, err := children()
			if err != nil {
				return nil, err
			}
			node = NewSequence(name, kids...)
		case TypeSelector:
			kids, err := children()
			if err != nil {
				return nil, err
			}
			node = NewSelector(name, kids...)
		case TypeRandomSequence:
			kids, err := children()
			if err != nil {
				return nil, err
			}
			node = NewRandomSequence(name, b.rng, kids...)
		case TypeParallel:
			kids, err := children()
			if err != nil {
				return nil, err
			}
			success, err := parsePolicy(nd.Params, "success_policy", ParallelRequireAll)
			if err != nil {
				return nil, fmt.Errorf("%w: node %q: %v", ErrInvalidDefinition, name, err)
			}
			failure, err := parsePolicy(nd.Params, "failure_policy", ParallelRequireAll)
			if err != nil {
				return nil, fmt.Errorf("%w: node %q: %v", ErrInvalidDefinition, name, err)
			}
			node = NewParallel(name, success, failure, kids...)
		case TypeInverter:
			ch, err := child()
			if err != nil {
				return nil, err
			}
			node = NewInverter(name, ch)
		case TypeRepeater:
			ch, err := child()
			if err != nil {
				return nil, err
			}
			count, ok := ParamInt(nd.Params, "count")
			if !ok {
				count = -1
			}
			node = NewRepeater(name, count, ch)
		case TypeTimeLimit:
			ch, err := child()
			if err != nil {
				return nil, err
			}
			limit, ok := ParamDuration(nd.Params, "limit")
			if !ok {
				return nil, fmt.Errorf("%w: time_limit %q requires limit", ErrInvalidDefinition, name)
			}
			node = NewTimeLimit(name, limit, ch)
		case TypeCooldown:
			ch, err := child()
			if err != nil {
				return nil, err
			}
			d, ok := ParamDuration(nd.Params, "duration")
			if !ok {
				return nil, fmt.Errorf("%w: cooldown %q requires duration", ErrInvalidDefinition, name)
			}
			node = NewCooldown(name, d, ch)
		case TypeProbability:
			ch, err := child()
			if err != nil {
				return nil, err
			}
			p, ok := ParamFloat(nd.Params, "p")
			if !ok {
				return nil, fmt.Errorf("%w: probability %q requires p", ErrInvalidDefinition, name)
			}
			node = NewProbability(name, p, b.rng, ch)
		case TypeWait:
			d, ok := ParamDuration(nd.Params, "duration")
			if !ok {
				return nil, fmt.Errorf("%w: wait %q requires duration", ErrInvalidDefinition, name)
			}
			node = NewWait(name, d)
		case TypeCondition:
			factory := b.conds[nd.Condition]
			if factory == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, nd.Condition)
			}
			fn, err := factory(nd.Params)
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", nd.Condition, err)
			}
			node = NewCondition(name, fn)
		case TypeAction:
			factory := b.acts[nd.Action]
			if factory == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownAction, nd.Action)
			}
			fn, err := factory(nd.Params)
			if err != nil {
				return nil, fmt.Errorf("action %s: %w", nd.Action, err)
			}
			node = NewAction(name, fn)
		default:
			factory := b.customs[nd.Type]
			if factory == nil {
				return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, nd.Type)
			}
			kids, err := children()
			if err != nil {
				return nil, err
			}
			if nd.Child != "" {
				ch, err := buildNode(nd.Child)
				if err != nil {
					return nil, err
				}
				kids = append(kids, ch)
			}
			var err2 error
			node, err2 = factory(name, nd.Params, kids)
			if err2 != nil {
				return nil, fmt.Errorf("node %s: %w", name, err2)
			}
		}
		created[name] = node
		return node, nil
	}
	return buildNode(def.Root)
}

// parsePolicy reads a parallel policy parameter: "all", "one", or a
// positive count.
func parsePolicy(params map[string]any, key string, fallback ParallelPolicy) (ParallelPolicy, error) {
	v, ok := params[key]
	if !ok {
		return fallback, nil
	}
	switch p := v.(type) {
	case string:
		switch p {
		case "all":
			return ParallelRequireAll, nil
		case "one", "any":
			return ParallelRequireOne, nil
		default:
			return fallback, fmt.Errorf("unknown policy %q", p)
		}
	case int:
		return ParallelRequireCount(p), nil
	case int64:
		return ParallelRequireCount(int(p)), nil
	case float64:
		return ParallelRequireCount(int(p)), nil
	default:
		return fallback, fmt.Errorf("unknown policy %v", v)
	}
}
