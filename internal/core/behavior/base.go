package behavior

// baseNode carries the identity every node shares. Run-state lives on the
// concrete node types, never here.
type baseNode struct {
	name   string
	typ    string
	parent Node
}

func newBaseNode(name, typ string) baseNode {
	return baseNode{name: name, typ: typ}
}

func (bn *baseNode) Name() string { return bn.name }

func (bn *baseNode) Type() string { return bn.typ }

func (bn *baseNode) Parent() Node { return bn.parent }

func (bn *baseNode) SetParent(parent Node) { bn.parent = parent }

func (bn *baseNode) Reset() {}

// compositeNode is the shared child-list plumbing for multi-child nodes.
type compositeNode struct {
	baseNode
	children []Node
}

// Children returns the ordered child list. Callers must not mutate it.
func (cn *compositeNode) Children() []Node { return cn.children }

// adopt appends children and installs self as their parent back-reference.
// Nil children are skipped so optional branches can be composed inline.
func (cn *compositeNode) adopt(self Node, children ...Node) {
	for _, child := range children {
		if child == nil {
			continue
		}
		child.SetParent(self)
		cn.children = append(cn.children, child)
	}
}

func (cn *compositeNode) resetChildren() {
	for _, child := range cn.children {
		child.Reset()
	}
}

// decoratorNode is the shared single-child plumbing for wrapping nodes.
type decoratorNode struct {
	baseNode
	child Node
}

// Child returns the wrapped node, or nil.
func (dn *decoratorNode) Child() Node { return dn.child }

// wrap installs the child and its parent back-reference.
func (dn *decoratorNode) wrap(self, child Node) {
	if child != nil {
		child.SetParent(self)
	}
	dn.child = child
}
