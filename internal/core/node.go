package core

// Node groups cores sharing a switch (spec §3 GLOSSARY: Node/Chip).
type Node struct {
	Cores []*Core
	id    uint32
	sys   *SystemState
}

// NewNode creates an empty node; cores are attached with AddCore.
func NewNode(id uint32) *Node {
	return &Node{id: id}
}

// AddCore attaches core to the node, wiring its back-reference.
func (n *Node) AddCore(c *Core) {
	c.setParent(n)
	n.Cores = append(n.Cores, c)
}

func (n *Node) ID() uint32 { return n.id }

func (n *Node) setSystem(s *SystemState) { n.sys = s }

func (n *Node) Parent() *SystemState { return n.sys }
