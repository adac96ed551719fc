package dialogue

import (
	"time"

	"github.com/Iron-Ham/sixhats/internal/hat"
)

// TreeRootName labels the root of every dialogue tree.
const TreeRootName = "Dialogue"

// Node is one message in the reply tree. The root carries only a name.
type Node struct {
	Name      string     `json:"name"`
	ID        string     `json:"id,omitempty"`
	Hat       hat.ID     `json:"hat,omitempty"`
	Content   string     `json:"content,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Children  []*Node    `json:"children"`
}

// BuildTree turns a flat conversation into its reply tree. A message hangs
// under the message it responds to; root messages and messages whose parent
// is not in conversation hang under the root. Sibling order follows
// conversation order.
func BuildTree(conversation []hat.Message) *Node {
	root := &Node{Name: TreeRootName, Children: []*Node{}}

	nodes := make(map[string]*Node, len(conversation))
	for _, m := range conversation {
		ts := m.Timestamp
		nodes[m.ID] = &Node{
			Name:      m.Content,
			ID:        m.ID,
			Hat:       m.Hat,
			Content:   m.Content,
			Timestamp: &ts,
			Children:  []*Node{},
		}
	}

	for _, m := range conversation {
		node := nodes[m.ID]
		parent, ok := nodes[m.RespondsTo()]
		if !ok || parent == node {
			parent = root
		}
		parent.Children = append(parent.Children, node)
	}
	return root
}

// Depth returns the number of edges on the longest path from n to a leaf.
func (n *Node) Depth() int {
	depth := 0
	for _, c := range n.Children {
		if d := c.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Count returns the number of message nodes below n.
func (n *Node) Count() int {
	count := 0
	for _, c := range n.Children {
		count += 1 + c.Count()
	}
	return count
}
