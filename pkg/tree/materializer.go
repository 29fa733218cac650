package tree

import (
	"sort"

	"branching-chat-be/internal/entity"

	"github.com/google/uuid"
)

// Node is one materialized tree node: the message plus its ordered children.
type Node struct {
	Message  *entity.Message
	Children []*Node
}

// Materialize assembles the full parent→children tree from a flat node set.
// The result is the ordered sequence of roots; a conversation with a leading
// system node rooted separately from the first user node yields multiple
// top-level entries.
//
// Assembly is a single pass over the node set followed by per-parent sorting;
// no recursion, so arbitrarily deep conversations cannot exhaust the stack.
func Materialize(nodes []*entity.Message) []*Node {
	index := make(map[uuid.UUID]*Node, len(nodes))
	for _, m := range nodes {
		index[m.Id] = &Node{Message: m}
	}

	roots := make([]*Node, 0)
	for _, m := range nodes {
		node := index[m.Id]
		if m.ParentMessageId == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := index[*m.ParentMessageId]; ok {
			parent.Children = append(parent.Children, node)
		} else {
			// Orphaned node: parent outside the set. Surface it at top
			// level rather than dropping it.
			roots = append(roots, node)
		}
	}

	sortNodes(roots)
	for _, n := range index {
		sortNodes(n.Children)
	}
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Message, nodes[j].Message
		if a.BranchOrder != b.BranchOrder {
			return a.BranchOrder < b.BranchOrder
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
