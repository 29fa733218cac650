package tree

import (
	"errors"
	"fmt"
	"sort"

	"branching-chat-be/internal/entity"

	"github.com/google/uuid"
)

var (
	// ErrNodeNotFound reports a leaf or parent reference that does not exist
	// in the node set (a dangling active pointer, typically).
	ErrNodeNotFound = errors.New("tree: node not found")

	// ErrPathTooDeep reports a parent walk that exceeded the depth bound.
	// With immutable parent links this cannot happen unless the stored data
	// is corrupt, so it is an invariant failure rather than a user error.
	ErrPathTooDeep = errors.New("tree: path exceeds depth bound")
)

// ResolvePath reconstructs the root-to-leaf chain ending at leafId by walking
// parent links upward through the given node set.
//
// When leafId is nil the conversation has no selected leaf; the roots are
// returned in sibling order so callers can treat the result as an undiverged
// forest.
func ResolvePath(nodes []*entity.Message, leafId *uuid.UUID) ([]*entity.Message, error) {
	if leafId == nil {
		roots := make([]*entity.Message, 0)
		for _, n := range nodes {
			if n.IsRoot() {
				roots = append(roots, n)
			}
		}
		sortByBranchOrder(roots)
		return roots, nil
	}

	index := make(map[uuid.UUID]*entity.Message, len(nodes))
	for _, n := range nodes {
		index[n.Id] = n
	}

	current, ok := index[*leafId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, *leafId)
	}

	// Depth bound: a valid chain can never be longer than the node count.
	maxDepth := len(nodes) + 1
	path := make([]*entity.Message, 0, 8)
	for steps := 0; ; steps++ {
		if steps >= maxDepth {
			return nil, ErrPathTooDeep
		}
		path = append(path, current)
		if current.ParentMessageId == nil {
			break
		}
		parent, ok := index[*current.ParentMessageId]
		if !ok {
			return nil, fmt.Errorf("%w: parent %s of %s", ErrNodeNotFound, *current.ParentMessageId, current.Id)
		}
		current = parent
	}

	// Collected leaf-to-root; callers want root-to-leaf.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

func sortByBranchOrder(nodes []*entity.Message) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].BranchOrder != nodes[j].BranchOrder {
			return nodes[i].BranchOrder < nodes[j].BranchOrder
		}
		return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
	})
}
