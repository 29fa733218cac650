package tree

import (
	"testing"
	"time"

	"branching-chat-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nodeBuilder struct {
	conversationId uuid.UUID
	clock          time.Time
	nodes          []*entity.Message
}

func newNodeBuilder() *nodeBuilder {
	return &nodeBuilder{
		conversationId: uuid.New(),
		clock:          time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *nodeBuilder) add(parent *entity.Message, sender string, text string, branchOrder int) *entity.Message {
	b.clock = b.clock.Add(time.Second)
	m := &entity.Message{
		Id:             uuid.New(),
		ConversationId: b.conversationId,
		Sender:         sender,
		Text:           text,
		BranchOrder:    branchOrder,
		CreatedAt:      b.clock,
	}
	if parent != nil {
		parentId := parent.Id
		m.ParentMessageId = &parentId
	}
	b.nodes = append(b.nodes, m)
	return m
}

func TestResolvePathRootToLeaf(t *testing.T) {
	b := newNodeBuilder()
	system := b.add(nil, "system", "You are helpful.", 0)
	user := b.add(system, "user", "Hi", 0)
	assistant := b.add(user, "assistant", "Hello!", 0)
	// A sibling branch that must not appear in the resolved path.
	b.add(user, "assistant", "Hey there!", 1)

	path, err := ResolvePath(b.nodes, &assistant.Id)
	require.NoError(t, err)
	require.Len(t, path, 3)

	assert.Equal(t, system.Id, path[0].Id)
	assert.Equal(t, user.Id, path[1].Id)
	assert.Equal(t, assistant.Id, path[2].Id)

	// Every adjacent pair is a parent-child link and the head is a root.
	assert.Nil(t, path[0].ParentMessageId)
	for i := 1; i < len(path); i++ {
		require.NotNil(t, path[i].ParentMessageId)
		assert.Equal(t, path[i-1].Id, *path[i].ParentMessageId)
	}
}

func TestResolvePathLeafIsLastElement(t *testing.T) {
	b := newNodeBuilder()
	root := b.add(nil, "user", "root", 0)
	leaf := b.add(root, "assistant", "leaf", 0)

	path, err := ResolvePath(b.nodes, &leaf.Id)
	require.NoError(t, err)
	assert.Equal(t, leaf.Id, path[len(path)-1].Id)
}

func TestResolvePathNoLeafReturnsRoots(t *testing.T) {
	b := newNodeBuilder()
	system := b.add(nil, "system", "sys", 0)
	user := b.add(nil, "user", "first", 1)
	b.add(user, "assistant", "reply", 0)

	path, err := ResolvePath(b.nodes, nil)
	require.NoError(t, err)
	require.Len(t, path, 2)
	assert.Equal(t, system.Id, path[0].Id)
	assert.Equal(t, user.Id, path[1].Id)
}

func TestResolvePathDanglingLeaf(t *testing.T) {
	b := newNodeBuilder()
	b.add(nil, "user", "root", 0)

	missing := uuid.New()
	_, err := ResolvePath(b.nodes, &missing)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestResolvePathDanglingParent(t *testing.T) {
	b := newNodeBuilder()
	orphanParent := uuid.New()
	leaf := b.add(nil, "user", "leaf", 0)
	leaf.ParentMessageId = &orphanParent

	_, err := ResolvePath(b.nodes, &leaf.Id)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestResolvePathDepthBound(t *testing.T) {
	// Fabricate a two-node cycle, which live data cannot contain. The walk
	// must fail instead of spinning.
	b := newNodeBuilder()
	a := b.add(nil, "user", "a", 0)
	c := b.add(a, "assistant", "c", 0)
	a.ParentMessageId = &c.Id

	_, err := ResolvePath(b.nodes, &c.Id)
	assert.ErrorIs(t, err, ErrPathTooDeep)
}

func TestMaterializeTreeShape(t *testing.T) {
	b := newNodeBuilder()
	system := b.add(nil, "system", "sys", 0)
	user := b.add(system, "user", "question", 0)
	first := b.add(user, "assistant", "answer A", 0)
	second := b.add(user, "assistant", "answer B", 1)
	b.add(first, "user", "follow-up", 0)

	roots := Materialize(b.nodes)
	require.Len(t, roots, 1)
	assert.Equal(t, system.Id, roots[0].Message.Id)

	require.Len(t, roots[0].Children, 1)
	userNode := roots[0].Children[0]
	assert.Equal(t, user.Id, userNode.Message.Id)

	require.Len(t, userNode.Children, 2)
	assert.Equal(t, first.Id, userNode.Children[0].Message.Id)
	assert.Equal(t, second.Id, userNode.Children[1].Message.Id)
}

func TestMaterializeCoversAllNodes(t *testing.T) {
	b := newNodeBuilder()
	root := b.add(nil, "user", "root", 0)
	child := b.add(root, "assistant", "child", 0)
	for i := 0; i < 5; i++ {
		b.add(child, "user", "branch", i)
	}

	roots := Materialize(b.nodes)

	seen := make(map[uuid.UUID]bool)
	stack := append([]*Node{}, roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		seen[n.Message.Id] = true
		stack = append(stack, n.Children...)
	}
	assert.Len(t, seen, len(b.nodes))
	for _, m := range b.nodes {
		assert.True(t, seen[m.Id], "node %s missing from materialized tree", m.Id)
	}
}

func TestMaterializeMultipleRoots(t *testing.T) {
	b := newNodeBuilder()
	system := b.add(nil, "system", "sys", 0)
	user := b.add(nil, "user", "first", 1)

	roots := Materialize(b.nodes)
	require.Len(t, roots, 2)
	assert.Equal(t, system.Id, roots[0].Message.Id)
	assert.Equal(t, user.Id, roots[1].Message.Id)
}

func TestMaterializeChildOrderTieBreak(t *testing.T) {
	b := newNodeBuilder()
	root := b.add(nil, "user", "root", 0)
	// Same branch order would violate the uniqueness invariant in storage,
	// but the sorter must still be deterministic: created_at breaks ties.
	early := b.add(root, "assistant", "early", 0)
	late := b.add(root, "assistant", "late", 0)

	roots := Materialize(b.nodes)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, early.Id, roots[0].Children[0].Message.Id)
	assert.Equal(t, late.Id, roots[0].Children[1].Message.Id)
}

func TestMaterializeDeepChain(t *testing.T) {
	b := newNodeBuilder()
	parent := b.add(nil, "user", "root", 0)
	for i := 0; i < 5000; i++ {
		parent = b.add(parent, "assistant", "turn", 0)
	}

	roots := Materialize(b.nodes)
	require.Len(t, roots, 1)

	depth := 0
	for n := roots[0]; len(n.Children) > 0; n = n.Children[0] {
		depth++
	}
	assert.Equal(t, 5000, depth)
}
