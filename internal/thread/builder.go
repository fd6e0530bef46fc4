package thread

import (
	"github.com/sikdanlog/sikdan-go/internal/constant"
	"github.com/sikdanlog/sikdan-go/internal/model"
	"go.uber.org/zap"
)

// DeletedPlaceholder replaces the body of a soft-deleted comment at render
// time. The comment keeps its place in the thread and its children.
const DeletedPlaceholder = "This comment has been deleted"

// Node is one comment with its resolved children. Children keep the order
// the flat list arrived in.
type Node struct {
	model.Comment
	Depth    int
	Children []*Node
}

// CanReply reports whether the reply affordance should still be offered at
// this node's depth. Rendering itself has no depth cap.
func (n *Node) CanReply() bool {
	return n.Depth < constant.MAX_REPLY_DEPTH
}

func (n *Node) DisplayBody() string {
	if n.IsDeleted() {
		return DeletedPlaceholder
	}
	return n.Body
}

// Builder turns a post's flat comment list into a forest. Building is a pure
// projection and safe to rerun on every refetch; the logger only reports
// data inconsistencies, it never changes the output.
type Builder struct {
	Log *zap.Logger
}

func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{Log: log}
}

// Build groups comments under their parents in a single indexed pass.
// A comment whose parent is absent from the list (hard-expired parent,
// cross-post corruption) is promoted to a root rather than dropped.
// Duplicate view hashes resolve last-one-wins.
func (b *Builder) Build(comments []model.Comment) []*Node {
	if len(comments) == 0 {
		return []*Node{}
	}

	winner := make(map[string]int, len(comments))
	for i, c := range comments {
		winner[c.ViewHash] = i
	}

	nodes := make(map[string]*Node, len(winner))
	ordered := make([]*Node, 0, len(winner))
	for i, c := range comments {
		if winner[c.ViewHash] != i {
			continue
		}
		n := &Node{Comment: c}
		nodes[c.ViewHash] = n
		ordered = append(ordered, n)
	}

	roots := make([]*Node, 0, len(ordered))
	for _, n := range ordered {
		if n.ParentHash == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*n.ParentHash]
		if !ok || parent == n {
			b.Log.Debug("comment parent not found in thread, promoting to root",
				zap.String("viewHash", n.ViewHash),
				zap.String("parentHash", *n.ParentHash),
			)
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	// Depth assignment with an explicit queue so arbitrarily deep chains
	// never hit a recursion limit.
	queue := append([]*Node(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, child := range n.Children {
			child.Depth = n.Depth + 1
		}
		queue = append(queue, n.Children...)
	}

	return roots
}
