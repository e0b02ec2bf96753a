package models

import (
	"sort"
	"time"
)

type Reply struct {
	ID int `db:"id"`

	ThreadID int  `db:"thread_id"`
	ParentID *int `db:"parent_id"`

	AuthorID   int      `db:"author_id"`
	AuthorRole UserRole `db:"author_role"`

	BodyRaw  string `db:"body_raw"`
	BodyHTML string `db:"body_html"`

	Upvoters   []int `db:"upvoters"`
	Downvoters []int `db:"downvoters"`

	Created time.Time `db:"created"`
	Updated time.Time `db:"updated"`
}

func (r *Reply) VoteScore() int {
	return len(r.Upvoters) - len(r.Downvoters)
}

type ReplyTreeNode struct {
	Reply
	Parent   *ReplyTreeNode
	Children []*ReplyTreeNode
}

// BuildReplyTree turns a flat list of replies into a forest. Storage hands us
// replies in created order, and both roots and children keep that order. A
// reply whose parent is not in the list becomes a root; this tolerates
// partially-deleted ancestry. Replies that form a parent cycle end up as
// children of each other and reachable from no root, so traversal never loops.
func BuildReplyTree(replies []*Reply) []*ReplyTreeNode {
	nodes := make(map[int]*ReplyTreeNode, len(replies))
	for _, r := range replies {
		nodes[r.ID] = &ReplyTreeNode{Reply: *r}
	}

	var roots []*ReplyTreeNode
	for _, r := range replies {
		// NOTE(asaf): Walking the input slice here, not the map, so that
		// sibling order matches the order replies came in.
		node := nodes[r.ID]
		if r.ParentID != nil {
			if parent, ok := nodes[*r.ParentID]; ok {
				node.Parent = parent
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// SortRepliesByPopularity reorders the flat list by vote score, highest
// first. The sort is stable, so equally-scored replies keep their created
// order. Call this before BuildReplyTree; reordering nodes after assembly
// would detach children from their siblings' order.
func SortRepliesByPopularity(replies []*Reply) {
	sort.SliceStable(replies, func(i, j int) bool {
		return replies[i].VoteScore() > replies[j].VoteScore()
	})
}

// WalkReplyTree visits every node reachable from roots, depth first,
// children in order. Iterative so that thousand-deep reply chains do not
// blow the stack.
func WalkReplyTree(roots []*ReplyTreeNode, visit func(node *ReplyTreeNode, depth int)) {
	type frame struct {
		node  *ReplyTreeNode
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i -= 1 {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(f.node, f.depth)
		for i := len(f.node.Children) - 1; i >= 0; i -= 1 {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// CountReplyTree returns the number of nodes reachable from roots.
func CountReplyTree(roots []*ReplyTreeNode) int {
	count := 0
	WalkReplyTree(roots, func(node *ReplyTreeNode, depth int) {
		count += 1
	})
	return count
}
