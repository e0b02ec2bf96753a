package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intp(i int) *int {
	return &i
}

func makeReply(id int, parent *int) *Reply {
	return &Reply{
		ID:       id,
		ThreadID: 1,
		ParentID: parent,
		Created:  time.Unix(int64(id), 0),
	}
}

func TestBuildReplyTree(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Len(t, BuildReplyTree(nil), 0)
	})

	t.Run("flat thread", func(t *testing.T) {
		replies := []*Reply{makeReply(1, nil), makeReply(2, nil), makeReply(3, nil)}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 3)
		assert.Equal(t, 1, roots[0].ID)
		assert.Equal(t, 2, roots[1].ID)
		assert.Equal(t, 3, roots[2].ID)
	})

	t.Run("nesting keeps sibling order", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, nil),
			makeReply(2, intp(1)),
			makeReply(3, intp(1)),
			makeReply(4, intp(2)),
		}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 1)
		root := roots[0]
		assert.Equal(t, 1, root.ID)
		assert.Len(t, root.Children, 2)
		assert.Equal(t, 2, root.Children[0].ID)
		assert.Equal(t, 3, root.Children[1].ID)
		assert.Len(t, root.Children[0].Children, 1)
		assert.Equal(t, 4, root.Children[0].Children[0].ID)
		assert.Equal(t, root, root.Children[0].Parent)
	})

	t.Run("unknown parents become roots", func(t *testing.T) {
		replies := []*Reply{
			makeReply(10, intp(999)),
			makeReply(11, intp(998)),
		}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 2)
		assert.Equal(t, 10, roots[0].ID)
		assert.Equal(t, 11, roots[1].ID)
	})

	t.Run("parent cycle terminates", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, intp(2)),
			makeReply(2, intp(1)),
			makeReply(3, nil),
		}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 1)
		assert.Equal(t, 3, roots[0].ID)
		assert.Equal(t, 1, CountReplyTree(roots))
	})

	t.Run("cycle only", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, intp(2)),
			makeReply(2, intp(1)),
		}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 0)
		assert.Equal(t, 0, CountReplyTree(roots))
	})

	t.Run("deep chain", func(t *testing.T) {
		const depth = 10000
		replies := make([]*Reply, depth)
		replies[0] = makeReply(1, nil)
		for i := 1; i < depth; i += 1 {
			replies[i] = makeReply(i+1, intp(i))
		}
		roots := BuildReplyTree(replies)
		assert.Len(t, roots, 1)
		assert.Equal(t, depth, CountReplyTree(roots))

		maxDepth := 0
		WalkReplyTree(roots, func(node *ReplyTreeNode, d int) {
			if d > maxDepth {
				maxDepth = d
			}
		})
		assert.Equal(t, depth-1, maxDepth)
	})
}

func TestWalkReplyTreeOrder(t *testing.T) {
	replies := []*Reply{
		makeReply(1, nil),
		makeReply(2, intp(1)),
		makeReply(3, intp(2)),
		makeReply(4, intp(1)),
		makeReply(5, nil),
	}
	roots := BuildReplyTree(replies)

	var visited []int
	WalkReplyTree(roots, func(node *ReplyTreeNode, depth int) {
		visited = append(visited, node.ID)
	})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, visited)
}

func TestSortRepliesByPopularity(t *testing.T) {
	t.Run("reorders by score", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, nil),
			makeReply(2, nil),
			makeReply(3, nil),
		}
		replies[1].Upvoters = []int{7, 8}
		replies[2].Upvoters = []int{9}

		SortRepliesByPopularity(replies)
		assert.Equal(t, 2, replies[0].ID)
		assert.Equal(t, 3, replies[1].ID)
		assert.Equal(t, 1, replies[2].ID)
	})

	t.Run("stable for equal scores", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, nil),
			makeReply(2, nil),
			makeReply(3, nil),
		}
		SortRepliesByPopularity(replies)
		assert.Equal(t, 1, replies[0].ID)
		assert.Equal(t, 2, replies[1].ID)
		assert.Equal(t, 3, replies[2].ID)
	})

	t.Run("children stay attached after pre-sort", func(t *testing.T) {
		replies := []*Reply{
			makeReply(1, nil),
			makeReply(2, intp(1)),
			makeReply(3, nil),
		}
		replies[1].Upvoters = []int{7, 8, 9}
		replies[2].Upvoters = []int{7}

		SortRepliesByPopularity(replies)
		roots := BuildReplyTree(replies)

		assert.Len(t, roots, 2)
		assert.Equal(t, 3, roots[0].ID)
		assert.Equal(t, 1, roots[1].ID)
		assert.Len(t, roots[1].Children, 1)
		assert.Equal(t, 2, roots[1].Children[0].ID)
	})
}

func TestVoteScore(t *testing.T) {
	reply := makeReply(1, nil)
	reply.Upvoters = []int{101, 102}
	reply.Downvoters = []int{103}
	assert.Equal(t, 1, reply.VoteScore())

	// The same voter moving sides changes the score by two.
	reply.Upvoters = []int{102}
	reply.Downvoters = []int{103, 101}
	assert.Equal(t, -1, reply.VoteScore())

	thread := Thread{Upvoters: []int{101, 101, 101}}
	assert.Equal(t, 3, thread.VoteScore())
}
