package website

import (
	"strconv"
	"testing"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intptr(i int) *int {
	return &i
}

func TestReplyTreeToPayload(t *testing.T) {
	alice := &models.User{ID: 1, Username: "alice"}
	bob := &models.User{ID: 2, Username: "bob"}

	flat := []forumdata.ReplyAndStuff{
		{Reply: models.Reply{ID: 1, ThreadID: 9, AuthorID: 1}, Author: alice},
		{Reply: models.Reply{ID: 2, ThreadID: 9, ParentID: intptr(1), AuthorID: 2, Upvoters: []int{1}}, Author: bob},
		{Reply: models.Reply{ID: 3, ThreadID: 9, ParentID: intptr(1), AuthorID: 1}, Author: alice},
		{Reply: models.Reply{ID: 4, ThreadID: 9, ParentID: intptr(2), AuthorID: 1}, Author: alice},
	}
	pointers := make([]*models.Reply, len(flat))
	for i := range flat {
		pointers[i] = &flat[i].Reply
	}

	roots := models.BuildReplyTree(pointers)
	payload := ReplyTreeToPayload(roots, flat)

	require.Len(t, payload, 1)
	root := payload[0]
	assert.Equal(t, 1, root.ID)
	assert.Equal(t, "alice", root.Author.Username)

	require.Len(t, root.Children, 2)
	assert.Equal(t, 2, root.Children[0].ID)
	assert.Equal(t, "bob", root.Children[0].Author.Username)
	assert.Equal(t, 1, root.Children[0].Score)
	assert.Equal(t, 3, root.Children[1].ID)

	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, 4, root.Children[0].Children[0].ID)
}

func TestReplyTreeToPayloadDeepChain(t *testing.T) {
	const depth = 10000

	flat := make([]forumdata.ReplyAndStuff, depth)
	pointers := make([]*models.Reply, depth)
	for i := 0; i < depth; i += 1 {
		reply := models.Reply{ID: i + 1, ThreadID: 1, AuthorID: 1}
		if i > 0 {
			reply.ParentID = intptr(i)
		}
		flat[i] = forumdata.ReplyAndStuff{Reply: reply}
		pointers[i] = &flat[i].Reply
	}

	payload := ReplyTreeToPayload(models.BuildReplyTree(pointers), flat)

	require.Len(t, payload, 1)
	node := payload[0]
	converted := 1
	for len(node.Children) > 0 {
		require.Len(t, node.Children, 1)
		node = node.Children[0]
		converted += 1
	}
	assert.Equal(t, depth, converted)
}

func TestThreadToPayload(t *testing.T) {
	displayName := "Original Headline"
	key := "feed-item-1"
	thread := forumdata.ThreadAndStuff{
		Thread: models.Thread{
			ID:            12,
			CategoryID:    intptr(3),
			AuthorID:      1,
			Title:         "original headline",
			DisplayName:   &displayName,
			PromotionKey:  &key,
			Upvoters:      []int{1, 2, 3},
			Downvoters:    []int{4},
			ConditionTags: []string{"diabetes"},
		},
		Author:     &models.User{ID: 1, Username: "feed"},
		ReplyCount: 7,
	}

	p := ThreadToPayload(thread)
	assert.Equal(t, 12, p.ID)
	assert.Equal(t, 3, *p.Category)
	assert.Nil(t, p.Community)
	assert.Equal(t, "Original Headline", p.DisplayName)
	assert.True(t, p.Promoted)
	assert.Equal(t, 2, p.Score)
	assert.Equal(t, 3, p.Upvotes)
	assert.Equal(t, 1, p.Downvotes)
	assert.Equal(t, 7, p.ReplyCount)
	assert.Contains(t, p.Url, "/threads/"+strconv.Itoa(12))

	// Storage-only fields must not leak into the payload type; spot-check
	// that empty tag arrays serialize as arrays.
	assert.NotNil(t, p.Tags)
	assert.Len(t, p.Tags, 0)
}
