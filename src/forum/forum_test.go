package forum

import (
	"context"
	"testing"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/stretchr/testify/assert"
)

func intptr(v int) *int {
	return &v
}

func TestThreadsListKey(t *testing.T) {
	assert.Equal(t, "threads:all:all:1:25:recent", threadsListKey(ThreadsRequest{
		Page: 1, PerPage: 25,
	}))
	assert.Equal(t, "threads:cat-3:all:1:25:recent", threadsListKey(ThreadsRequest{
		CategoryID: intptr(3),
		Page:       1, PerPage: 25,
	}))
	assert.Equal(t, "threads:com-2:all:1:25:recent", threadsListKey(ThreadsRequest{
		CommunityID: intptr(2),
		Page:        1, PerPage: 25,
	}))
	assert.Equal(t, "threads:com-2-sub-4:all:2:10:popular", threadsListKey(ThreadsRequest{
		CommunityID:      intptr(2),
		SubcategoryID:    intptr(4),
		SortByPopularity: true,
		Page:             2, PerPage: 10,
	}))
	assert.Equal(t, "threads:all:diabetes,asthma:1:25:recent", threadsListKey(ThreadsRequest{
		ConditionTags: []string{"diabetes", "asthma"},
		Page:          1, PerPage: 25,
	}))
}

// List keys, detail keys, and the taxonomy key must never collide under
// substring invalidation, or clearing one class would clear another.
func TestInvalidationPatternsDoNotOverlap(t *testing.T) {
	store := cache.NewStore()
	store.Set("threads:all:all:1:25:recent", "list", time.Minute)
	store.Set(threadDetailKey(12), "detail", time.Minute)
	store.Set(taxonomyKey, "taxonomy", time.Minute)

	store.Invalidate("thread:")
	_, ok := store.Get(threadDetailKey(12))
	assert.False(t, ok)
	_, ok = store.Get("threads:all:all:1:25:recent")
	assert.True(t, ok)
	_, ok = store.Get(taxonomyKey)
	assert.True(t, ok)

	store.Invalidate("threads:")
	_, ok = store.Get("threads:all:all:1:25:recent")
	assert.False(t, ok)
	_, ok = store.Get(taxonomyKey)
	assert.True(t, ok)
}

func TestValidateSeed(t *testing.T) {
	assert.NoError(t, validateSeed(&forumdata.PromotionSeed{Title: "A study"}))
	assert.Error(t, validateSeed(&forumdata.PromotionSeed{Title: "   "}))
	assert.Error(t, validateSeed(&forumdata.PromotionSeed{
		Title:      "A study",
		CategoryID: intptr(1), CommunityID: intptr(2),
	}))

	tooMany := make([]string, models.MaxConditionTags+1)
	for i := range tooMany {
		tooMany[i] = string(rune('a' + i))
	}
	assert.Error(t, validateSeed(&forumdata.PromotionSeed{Title: "A study", ConditionTags: tooMany}))
}

func TestValidationBeforeStorage(t *testing.T) {
	// No database attached; every one of these must fail before storage is
	// ever touched.
	ctx := context.Background()
	s := NewService(nil, cache.NewStore(), nil)
	actor := &models.User{ID: 1, Username: "ada", Role: models.RolePatient}

	t.Run("login required", func(t *testing.T) {
		_, err := s.CreateThread(ctx, nil, CreateThreadRequest{})
		assert.ErrorIs(t, err, ErrLoginRequired)
		_, _, err = s.CreateReply(ctx, nil, "1", CreateReplyRequest{})
		assert.ErrorIs(t, err, ErrLoginRequired)
		_, _, err = s.VoteOnThread(ctx, nil, "1", models.VoteUp, nil)
		assert.ErrorIs(t, err, ErrLoginRequired)
		err = s.DeleteThread(ctx, nil, 1)
		assert.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("create thread", func(t *testing.T) {
		_, err := s.CreateThread(ctx, actor, CreateThreadRequest{
			Title: "  ", Body: "hi", CategoryID: intptr(1),
		})
		assert.True(t, IsValidationError(err))

		_, err = s.CreateThread(ctx, actor, CreateThreadRequest{
			Title: "Hello", Body: "",
			CategoryID: intptr(1),
		})
		assert.True(t, IsValidationError(err))

		_, err = s.CreateThread(ctx, actor, CreateThreadRequest{
			Title: "Hello", Body: "hi",
			CategoryID: intptr(1), CommunityID: intptr(2),
		})
		assert.True(t, IsValidationError(err))

		_, err = s.CreateThread(ctx, actor, CreateThreadRequest{
			Title: "Hello", Body: "hi",
		})
		assert.True(t, IsValidationError(err))

		_, err = s.CreateThread(ctx, actor, CreateThreadRequest{
			Title: "Hello", Body: "hi",
			CategoryID: intptr(1),
			Tags:       []string{"NOT VALID"},
		})
		assert.True(t, IsValidationError(err))
	})

	t.Run("list threads", func(t *testing.T) {
		_, err := s.ListThreads(ctx, ThreadsRequest{
			CategoryID: intptr(1), CommunityID: intptr(2),
		})
		assert.True(t, IsValidationError(err))

		_, err = s.ListThreads(ctx, ThreadsRequest{SubcategoryID: intptr(4)})
		assert.True(t, IsValidationError(err))

		_, err = s.ListThreads(ctx, ThreadsRequest{Page: -1})
		assert.True(t, IsValidationError(err))
	})

	t.Run("replies and votes", func(t *testing.T) {
		_, _, err := s.CreateReply(ctx, actor, "1", CreateReplyRequest{Body: "  "})
		assert.True(t, IsValidationError(err))

		_, _, err = s.VoteOnThread(ctx, actor, "1", "sideways", nil)
		assert.True(t, IsValidationError(err))

		_, err = s.VoteOnReply(ctx, actor, 1, "sideways")
		assert.True(t, IsValidationError(err))
	})
}

func TestTaxonomyLookups(t *testing.T) {
	tax := Taxonomy{
		Categories: []forumdata.CategoryAndStuff{
			{Category: models.Category{ID: 1, Slug: "oncology"}},
		},
		Communities: []forumdata.CommunityAndStuff{
			{Community: models.Community{ID: 2, Slug: "living-with-diabetes"}},
		},
		Subcategories: []*models.CommunitySubcategory{
			{ID: 4, CommunityID: 2, Slug: "treatment"},
		},
	}

	assert.True(t, tax.HasCategory(1))
	assert.False(t, tax.HasCategory(2))
	assert.True(t, tax.HasCommunity(2))
	assert.False(t, tax.HasCommunity(1))
	assert.True(t, tax.HasSubcategory(4, 2))
	assert.False(t, tax.HasSubcategory(4, 1))
}
