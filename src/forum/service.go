package forum

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

/*
 * The forum service. Owns the read cache and its invalidation, resolves
 * placeholder references, and fans out notifications. Storage is the source
 * of truth for everything; the cache only ever holds results that storage
 * already returned.
 *
 * Cache keys use three shapes: "threads:{scope}:{conditions}:{page}:{perPage}:{sort}"
 * for list pages, "thread:{id}" for detail bundles, and "categories" for the
 * taxonomy. Invalidation matches on substrings, so "threads:" clears every
 * list without touching detail bundles.
 */

type Service struct {
	conn     *pgxpool.Pool
	cache    *cache.Store
	notifier *notify.Dispatcher

	// Collapses concurrent loads of the same cache key into one storage
	// round trip.
	loads singleflight.Group

	ttl time.Duration
}

func NewService(conn *pgxpool.Pool, cacheStore *cache.Store, notifier *notify.Dispatcher) *Service {
	return &Service{
		conn:     conn,
		cache:    cacheStore,
		notifier: notifier,
		ttl:      utils.OrDefault(config.Config.Forum.CacheTTL, 60*time.Second),
	}
}

func (s *Service) Cache() *cache.Store {
	return s.cache
}

/*
Invalidation always runs after the storage write it protects has committed,
and it takes no context: a request canceled between its commit and here must
still clear the stale entries, or the cache would serve dead data until the
next unrelated write.
*/
func (s *Service) invalidate(patterns ...string) {
	for _, pattern := range patterns {
		s.cache.Invalidate(pattern)
	}
}

func threadDetailKey(threadID int) string {
	return fmt.Sprintf("thread:%d", threadID)
}

const taxonomyKey = "categories"

/*
Resolves a thread reference from a URL into a durable thread. A numeric ref
is a plain storage id. Anything else is a placeholder key from the research
feed: if some earlier interaction already promoted it, return that thread,
and otherwise promote it now using the supplied seed, which the very first
interaction must carry (ErrSeedRequired if it doesn't).

Two racing first interactions both reach promotion; the unique index on the
promotion key picks a winner and the loser returns the winner's thread.
*/
func (s *Service) ResolveThreadRef(
	ctx context.Context,
	ref string,
	seed *forumdata.PromotionSeed,
) (*models.Thread, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		res, err := forumdata.FetchThread(ctx, s.conn, id, forumdata.ThreadsQuery{})
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return nil, db.NotFound
			}
			return nil, oops.New(err, "failed to fetch thread by id")
		}
		thread := res.Thread
		return &thread, nil
	}

	promoted, err := forumdata.FetchThreadByPromotionKey(ctx, s.conn, ref)
	if err == nil {
		thread := promoted.Thread
		return &thread, nil
	}
	if !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to fetch thread by promotion key")
	}

	if seed == nil {
		return nil, ErrSeedRequired
	}
	if err := validateSeed(seed); err != nil {
		return nil, err
	}

	serviceAccount, err := forumdata.FetchOrCreateServiceAccount(ctx, s.conn,
		config.Config.Promotion.ServiceUsername,
		config.Config.Promotion.ServiceDisplayName,
	)
	if err != nil {
		return nil, oops.New(err, "failed to resolve promotion service account")
	}

	thread, err := forumdata.PromoteThread(ctx, s.conn, serviceAccount, ref, *seed)
	if err != nil {
		return nil, oops.New(err, "failed to promote placeholder thread")
	}

	s.invalidate("threads:", "thread:", taxonomyKey)

	logging.ExtractLogger(ctx).Info().
		Str("promotion key", ref).
		Int("thread", thread.ID).
		Msg("Promoted a placeholder into a durable thread")

	return thread, nil
}

func validateSeed(seed *forumdata.PromotionSeed) error {
	if strings.TrimSpace(seed.Title) == "" {
		return invalid("seed title must not be empty")
	}
	if len(models.NormalizeConditionTags(seed.ConditionTags)) > models.MaxConditionTags {
		return invalid("a thread can have at most %d condition tags", models.MaxConditionTags)
	}
	if seed.CategoryID != nil && seed.CommunityID != nil {
		return invalid("a seed belongs to a category or a community, not both")
	}
	return nil
}
