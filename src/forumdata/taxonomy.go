package forumdata

import (
	"context"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

// The category/community taxonomy is seeded reference data. Nothing in the
// API mutates it, so these are plain list fetches with thread counts bolted
// on for the directory views.

type CategoryAndStuff struct {
	Category    models.Category `db:"category"`
	ThreadCount int             `db:"threads.count"`
}

func FetchCategories(ctx context.Context, dbConn db.ConnOrTx) ([]CategoryAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch categories")
	defer perf.EndBlock()

	categories, err := db.Query[CategoryAndStuff](ctx, dbConn,
		`
		---- Fetch categories
		SELECT $columns
		FROM
			category
			LEFT JOIN (
				SELECT category_id, COUNT(*) AS count
				FROM thread
				GROUP BY category_id
			) AS threads ON threads.category_id = category.id
		ORDER BY category.sort, category.id
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch categories")
	}

	result := make([]CategoryAndStuff, len(categories))
	for i, c := range categories {
		result[i] = *c
	}
	return result, nil
}

type CommunityAndStuff struct {
	Community   models.Community `db:"community"`
	ThreadCount int              `db:"threads.count"`
}

func FetchCommunities(ctx context.Context, dbConn db.ConnOrTx) ([]CommunityAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch communities")
	defer perf.EndBlock()

	communities, err := db.Query[CommunityAndStuff](ctx, dbConn,
		`
		---- Fetch communities
		SELECT $columns
		FROM
			community
			LEFT JOIN (
				SELECT community_id, COUNT(*) AS count
				FROM thread
				GROUP BY community_id
			) AS threads ON threads.community_id = community.id
		ORDER BY community.sort, community.id
		`,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch communities")
	}

	result := make([]CommunityAndStuff, len(communities))
	for i, c := range communities {
		result[i] = *c
	}
	return result, nil
}

func FetchSubcategories(ctx context.Context, dbConn db.ConnOrTx, communityIDs []int) ([]*models.CommunitySubcategory, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch community subcategories")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Fetch community subcategories
		SELECT $columns
		FROM community_subcategory
		WHERE TRUE
	`)
	if len(communityIDs) > 0 {
		qb.Add(`AND community_id = ANY($?)`, communityIDs)
	}
	qb.Add(`ORDER BY sort, id`)

	subcategories, err := db.Query[models.CommunitySubcategory](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch community subcategories")
	}

	return subcategories, nil
}
