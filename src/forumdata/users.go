package forumdata

import (
	"context"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

type UsersQuery struct {
	// Ignored when using FetchUser
	UserIDs   []int    // if empty, all users
	Usernames []string // if empty, all users
}

/*
Fetches users and their researcher profiles from the database according to
all the given query params. Users without a researcher profile come back
with a nil Profile.
*/
func FetchUsers(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q UsersQuery,
) ([]*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch users")
	defer perf.EndBlock()

	for i := range q.Usernames {
		q.Usernames[i] = strings.ToLower(q.Usernames[i])
	}

	type userRow struct {
		User    models.User               `db:"forum_user"`
		Profile *models.ResearcherProfile `db:"profile"`
	}

	var qb db.QueryBuilder
	qb.Add(`
		---- Fetch users
		SELECT $columns
		FROM
			forum_user
			LEFT JOIN researcher_profile AS profile ON profile.user_id = forum_user.id
		WHERE
			TRUE
	`)
	if len(q.UserIDs) > 0 {
		qb.Add(`AND forum_user.id = ANY($?)`, q.UserIDs)
	}
	if len(q.Usernames) > 0 {
		qb.Add(`AND LOWER(forum_user.username) = ANY($?)`, q.Usernames)
	}

	userRows, err := db.Query[userRow](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch users")
	}

	result := make([]*models.User, len(userRows))
	for i, row := range userRows {
		user := row.User
		user.Profile = row.Profile
		result[i] = &user
	}

	return result, nil
}

/*
Fetches a single user and their researcher profile. A wrapper around
FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUser(
	ctx context.Context,
	dbConn db.ConnOrTx,
	userID int,
) (*models.User, error) {
	users, err := FetchUsers(ctx, dbConn, UsersQuery{
		UserIDs: []int{userID},
	})
	if err != nil {
		return nil, oops.New(err, "failed to fetch user")
	}

	if len(users) == 0 {
		return nil, db.NotFound
	}

	return users[0], nil
}

/*
Fetches a single user by username (case-insensitive). A wrapper around
FetchUsers.

Returns db.NotFound if no result is found.
*/
func FetchUserByUsername(
	ctx context.Context,
	dbConn db.ConnOrTx,
	username string,
) (*models.User, error) {
	users, err := FetchUsers(ctx, dbConn, UsersQuery{
		Usernames: []string{username},
	})
	if err != nil {
		return nil, oops.New(err, "failed to fetch user by username")
	}

	if len(users) == 0 {
		return nil, db.NotFound
	}

	return users[0], nil
}
