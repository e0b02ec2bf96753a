package migration

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/jobs"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/migrations"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/website"
	lorem "github.com/HandmadeNetwork/golorem"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/spf13/cobra"
)

var bareSeed bool

func init() {
	seedCommand := &cobra.Command{
		Use:   "seed",
		Short: "Reset the database and fill it with sample data",
		Run: func(cmd *cobra.Command, args []string) {
			ResetDB()
			if bareSeed {
				BareMinimumSeed()
			} else {
				SampleSeed()
			}
		},
	}
	seedCommand.Flags().BoolVar(&bareSeed, "bare", false, "Seed only what the site needs to boot, no sample content")

	seedFromFileCommand := &cobra.Command{
		Use:   "seedfile <filename> <after migration id>",
		Short: "Resets the db, runs migrations up to and including <after migration id>, and restores the seed file.",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a seed file and migration id.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			seedFile := args[0]

			afterMigration, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				fmt.Printf("ERROR: bad version string: %v", err)
				os.Exit(1)
			}

			SeedFromFile(seedFile, types.MigrationVersion(afterMigration))
		},
	}

	website.WebsiteCommand.AddCommand(seedCommand)
	website.WebsiteCommand.AddCommand(seedFromFileCommand)
}

// NOTE(asaf): The db role specified in the config must have the CREATEDB attribute! `ALTER ROLE cbadmin WITH CREATEDB;`
func ResetDB() {
	fmt.Println("Resetting database...")

	ctx := context.Background()
	// NOTE(asaf): We connect to db "template1", because we have to connect to something other than our own db in order to drop it.
	template1DSN := fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s",
		config.Config.Postgres.User,
		config.Config.Postgres.Password,
		config.Config.Postgres.Hostname,
		config.Config.Postgres.Port,
		"template1", // NOTE(asaf): template1 must always exist in postgres, as it's the db that gets cloned when you create new DBs
	)
	// NOTE(asaf): We have to use the low-level API of pgconn, because the pgx Exec always wraps the query in a transaction.
	lowLevelConn, err := pgconn.Connect(ctx, template1DSN)
	if err != nil {
		panic(fmt.Errorf("failed to connect to db: %w", err))
	}
	defer lowLevelConn.Close(ctx)

	result := lowLevelConn.ExecParams(ctx, fmt.Sprintf("DROP DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	if err != nil {
		var pgErr *pgconn.PgError
		if !(errors.As(err, &pgErr) && pgErr.SQLState() == "3D000") { // NOTE(asaf): 3D000 means "Database does not exist"
			panic(fmt.Errorf("failed to drop db: %w", err))
		}
	}

	result = lowLevelConn.ExecParams(ctx, fmt.Sprintf("CREATE DATABASE %s", config.Config.Postgres.DbName), nil, nil, nil, nil)
	_, err = result.Close()
	if err != nil {
		panic(fmt.Errorf("failed to create db: %w", err))
	}
}

// Applies a cloned db to the local db.
// Applies the seed after the migration specified in `afterMigration`.
func SeedFromFile(seedFile string, afterMigration types.MigrationVersion) {
	file, err := os.Open(seedFile)
	if err != nil {
		panic(fmt.Errorf("couldn't open seed file %s: %w", seedFile, err))
	}
	file.Close()

	if migrations.All[afterMigration] == nil {
		panic(fmt.Errorf("could not find migration: %s", afterMigration))
	}

	ResetDB()

	fmt.Println("Running migrations...")
	Migrate(afterMigration)

	fmt.Println("Executing seed...")
	cmd := exec.Command("pg_restore",
		"--single-transaction",
		"--data-only",
		"--dbname", config.Config.Postgres.DSN(),
		seedFile,
	)
	fmt.Println("Running command:", cmd)
	if output, err := cmd.CombinedOutput(); err != nil {
		fmt.Print(string(output))
		panic(fmt.Errorf("failed to execute seed: %w", err))
	}

	fmt.Println("Done! You may want to migrate forward from here.")
	ListMigrations()
}

// Fixed ids assigned by BareMinimumSeed. Sample data references these
// directly instead of looking slugs back up.
const (
	seedCategoryClinicalResearch = 1
	seedCategoryTreatmentDev     = 2
	seedCategoryResearchFeed     = 3

	seedCommunityDiabetes = 1
	seedCommunityHeart    = 2
	seedCommunityMigraine = 3

	seedSubcatDailyManagement = 1
	seedSubcatDietNutrition   = 2
	seedSubcatRecovery        = 3
)

// Creates only what's necessary to get the API running. Not very useful for
// local dev on its own; sample data makes things a lot better.
func BareMinimumSeed() {
	Migrate(LatestVersion())

	ctx := context.Background()
	conn := db.NewConnWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		panic(err)
	}
	defer tx.Rollback(ctx)

	fmt.Println("Creating taxonomy...")
	_, err = tx.Exec(ctx, `
		INSERT INTO category (id, slug, name, blurb, sort) VALUES
			(1, 'clinical-research', 'Clinical Research', 'Study design, recruitment, and results.', 1),
			(2, 'treatment-development', 'Treatment Development', 'From bench to bedside.', 2),
			(3, 'research-feed', 'Research Feed', 'Highlights promoted from partner feeds.', 3);

		INSERT INTO community (id, slug, name, blurb, sort) VALUES
			(1, 'living-with-diabetes', 'Living with Diabetes', 'Day-to-day life with type 1 and type 2.', 1),
			(2, 'heart-health', 'Heart Health', 'Blood pressure, cholesterol, and recovery.', 2),
			(3, 'migraine-support', 'Migraine Support', 'Coping strategies and treatment experiences.', 3);

		INSERT INTO community_subcategory (id, community_id, slug, name, sort) VALUES
			(1, 1, 'daily-management', 'Daily Management', 1),
			(2, 1, 'diet-and-nutrition', 'Diet and Nutrition', 2),
			(3, 2, 'recovery', 'Recovery', 1);

		-- Explicit ids skip the sequences; catch them up so later inserts
		-- don't collide.
		SELECT setval('category_id_seq', (SELECT MAX(id) FROM category));
		SELECT setval('community_id_seq', (SELECT MAX(id) FROM community));
		SELECT setval('community_subcategory_id_seq', (SELECT MAX(id) FROM community_subcategory));
	`)
	if err != nil {
		panic(err)
	}

	fmt.Println("Creating promotion service account...")
	_, err = forumdata.FetchOrCreateServiceAccount(ctx, tx,
		utils.OrDefault(config.Config.Promotion.ServiceUsername, "research-feed"),
		utils.OrDefault(config.Config.Promotion.ServiceDisplayName, "Collabiora Research Feed"),
	)
	if err != nil {
		panic(err)
	}

	err = tx.Commit(ctx)
	if err != nil {
		panic(err)
	}
}

// Fills the database with sample data for local dev. All content goes
// through the forum service so markdown rendering, cache invalidation,
// promotion, and notification fan-out run for real.
func SampleSeed() {
	BareMinimumSeed()

	ctx := context.Background()
	conn := db.NewConnPoolWithConfig(config.PostgresConfig{
		LogLevel: tracelog.LogLevelWarn,
	})
	defer conn.Close()

	notifier := notify.NewDispatcher(conn)
	notifierJob := notifier.Run()
	svc := forum.NewService(conn, cache.NewStore(), notifier)

	fmt.Println("Creating users...")
	admin := seedUser(ctx, conn, models.User{Username: "admin", DisplayName: "Site Admin", Role: models.RoleResearcher, IsAdmin: true})
	patel := seedUser(ctx, conn, models.User{Username: "drpatel", DisplayName: "Dr. Priya Patel", Role: models.RoleResearcher})
	seedProfile(ctx, conn, patel, []string{"type 2 diabetes", "hypertension"}, []string{"chronic kidney disease"})
	chen := seedUser(ctx, conn, models.User{Username: "drchen", DisplayName: "Dr. Wei Chen", Role: models.RoleResearcher})
	seedProfile(ctx, conn, chen, []string{"migraine"}, []string{"epilepsy", "type 2 diabetes"})
	alice := seedUser(ctx, conn, models.User{Username: "alice", DisplayName: "Alice", Role: models.RolePatient})
	bob := seedUser(ctx, conn, models.User{Username: "bob", DisplayName: "Bob", Role: models.RolePatient})
	carol := seedUser(ctx, conn, models.User{Username: "carol", DisplayName: "Carol", Role: models.RolePatient})
	users := []*models.User{admin, patel, chen, alice, bob, carol}

	fmt.Println("Creating sessions...")
	for _, user := range users {
		seedSession(ctx, conn, user)
	}

	fmt.Println("Creating threads...")
	t1, err := svc.CreateThread(ctx, alice, forum.CreateThreadRequest{
		CommunityID:   idptr(seedCommunityDiabetes),
		SubcategoryID: idptr(seedSubcatDailyManagement),
		Title:         "Continuous glucose monitors and exercise",
		Body:          sampleBody(),
		Tags:          []string{"question", "devices"},
		ConditionTags: []string{"Type 2 Diabetes"},
	})
	if err != nil {
		panic(err)
	}
	t2, err := svc.CreateThread(ctx, bob, forum.CreateThreadRequest{
		CommunityID:   idptr(seedCommunityHeart),
		SubcategoryID: idptr(seedSubcatRecovery),
		Title:         "Six months after my bypass",
		Body:          sampleBody(),
		Tags:          []string{"story"},
		ConditionTags: []string{"hypertension"},
	})
	if err != nil {
		panic(err)
	}
	t3, err := svc.CreateThread(ctx, patel, forum.CreateThreadRequest{
		CategoryID:              idptr(seedCategoryClinicalResearch),
		Title:                   "Recruiting: phase II trial for SGLT2 combination therapy",
		Body:                    sampleBody(),
		Tags:                    []string{"recruitment"},
		ConditionTags:           []string{"type 2 diabetes"},
		OnlyResearchersCanReply: true,
	})
	if err != nil {
		panic(err)
	}
	t4, err := svc.CreateThread(ctx, carol, forum.CreateThreadRequest{
		CommunityID:   idptr(seedCommunityMigraine),
		Title:         "Weather changes as a trigger",
		Body:          sampleBody(),
		ConditionTags: []string{"Migraine"},
	})
	if err != nil {
		panic(err)
	}

	fmt.Println("Creating replies...")
	r1, _, err := svc.CreateReply(ctx, patel, strconv.Itoa(t1.ID), forum.CreateReplyRequest{
		Body: lorem.Sentence(8, 16),
	})
	if err != nil {
		panic(err)
	}
	_, _, err = svc.CreateReply(ctx, alice, strconv.Itoa(t1.ID), forum.CreateReplyRequest{
		ParentID: &r1.ID,
		Body:     lorem.Sentence(5, 12),
	})
	if err != nil {
		panic(err)
	}
	r3, _, err := svc.CreateReply(ctx, bob, strconv.Itoa(t1.ID), forum.CreateReplyRequest{
		ParentID: &r1.ID,
		Body:     lorem.Sentence(5, 12),
	})
	if err != nil {
		panic(err)
	}
	_, _, err = svc.CreateReply(ctx, patel, strconv.Itoa(t1.ID), forum.CreateReplyRequest{
		ParentID: &r3.ID,
		Body:     lorem.Sentence(5, 12),
	})
	if err != nil {
		panic(err)
	}
	_, _, err = svc.CreateReply(ctx, chen, strconv.Itoa(t4.ID), forum.CreateReplyRequest{
		Body: lorem.Sentence(8, 16),
	})
	if err != nil {
		panic(err)
	}
	_, _, err = svc.CreateReply(ctx, chen, strconv.Itoa(t3.ID), forum.CreateReplyRequest{
		Body: lorem.Sentence(8, 16),
	})
	if err != nil {
		panic(err)
	}

	fmt.Println("Promoting feed items...")
	replyKey := "feed-" + uuid.New().String()
	_, promoted, err := svc.CreateReply(ctx, chen, replyKey, forum.CreateReplyRequest{
		Body: lorem.Sentence(8, 16),
		Seed: &forumdata.PromotionSeed{
			Title:                   "glp-1 outcomes in long-term cohorts",
			Body:                    sampleBody(),
			ConditionTags:           []string{"type 2 diabetes"},
			VoteScore:               12,
			CategoryID:              idptr(seedCategoryResearchFeed),
			IsResearcherForum:       true,
			OnlyResearchersCanReply: true,
			DisplayName:             "GLP-1 Outcomes in Long-Term Cohorts",
		},
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("  %s -> thread %d\n", replyKey, promoted.ID)

	voteKey := "feed-" + uuid.New().String()
	_, promoted2, err := svc.VoteOnThread(ctx, patel, voteKey, models.VoteUp, &forumdata.PromotionSeed{
		Title:         "meta-analysis of cgm accuracy studies",
		Body:          sampleBody(),
		ConditionTags: []string{"type 2 diabetes", "type 1 diabetes"},
		VoteScore:     4,
		CategoryID:    idptr(seedCategoryResearchFeed),
		DisplayName:   "Meta-Analysis of CGM Accuracy Studies",
	})
	if err != nil {
		panic(err)
	}
	fmt.Printf("  %s -> thread %d\n", voteKey, promoted2.ID)

	fmt.Println("Casting votes...")
	threads := []*models.Thread{t1, t2, t3, t4, promoted}
	for _, thread := range threads {
		for _, user := range users {
			if user.ID == thread.AuthorID || rand.Intn(3) == 0 {
				continue
			}
			_, _, err := svc.VoteOnThread(ctx, user, strconv.Itoa(thread.ID), randomVote(), nil)
			if err != nil {
				panic(err)
			}
		}
	}
	for _, user := range []*models.User{alice, bob, admin} {
		_, err := svc.VoteOnReply(ctx, user, r1.ID, models.VoteUp)
		if err != nil {
			panic(err)
		}
	}

	// Fan-out happens on the dispatcher goroutine; give it a moment to
	// drain before canceling, since cancel drops anything still queued.
	time.Sleep(1 * time.Second)
	jobs.Jobs{notifierJob}.CancelAndWait(5 * time.Second)

	fmt.Println()
	fmt.Println("Done! Sample sessions for local testing:")
	for _, user := range users {
		fmt.Printf("  %-8s Authorization: Bearer dev-%s\n", user.Username, user.Username)
	}
}

func seedUser(ctx context.Context, conn db.ConnOrTx, input models.User) *models.User {
	user, err := db.QueryOne[models.User](ctx, conn,
		`
		INSERT INTO forum_user (username, display_name, role, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING $columns
		`,
		input.Username,
		input.DisplayName,
		utils.OrDefault(input.Role, models.RolePatient),
		input.IsAdmin,
	)
	if err != nil {
		panic(err)
	}

	return user
}

func seedProfile(ctx context.Context, conn db.ConnOrTx, user *models.User, specialties []string, interests []string) {
	_, err := conn.Exec(ctx,
		`
		INSERT INTO researcher_profile (user_id, specialties, interests, bio)
		VALUES ($1, $2, $3, $4)
		`,
		user.ID, specialties, interests, lorem.Paragraph(1, 2),
	)
	if err != nil {
		panic(err)
	}
}

// Session tokens are predictable on purpose so you can curl as anybody.
func seedSession(ctx context.Context, conn db.ConnOrTx, user *models.User) {
	_, err := conn.Exec(ctx,
		`
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		`,
		"dev-"+user.Username, user.ID, time.Now().Add(365*24*time.Hour),
	)
	if err != nil {
		panic(err)
	}
}

func sampleBody() string {
	return lorem.Paragraph(2, 4) + "\n\n" + lorem.Paragraph(1, 3)
}

func idptr(id int) *int {
	return &id
}

func randomVote() models.VoteType {
	if rand.Intn(4) == 0 {
		return models.VoteDown
	}
	return models.VoteUp
}
