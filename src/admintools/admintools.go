package admintools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/website"
	"github.com/spf13/cobra"
)

func init() {
	adminCommand := &cobra.Command{
		Use:   "admin",
		Short: "Miscellaneous admin commands",
	}
	website.WebsiteCommand.AddCommand(adminCommand)

	ensureServiceAccountCommand := &cobra.Command{
		Use:   "ensureserviceaccount",
		Short: "Create the promotion service account if it doesn't exist yet",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			user, err := forumdata.FetchOrCreateServiceAccount(ctx, conn,
				utils.OrDefault(config.Config.Promotion.ServiceUsername, "research-feed"),
				utils.OrDefault(config.Config.Promotion.ServiceDisplayName, "Collabiora Research Feed"),
			)
			if err != nil {
				panic(err)
			}

			fmt.Printf("Service account '%s' is user %d\n", user.Username, user.ID)
		},
	}
	adminCommand.AddCommand(ensureServiceAccountCommand)

	makeAdminCommand := &cobra.Command{
		Use:   "makeadmin [username]",
		Short: "Give a user access to the admin API",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide a username.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			username := args[0]

			ctx := context.Background()
			conn := db.NewConn()
			defer conn.Close(ctx)

			res, err := conn.Exec(ctx, "UPDATE forum_user SET is_admin = TRUE WHERE LOWER(username) = LOWER($1)", username)
			if err != nil {
				panic(err)
			}
			if res.RowsAffected() == 0 {
				fmt.Printf("User not found.\n\n")
				os.Exit(1)
			}

			fmt.Printf("'%s' can now use the admin API.\n", username)
		},
	}
	adminCommand.AddCommand(makeAdminCommand)

	promoteCommand := &cobra.Command{
		Use:   "promote [placeholder key] [seed json file]",
		Short: "Promote a feed placeholder into a durable thread",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 2 {
				fmt.Printf("You must provide a placeholder key and a seed file.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			key := args[0]

			contents, err := os.ReadFile(args[1])
			if err != nil {
				panic(fmt.Errorf("couldn't read seed file %s: %w", args[1], err))
			}
			var seed promotionSeedFile
			err = json.Unmarshal(contents, &seed)
			if err != nil {
				panic(fmt.Errorf("bad seed file: %w", err))
			}

			ctx := context.Background()
			conn := db.NewConnPool()
			defer conn.Close()

			// The dispatcher never runs here; promotion itself doesn't
			// notify anybody.
			forumService := forum.NewService(conn, cache.NewStore(), notify.NewDispatcher(conn))

			thread, err := forumService.ResolveThreadRef(ctx, key, seed.toSeed())
			if err != nil {
				panic(err)
			}

			fmt.Printf("Placeholder %s is thread %d\n", key, thread.ID)
			fmt.Printf("  %s\n", weburl.BuildThreadPage(thread.ID))
		},
	}
	adminCommand.AddCommand(promoteCommand)

	flushCacheCommand := &cobra.Command{
		Use:   "flushcache [admin session token]",
		Short: "Flush the content cache of the running server",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide an admin session token.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			callAdminAPI(http.MethodPost, weburl.BuildAPIAdminCacheFlush(), args[0])
		},
	}
	adminCommand.AddCommand(flushCacheCommand)

	cacheStatsCommand := &cobra.Command{
		Use:   "cachestats [admin session token]",
		Short: "Show cache stats of the running server",
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) < 1 {
				fmt.Printf("You must provide an admin session token.\n\n")
				cmd.Usage()
				os.Exit(1)
			}

			callAdminAPI(http.MethodGet, weburl.BuildAPIAdminCacheStats(), args[0])
		},
	}
	adminCommand.AddCommand(cacheStatsCommand)
}

// Mirrors the seed payload accepted by the reply and vote endpoints.
type promotionSeedFile struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Conditions []string `json:"conditions"`
	VoteScore  int      `json:"voteScore"`

	Category  *int `json:"category"`
	Community *int `json:"community"`

	IsResearcherForum       bool `json:"isResearcherForum"`
	OnlyResearchersCanReply bool `json:"onlyResearchersCanReply"`

	DisplayName string `json:"displayName"`
}

func (f *promotionSeedFile) toSeed() *forumdata.PromotionSeed {
	return &forumdata.PromotionSeed{
		Title:         f.Title,
		Body:          f.Body,
		Tags:          f.Tags,
		ConditionTags: f.Conditions,
		VoteScore:     f.VoteScore,

		CategoryID:  f.Category,
		CommunityID: f.Community,

		IsResearcherForum:       f.IsResearcherForum,
		OnlyResearchersCanReply: f.OnlyResearchersCanReply,

		DisplayName: f.DisplayName,
	}
}

// The cache lives inside the running server process, so cache commands go
// through the admin API instead of touching anything directly.
func callAdminAPI(method string, url string, token string) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		panic(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := http.Client{Timeout: 10 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		panic(err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s\n%s\n", res.Status, body)
}
