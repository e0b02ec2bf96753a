package config

import (
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Dev defaults. Deployments overwrite this file; nothing in here is a
// real secret.
var Config = CollabioraConfig{
	Env:         Dev,
	Addr:        ":9010",
	PrivateAddr: "localhost:9011",
	BaseUrl:     "http://collabiora.local:9010",
	LogLevel:    zerolog.TraceLevel,

	Postgres: PostgresConfig{
		User:     "cbadmin",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "collabiora",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  8,
	},

	Auth: AuthConfig{
		CookieDomain: ".collabiora.local",
	},

	Forum: ForumConfig{
		ThreadsPerPage: 25,
		MaxPerPage:     100,
		CacheTTL:       60 * time.Second,
	},

	Promotion: PromotionConfig{
		ServiceUsername:    "research-feed",
		ServiceDisplayName: "Collabiora Research Feed",
	},

	Notify: NotifyConfig{
		QueueSize:   256,
		MaxAttempts: 3,
	},
}
