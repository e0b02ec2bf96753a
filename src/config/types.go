package config

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta             = "beta"
	Dev              = "dev"
)

type CollabioraConfig struct {
	Env         Environment
	Addr        string // addr to listen on for public traffic
	PrivateAddr string // addr to listen on for private stuff like pprof
	BaseUrl     string
	LogLevel    zerolog.Level

	Postgres  PostgresConfig
	Auth      AuthConfig
	Forum     ForumConfig
	Promotion PromotionConfig
	Notify    NotifyConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

type AuthConfig struct {
	CookieDomain string
}

type ForumConfig struct {
	ThreadsPerPage int
	MaxPerPage     int
	CacheTTL       time.Duration
}

type PromotionConfig struct {
	// Identity of the shared author for promoted feed content. One account
	// for all of it, never one per placeholder.
	ServiceUsername    string
	ServiceDisplayName string
}

type NotifyConfig struct {
	QueueSize   int
	MaxAttempts int
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}
