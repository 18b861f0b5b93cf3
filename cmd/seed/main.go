package main

import (
	"chat-live/domain"
	"chat-live/repositories"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	BadgerFilepath string        `env:"BADGER_FILEPATH,required=true"`
	FeedRetention  time.Duration `env:"FEED_RETENTION,default=24h"`
	LogLevel       string        `env:"LOG_LEVEL,default=WARN"`
	Users          []string      `env:"SEED_USERS,default=Alice|Bob"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
	}
	os.Exit(code)
}

// run wipes the store and recreates the demo users with one chat holding all of them.
func run() (int, error) {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Open Badger, the server must be stopped
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	// 3. Reset then create
	store := repositories.NewStore(db, log, config.FeedRetention, nil)
	if err = store.Reset(); err != nil {
		return exitRuntime, fmt.Errorf("reset failed: %w", err)
	}

	ctx := context.Background()
	users := make([]domain.User, 0, len(config.Users))
	for _, name := range config.Users {
		if strings.TrimSpace(name) == "" {
			continue
		}
		user, err := store.Users.CreateUser(ctx, strings.TrimSpace(name))
		if err != nil {
			return exitRuntime, fmt.Errorf("create user %s: %w", name, err)
		}
		users = append(users, user)
	}

	chat, err := store.Chats.CreateChat(ctx, lo.Map(users, func(u domain.User, _ int) domain.UserID { return u.ID }))
	if err != nil {
		return exitRuntime, fmt.Errorf("create chat: %w", err)
	}

	// 4. Report
	color.Green.Println("Store seeded")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Kind", "ID", "Name", "Chat page"})
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, u := range users {
		table.Append([]string{"user", u.ID.String(), u.Name, fmt.Sprintf("/users/%d/chats/%d", u.ID, chat.ID)})
	}
	table.Append([]string{"chat", chat.ID.String(), fmt.Sprintf("%d participants", len(chat.Participants)), ""})
	table.Render()

	return exitOK, nil
}
