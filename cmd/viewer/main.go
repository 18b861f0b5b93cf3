package main

import (
	"bufio"
	"chat-live/client"
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

// Exit codes for the viewer.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the viewer environment variables.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	UserID    int64  `envconfig:"CHAT_USER_ID" default:"1"`
	ChatID    int64  `envconfig:"CHAT_ID" default:"1"`
	SessionID string `envconfig:"CHAT_SESSION_ID"`
	Colours   bool   `envconfig:"CHAT_COLOURS" default:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Viewer error: %v\n", err)
	}
	os.Exit(code)
}

// run follows one chat and lets the user post to it: lines typed on stdin are
// sent as messages, pushed messages are printed as they arrive.
func run() (int, error) {
	// 1. Load configuration from .env and environment variables.
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []client.Option{
		client.WithLogger(log),
		client.WithOnMessage(func(m domain.Message) { printMessage(config, m) }),
	}
	if config.SessionID != "" {
		opts = append(opts, client.WithSessionID(domain.SessionID(config.SessionID)))
	}
	viewer := client.NewViewer(config.ServerURL, domain.UserID(config.UserID), domain.ChatID(config.ChatID), opts...)

	fmt.Printf(">>> Following chat %d as user %d (session %s). Type a line to post, Ctrl+C to quit.\n",
		config.ChatID, config.UserID, viewer.SessionID())

	// 3. Stream and stdin run side by side; the first failure stops both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return viewer.Run(gctx)
	})
	g.Go(func() error {
		return readInput(gctx, config)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, chatErrors.ErrNotFound) {
			return exitConfig, err
		}
		return exitRuntime, err
	}
	return exitOK, nil
}

func readInput(ctx context.Context, config Config) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	target := fmt.Sprintf("%s/users/%d/chats/%d", config.ServerURL, config.UserID, config.ChatID)
	httpClient := &http.Client{Timeout: 5 * time.Second}
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			resp, err := httpClient.PostForm(target, url.Values{"text": {text}})
			if err != nil {
				color.Red.Printf("post failed: %v\n", err)
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode >= http.StatusBadRequest {
				color.Red.Printf("post rejected: %s\n", resp.Status)
			}
		}
	}
}

func printMessage(config Config, m domain.Message) {
	header := fmt.Sprintf("[%s] %s:", m.CreatedAt.Local().Format(time.TimeOnly), m.Author.Name)
	if config.Colours {
		if int64(m.Author.ID) == config.UserID {
			header = color.New(color.FgGreen, color.OpBold).Render(header)
		} else {
			header = color.New(color.FgCyan, color.OpBold).Render(header)
		}
	}
	fmt.Println(header, m.Text)
}
