package main

import (
	"chat-live/internal"
	"chat-live/repositories"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	prefix := flag.String("prefix", internal.DefaultPrefix, "Prefix to scan (user:, chat:, msg:, feed:, cursor:, counter:)")
	limit := flag.Int("limit", 0, "Maximum rows, 0 for all")
	web := flag.Int("web", 0, "Serve the HTML inspector on this port instead of printing a table")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing -db or BADGER_FILEPATH")
	}

	// BypassLockGuard allows opening while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if *web > 0 {
		serve(db, *web)
		return
	}

	entries, err := repositories.ScanEntries(db, *prefix, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "ID", "Time", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	for _, e := range entries {
		table.Append([]string{e.Key, e.Kind, e.ID, e.Timestamp, e.Detail})
	}
	table.Render()
}

// serve blocks on the read-only HTML inspector.
func serve(db *badger.DB, port int) {
	// No live server here, only a read-only marker.
	stats := func() map[string]any {
		return map[string]any{
			"Status": "Inspector (read-only)",
			"Time":   time.Now().Format(time.RFC822),
		}
	}
	fmt.Printf("Inspector started at http://localhost:%d/inspect\n", port)
	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           internal.InspectHandler(slog.Default(), db, "/inspect", stats),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
