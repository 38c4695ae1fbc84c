// milkyway-export dumps the persisted ledger as CSV, to stdout or a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gitSambhal/milky-way-grocery-app/internal/export"
	"github.com/gitSambhal/milky-way-grocery-app/internal/ledger"
	"github.com/gitSambhal/milky-way-grocery-app/internal/storage/sqlite"
)

func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", envOr("SQLITE_DB_PATH", "./data/milkyway.db"), "path to the SQLite database")
	outPath := flag.String("o", "", "output file (default: milkyway_export_<date>.csv in the working directory; \"-\" for stdout)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store := ledger.NewStore(db)
	csv := export.CSV(store.Load(context.Background()))

	if *outPath == "-" {
		fmt.Println(csv)
		return
	}

	name := *outPath
	if name == "" {
		name = export.Filename(time.Now())
	}
	if err := os.WriteFile(name, []byte(csv+"\n"), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write export: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
