package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dom/squad-dashboard/internal/config"
	"github.com/dom/squad-dashboard/internal/logger"
	"github.com/dom/squad-dashboard/internal/repository/postgres"
	"github.com/dom/squad-dashboard/internal/service"
	"github.com/google/uuid"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:9999"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "seed":
		seedCmd(args)
	case "finalize":
		finalizeCmd(apiURL, args)
	case "watch":
		watchCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Finalization Simulator - Development tool for exercising game finalization

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Seed a completed game, finalize it and print the merit ledger
  seed      Seed the achievement catalog and a completed game with random stats
  finalize  Finalize a game through the API
  watch     Stream finalization state changes for a game
  help      Show this help message

ENVIRONMENT:
  API_URL       Backend API URL (default: http://localhost:9999)
  DATABASE_URL  Postgres connection used by seed and full
  JWT_SECRET    Secret used to mint a development token

EXAMPLES:
  # Seed, finalize and print the ledger of a 5v5 game
  simulator full

  # Seed a 3v3 game without finalizing it
  simulator seed --players=3

  # Finalize an existing game, reconciling merits if the ledger write failed
  simulator finalize --game=<id> --reconcile

  # Watch a game while finalizing it from the UI
  simulator watch --game=<id>`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	players := fs.Int("players", 5, "Players per team")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed for stats")
	fs.Parse(args)

	cfg := mustConfig()

	fmt.Println("=== Finalization Simulator: Full Flow ===")
	fmt.Println()

	fmt.Print("Seeding catalog and game... ")
	gameID, err := seedDatabase(cfg, *players, *seed)
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (game: %s)\n", gameID)

	client := NewAPIClient(apiURL, mustToken(cfg))

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- client.Watch(gameID.String(), 30*time.Second, printState)
	}()
	// Give the subscription a moment so the computing state is not missed.
	time.Sleep(200 * time.Millisecond)

	fmt.Print("Finalizing... ")
	result, _, err := client.Finalize(gameID.String())
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s (%d transactions)\n", result.State, result.TransactionCount)
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	if err := <-watchDone; err != nil {
		fmt.Printf("Warning: watch ended early: %v\n", err)
	}

	printLedger(client, gameID.String())
}

func seedCmd(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	players := fs.Int("players", 5, "Players per team")
	seed := fs.Int64("seed", time.Now().UnixNano(), "Random seed for stats")
	fs.Parse(args)

	if *players < 1 {
		fmt.Println("Error: --players must be at least 1")
		os.Exit(1)
	}

	gameID, err := seedDatabase(mustConfig(), *players, *seed)
	if err != nil {
		fmt.Printf("Failed to seed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded completed game %s\n", gameID)
	fmt.Println()
	fmt.Printf("  Finalize with: simulator finalize --game=%s\n", gameID)
}

func finalizeCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("finalize", flag.ExitOnError)
	gameID := fs.String("game", "", "Game ID (required)")
	reconcile := fs.Bool("reconcile", false, "Reconcile merits when the ledger write fails")
	fs.Parse(args)

	if *gameID == "" {
		fmt.Println("Error: --game is required")
		fmt.Println("\nUsage: simulator finalize --game=<id> [--reconcile]")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL, mustToken(mustConfig()))

	result, _, err := client.Finalize(*gameID)
	if err != nil {
		fmt.Printf("Failed to finalize: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("State: %s\n", result.State)
	if result.Message != "" {
		fmt.Printf("  %s\n", result.Message)
	}

	if result.State == "transaction_write_failed" && *reconcile {
		fmt.Print("Reconciling merits... ")
		rec, err := client.Reconcile(*gameID)
		if err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("OK (%d/%d inserted)\n", rec.Inserted, rec.Expected)
	}

	printLedger(client, *gameID)
}

func watchCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	gameID := fs.String("game", "", "Game ID (required)")
	timeout := fs.Duration("timeout", 5*time.Minute, "How long to wait for a terminal state")
	fs.Parse(args)

	if *gameID == "" {
		fmt.Println("Error: --game is required")
		fmt.Println("\nUsage: simulator watch --game=<id>")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL, mustToken(mustConfig()))

	fmt.Printf("Watching game %s...\n\n", *gameID)
	if err := client.Watch(*gameID, *timeout, printState); err != nil {
		fmt.Printf("Watch failed: %v\n", err)
		os.Exit(1)
	}
}

func seedDatabase(cfg *config.Config, playersPerTeam int, seed int64) (uuid.UUID, error) {
	db, err := postgres.NewConnection(cfg.DatabaseURL, gormLogger.Silent)
	if err != nil {
		return uuid.Nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return uuid.Nil, err
	}
	repos := postgres.NewRepositories(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := seedCatalog(ctx, repos); err != nil {
		return uuid.Nil, err
	}
	game, err := seedGame(ctx, repos, playersPerTeam, rand.New(rand.NewSource(seed)))
	if err != nil {
		return uuid.Nil, err
	}
	return game.ID, nil
}

func mustConfig() *config.Config {
	cfg, err := config.Load(logger.New("warn"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func mustToken(cfg *config.Config) string {
	token, err := service.NewAuthService(cfg).IssueToken(uuid.New(), "simulator", time.Hour)
	if err != nil {
		fmt.Printf("Failed to mint token: %v\n", err)
		os.Exit(1)
	}
	return token
}

func printState(msg StatusMessage) {
	p := msg.Payload
	line := fmt.Sprintf("  [%s] %s", time.Now().Format("15:04:05.000"), p.State)
	if p.Message != "" {
		line += " - " + p.Message
	}
	if !p.TriggerEnabled {
		line += " (trigger disabled)"
	}
	fmt.Println(line)
}

func printLedger(client *APIClient, gameID string) {
	txs, err := client.GameMerits(gameID)
	if err != nil {
		fmt.Printf("Warning: failed to load merits: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Printf("  MERIT LEDGER (%d transactions)\n", len(txs))
	fmt.Println("=========================================")
	fmt.Println()
	totals := make(map[string]int)
	for _, tx := range txs {
		totals[tx.PlayerID] += tx.Amount
		fmt.Printf("  %-8s %5d  %s\n", tx.TransactionType, tx.Amount, tx.Description)
	}
	fmt.Println()
	fmt.Printf("  %d players rewarded\n", len(totals))
	fmt.Println()
}
