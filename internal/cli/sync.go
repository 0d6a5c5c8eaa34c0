package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	"github.com/mrlokans/bgsync/internal/config"
	"github.com/mrlokans/bgsync/internal/database"
	"github.com/mrlokans/bgsync/internal/entrypoint"
	"github.com/mrlokans/bgsync/internal/logging"
	"github.com/mrlokans/bgsync/internal/services"
)

// SyncCommand runs a single sync from the command line
type SyncCommand struct {
	What         string
	Username     string
	DatabasePath string
	Page         int
	JSON         bool
	Verbose      bool

	cfg *config.Config
	out io.Writer
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand() *SyncCommand {
	return &SyncCommand{
		cfg: config.NewConfig(),
		out: os.Stdout,
	}
}

// fixedUsername overrides the configured account for one run
type fixedUsername string

func (u fixedUsername) CurrentUsername() string {
	return string(u)
}

// ParseFlags parses command line flags
func (cmd *SyncCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync", flag.ContinueOnError)

	fs.StringVar(&cmd.What, "what", "all", "What to sync: collection, plays or all")
	fs.StringVar(&cmd.Username, "user", "", "BoardGameGeek username (defaults to the configured account)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the cache database")
	fs.IntVar(&cmd.Page, "page", 0, "Sync a single page of plays instead of the full history")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the result as JSON")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mirror a BoardGameGeek collection and play history into the local cache.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync -user alice\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync -what plays -page 2 -json\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.What = strings.ToLower(strings.TrimSpace(cmd.What))
	switch cmd.What {
	case "collection", "plays", "all":
	default:
		return fmt.Errorf("invalid -what %q: must be collection, plays or all", cmd.What)
	}
	if cmd.Page < 0 {
		return fmt.Errorf("invalid -page %d", cmd.Page)
	}
	if cmd.Page > 0 && cmd.What != "plays" {
		return errors.New("-page can only be used with -what plays")
	}
	if cmd.DatabasePath == "" {
		return errors.New("-db must not be empty")
	}
	return nil
}

// Run executes the sync and prints a summary
func (cmd *SyncCommand) Run() error {
	level := cmd.cfg.Logging.Level
	if cmd.Verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console"})

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var identity services.IdentityProvider
	if cmd.Username != "" {
		identity = fixedUsername(strings.TrimSpace(cmd.Username))
	}
	components := entrypoint.NewComponents(cmd.cfg, db, identity)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := cmd.sync(ctx, components.SyncService)
	if err != nil {
		if errors.Is(err, services.ErrNotLoggedIn) {
			return fmt.Errorf("%w (use -user or set BGG_USERNAME)", err)
		}
		return err
	}
	return cmd.print(result)
}

func (cmd *SyncCommand) sync(ctx context.Context, svc *services.SyncService) (*services.SyncResult, error) {
	switch {
	case cmd.What == "collection":
		return svc.SyncCollection(ctx)
	case cmd.What == "plays" && cmd.Page > 0:
		return svc.SyncPlaysPage(ctx, cmd.Page)
	case cmd.What == "plays":
		return svc.SyncPlays(ctx)
	default:
		return svc.SyncAll(ctx)
	}
}

func (cmd *SyncCommand) print(result *services.SyncResult) error {
	if cmd.JSON {
		enc := json.NewEncoder(cmd.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(cmd.out, "Synced %s for %s (run %s)\n", result.Type, result.Username, result.RunID)
	if result.Type != "plays" {
		fmt.Fprintf(cmd.out, "  Base games: %d\n", result.BaseGames)
		fmt.Fprintf(cmd.out, "  Expansions: %d\n", result.Expansions)
	}
	if result.Type != "collection" {
		fmt.Fprintf(cmd.out, "  Plays:      %d (%d pages)\n", result.Plays, result.Pages)
	}
	fmt.Fprintf(cmd.out, "  Took:       %v\n", result.CompletedAt.Sub(result.StartedAt))
	return nil
}
