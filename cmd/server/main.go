// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chantier_backend/internal/access"
	"chantier_backend/internal/config"
	"chantier_backend/internal/platform/logger"
	"chantier_backend/internal/profile"

	"go.uber.org/zap"
)

const usage = `usage: server [command] [flags]

commands:
  (none)            start the HTTP API and the client site sync job
  resync-clients    re-resolve every client profile once and exit
  backfill-emails   re-resolve profiles with no stored email and exit
  set-role          assign a role to a profile (--uid, --role)
`

func main() {
	if len(os.Args) < 2 {
		startServer()
		return
	}

	var err error
	switch os.Args[1] {
	case "resync-clients":
		err = runSweep("resync-clients", os.Args[2:], access.ClientProfiles)
	case "backfill-emails":
		err = runSweep("backfill-emails", os.Args[2:], access.MissingEmail)
	case "set-role":
		err = runSetRole(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("FATAL: %s failed: %v", os.Args[1], err)
	}
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
	log.Println("INFO: Application exiting.")
}

// commandContext bounds a maintenance command and cancels it on SIGINT/SIGTERM.
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func loadForCommand() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	appLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func runSweep(name string, args []string, filter access.Filter) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Minute, "Maximum duration of the sweep")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, appLogger, err := loadForCommand()
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	resolver, cleanup, err := initializeResolver(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("initialize resolver: %w", err)
	}
	defer cleanup()

	ctx, cancel := commandContext(*timeout)
	defer cancel()

	summary, err := resolver.Sweep(ctx, filter)
	appLogger.Info("Sweep finished",
		zap.String("command", name),
		zap.Int("scanned", summary.Scanned),
		zap.Int("resolved", summary.Resolved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d profiles could not be resolved", summary.Failed)
	}
	return nil
}

func runSetRole(args []string) error {
	fs := flag.NewFlagSet("set-role", flag.ExitOnError)
	uid := fs.String("uid", "", "UID of the profile to update")
	rawRole := fs.String("role", "", "Role to assign (professional or client)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *uid == "" {
		return errors.New("--uid is required")
	}
	role, ok := profile.ParseRole(*rawRole)
	if !ok {
		return fmt.Errorf("--role must be %q or %q, got %q", profile.RoleProfessional, profile.RoleClient, *rawRole)
	}

	cfg, appLogger, err := loadForCommand()
	if err != nil {
		return err
	}
	defer func() { _ = appLogger.Sync() }()

	resolver, cleanup, err := initializeResolver(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("initialize resolver: %w", err)
	}
	defer cleanup()

	ctx, cancel := commandContext(time.Minute)
	defer cancel()

	updated, err := resolver.AssignRole(ctx, *uid, role, "cli")
	if err != nil {
		return err
	}
	appLogger.Info("Role assigned",
		zap.String("uid", updated.UID),
		zap.String("role", string(updated.Role)),
		zap.Strings("chantierIds", updated.ChantierIDs),
	)
	return nil
}
