// ABOUTME: Entry point for the coven-setup interactive gateway wizard
// ABOUTME: Runs setup by default; audit subcommand lists past setup actions

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/coven-setup/internal/audit"
	"github.com/2389/coven-setup/internal/channels"
	"github.com/2389/coven-setup/internal/config"
	"github.com/2389/coven-setup/internal/probe"
	"github.com/2389/coven-setup/internal/prompt"
	"github.com/2389/coven-setup/internal/tailnet"
	"github.com/2389/coven-setup/internal/wizard"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                          _
  ___ _____   _____ _ __        ___  ___| |_ _   _ _ __
 / __/ _ \ \ / / _ \ '_ \ _____/ __|/ _ \ __| | | | '_ \
| (_| (_) \ V /  __/ | | |_____\__ \  __/ |_| |_| | |_) |
 \___\___/ \_/ \___|_| |_|     |___/\___|\__\__,_| .__/
                                                 |_|
`

var (
	flagConfig      string
	flagFlow        string
	flagGatewayMode string
	flagLogLevel    string
	flagGatewayBin  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:           "coven-setup",
		Short:         "Interactive first-run setup for a coven gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "gateway config file (default ~/.config/coven/gateway.yaml, or COVEN_CONFIG)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.Flags().StringVar(&flagFlow, "flow", "", "setup flow: quickstart or advanced (default: ask)")
	root.Flags().StringVar(&flagGatewayMode, "gateway-mode", "", "gateway mode: local or remote")
	root.Flags().StringVar(&flagGatewayBin, "gateway-bin", "coven-gateway", "gateway binary used for plugin installs")

	root.AddCommand(newAuditCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, prompt.ErrCancelled) {
			color.New(color.FgYellow).Fprintln(os.Stderr, "Setup cancelled. Nothing was changed since the last save.")
			os.Exit(130)
		}
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSetup(ctx context.Context) error {
	setupLogger(flagLogLevel)

	configPath := flagConfig
	if configPath == "" {
		configPath = config.DefaultPath()
	}

	if flagFlow != "" {
		if _, err := wizard.ParseFlow(flagFlow); err != nil {
			return err
		}
	}
	if flagGatewayMode != "" {
		switch config.GatewayMode(flagGatewayMode) {
		case config.GatewayLocal, config.GatewayRemote:
		default:
			return fmt.Errorf("unknown gateway mode %q (want local or remote)", flagGatewayMode)
		}
	}

	color.New(color.FgCyan).Print(banner)
	color.New(color.FgHiBlack).Printf("    version: %s\n", version)
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config: %s\n\n", configPath)

	registry, err := channels.NewRegistry(
		channels.NewTelegram(),
		channels.NewSlack(),
		channels.NewMatrix(),
		channels.NewWhatsApp(channels.ExecInstaller(flagGatewayBin)),
	)
	if err != nil {
		return err
	}

	auditLog, err := audit.Open(auditPath())
	if err != nil {
		// Setup can finish without its audit trail; say so and move on.
		slog.Warn("audit log unavailable", "error", err)
		auditLog = nil
	} else {
		defer auditLog.Close()
	}

	w := &wizard.Wizard{
		ConfigPath:   configPath,
		ExplicitFlow: flagFlow,
		ExplicitMode: flagGatewayMode,
		Prompter:     prompt.NewTerminal(),
		Registry:     registry,
		Prober:       probe.New(),
		Tailnet:      tailnet.NewDetector(),
		Logger:       slog.Default().With("component", "wizard"),
	}
	if auditLog != nil {
		w.Auditor = auditLog
	}

	return w.Run(ctx)
}

func newAuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent setup actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(flagLogLevel)

			log, err := audit.Open(auditPath())
			if err != nil {
				return err
			}
			defer log.Close()

			entries, err := log.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No setup actions recorded yet.")
				return nil
			}

			gray := color.New(color.FgHiBlack)
			cyan := color.New(color.FgCyan)
			for _, e := range entries {
				gray.Printf("%s  ", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
				cyan.Printf("%-20s", e.Action)
				fmt.Printf(" %s", e.Target)
				if len(e.Detail) > 0 {
					gray.Printf("  %v", e.Detail)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show")
	return cmd
}

// auditPath returns where the setup audit database lives.
// Priority: XDG_DATA_HOME/coven > ~/.local/share/coven
func auditPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "setup-audit.db"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "coven", "setup-audit.db")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}

	// Prompts own stdout; logs go to stderr so they never corrupt the UI.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
