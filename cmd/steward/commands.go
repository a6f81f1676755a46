package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stewardapp/steward/cmd/steward/ui"
	"github.com/stewardapp/steward/internal/banner"
	"github.com/stewardapp/steward/internal/config"
	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/gateway"
	"github.com/stewardapp/steward/internal/handlers"
	"github.com/stewardapp/steward/internal/logging"
	"github.com/stewardapp/steward/internal/memory"
	"github.com/stewardapp/steward/internal/registry"
	"github.com/stewardapp/steward/internal/reminders"
)

// runtime holds the wired application core shared by every subcommand.
type runtime struct {
	cfg   *config.Config
	store *memory.Store
	eng   *engine.Engine
}

func buildRuntime(cfgPath string) (*runtime, error) {
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logging.Init(cfg.Logging); err != nil {
		return nil, err
	}

	store, err := memory.NewStore(cfg.Memory.Path)
	if err != nil {
		return nil, err
	}

	specs := registry.Default()
	eng := engine.New(specs, handlers.Register(specs, store), store, cfg.Engine)

	return &runtime{cfg: cfg, store: store, eng: eng}, nil
}

func (r *runtime) close() {
	_ = r.store.Close()
}

func newReplCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(*cfgPath)
			if err != nil {
				return err
			}
			defer rt.close()

			// Log lines would corrupt the TUI.
			logging.Suppress()

			model := ui.New(rt.eng, uuid.NewString())
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newExecCmd(cfgPath *string) *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "exec <input>",
		Short: "Run one command line and exit",
		Long:  `Runs a command line (chained with && like any message) and prints each result. Exits non-zero if the batch stopped on an error.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(*cfgPath)
			if err != nil {
				return err
			}
			defer rt.close()

			input := strings.Join(args, " ")
			outcome := rt.eng.ExecuteBatch(cmd.Context(), "cli", input)

			failed := false
			for _, resp := range outcome.Results {
				if resp.Type == engine.TypeError {
					failed = true
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(outcome); err != nil {
					return err
				}
			} else {
				for _, resp := range outcome.Results {
					prefix := "  "
					switch resp.Type {
					case engine.TypeSuccess:
						prefix = "✓ "
					case engine.TypeError:
						prefix = "✗ "
					}
					fmt.Println(prefix + resp.Message)
				}
				for _, skipped := range outcome.Unexecuted {
					fmt.Println("  skipped: " + skipped)
				}
			}

			if failed {
				os.Exit(1)
			}
			return nil
		},
	}
	c.Flags().BoolVar(&asJSON, "json", false, "print the batch outcome as JSON")
	return c
}

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the WebSocket gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(*cfgPath)
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := gateway.NewServer(rt.cfg.Gateway, rt.eng,
				gateway.WithAuthConfig(rt.cfg.Auth))

			scheduler := reminders.NewScheduler(rt.store, rt.cfg.Reminders)
			scheduler.Subscribe(server.DigestSink())
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			defer scheduler.Stop()

			addr := fmt.Sprintf("%s:%d", rt.cfg.Gateway.Host, rt.cfg.Gateway.Port)
			banner.Startup(version, addr, rt.cfg.Memory.Path, rt.cfg.Reminders.Enabled)

			return server.Start(ctx)
		},
	}
}

func newRemindCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Print the due-todo digest now",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(*cfgPath)
			if err != nil {
				return err
			}
			defer rt.close()

			digest, err := reminders.NewScheduler(rt.store, rt.cfg.Reminders).RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(digest.Format())
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config already exists at %s", path)
			}

			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Printf("Wrote default config to %s\n", path)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show Steward version",
		Run: func(cmd *cobra.Command, args []string) {
			banner.PrintWithVersion(version)
		},
	}
}
