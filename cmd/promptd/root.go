package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"promptd/internal/browser"
	"promptd/internal/common/fsutil"
	"promptd/internal/config"
	"promptd/internal/daemon"
	"promptd/internal/httpapi"
)

func defaultAddr() string {
	if v := os.Getenv("PROMPTD_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

// buildRootCmd constructs the Cobra command tree: the serve daemon plus thin
// HTTP clients for driving a running daemon from the shell.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "promptd",
		Short:         "Queue prompts while a chat surface is generating and send them as it goes idle",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("addr", defaultAddr(), "daemon HTTP address (defaults PROMPTD_ADDR or :8080)")

	root.AddCommand(buildServeCmd())
	root.AddCommand(buildSubmitCmd())
	root.AddCommand(buildListCmd())
	root.AddCommand(buildDeleteCmd())
	root.AddCommand(buildEditCmd())
	root.AddCommand(buildStatusCmd())
	root.AddCommand(buildDebugCmd())
	return root
}

func buildServeCmd() *cobra.Command {
	var (
		cfgPath        string
		stateFile      string
		settleMs       int
		pollMs         int
		debuggerURL    string
		chromeBin      string
		headless       bool
		pageURL        string
		inputSelector  string
		submitSelector string
		logLevel       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon: attach to the chat page, watch for idle edges, serve the panel API",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			// Flags override file values only when set on the command line.
			override := func(name string, f func()) {
				if cmd.Flags().Changed(name) {
					f()
				}
			}
			override("state-file", func() { cfg.StateFile = stateFile })
			override("settle-ms", func() { cfg.SettleMs = settleMs })
			override("poll-ms", func() { cfg.PollMs = pollMs })
			override("debugger-url", func() { cfg.DebuggerURL = debuggerURL })
			override("chrome-bin", func() { cfg.ChromeBin = chromeBin })
			override("headless", func() { cfg.Headless = headless })
			override("page-url", func() { cfg.PageURL = pageURL })
			override("input-selector", func() { cfg.InputSelector = inputSelector })
			override("submit-selector", func() { cfg.SubmitSelector = submitSelector })
			addr, _ := cmd.Flags().GetString("addr")
			if cfg.Addr == "" || cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			return runServe(cfg, logLevel)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (.yaml/.json/.toml)")
	cmd.Flags().StringVar(&stateFile, "state-file", "", "JSON file persisting the queue across restarts")
	cmd.Flags().IntVar(&settleMs, "settle-ms", 0, "ms an idle verdict must hold before dispatch (default 150)")
	cmd.Flags().IntVar(&pollMs, "poll-ms", 0, "page observation interval in ms (default 250)")
	cmd.Flags().StringVar(&debuggerURL, "debugger-url", "", "attach to an existing browser devtools endpoint")
	cmd.Flags().StringVar(&chromeBin, "chrome-bin", "", "browser binary to launch when no debugger URL is given")
	cmd.Flags().BoolVar(&headless, "headless", false, "launch the browser headless")
	cmd.Flags().StringVar(&pageURL, "page-url", "", "substring selecting the chat tab to attach to")
	cmd.Flags().StringVar(&inputSelector, "input-selector", "", "CSS selector for the chat input")
	cmd.Flags().StringVar(&submitSelector, "submit-selector", "", "CSS selector for the send control")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
	return cmd
}

func runServe(cfg config.Config, logLevel string) error {
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(lvl).With().Timestamp().Logger()

	stateFile, err := fsutil.ExpandHome(cfg.StateFile)
	if err != nil {
		return err
	}

	bcfg := browser.DefaultConfig()
	bcfg.DebuggerURL = cfg.DebuggerURL
	bcfg.Bin = cfg.ChromeBin
	if bcfg.Bin != "" && !fsutil.PathExists(bcfg.Bin) {
		log.Warn().Str("bin", bcfg.Bin).Msg("browser binary not found, launch will likely fail")
	}
	bcfg.Headless = cfg.Headless
	if cfg.PageURL != "" {
		bcfg.PageURL = cfg.PageURL
	}
	if cfg.InputSelector != "" {
		bcfg.InputSelector = cfg.InputSelector
	}
	if cfg.SubmitSelector != "" {
		bcfg.SubmitSelector = cfg.SubmitSelector
	}
	if cfg.PollMs > 0 {
		bcfg.PollMs = cfg.PollMs
	}

	d := daemon.New(daemon.Config{
		Browser:       bcfg,
		StateFile:     stateFile,
		SettleMs:      cfg.SettleMs,
		AttachRetryMs: cfg.AttachRetryMs,
	}, log)

	httpapi.SetLogger(log)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(d)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("promptd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	<-ctx.Done()
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return <-runErr
}
