package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nissyi-gh/flowboard/internal/config"
	"github.com/nissyi-gh/flowboard/internal/importer"
	"github.com/nissyi-gh/flowboard/internal/overdue"
	"github.com/nissyi-gh/flowboard/internal/store"
	"github.com/nissyi-gh/flowboard/internal/ui"
	"github.com/nissyi-gh/flowboard/internal/web"
)

// cliFlags holds the command line. web and addr are saved to the config
// like the file settings; the rest only apply to this run.
type cliFlags struct {
	configPath string
	web        bool
	webOnly    bool
	addr       string
	importFile string
	logFile    string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "config file path")
	flag.BoolVar(&f.web, "web", false, "enable web server")
	flag.BoolVar(&f.webOnly, "web-only", false, "run web server only")
	flag.StringVar(&f.addr, "addr", "", "web server listen address")
	flag.StringVar(&f.importFile, "import", "", "YAML file to import at startup")
	flag.StringVar(&f.logFile, "log", "", "log file (TUI mode)")
	flag.Parse()
	return f
}

// applyFlags layers the flags over cfg. saved is what goes back to the
// config file; run additionally carries the one-shot flags.
func applyFlags(cfg config.Config, f cliFlags) (saved, run config.Config) {
	if f.web {
		cfg.WebEnabled = true
	}
	if f.addr != "" {
		cfg.WebAddr = f.addr
	}
	saved = cfg

	if f.webOnly {
		cfg.WebEnabled = true
	}
	if f.importFile != "" {
		cfg.ImportFile = f.importFile
	}
	if f.logFile != "" {
		cfg.LogFile = f.logFile
	}
	return saved, cfg
}

func main() {
	flags := parseFlags()

	cfgPath, err := resolveConfigPath(flags.configPath)
	if err != nil {
		log.Fatal(err)
	}

	loaded, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	saved, cfg := applyFlags(loaded, flags)
	if err := config.Save(cfgPath, saved); err != nil {
		log.Fatal(err)
	}

	logger, closeLog, err := openLogger(cfg, flags.webOnly)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	opts, err := cfg.StoreOptions()
	if err != nil {
		log.Fatal(err)
	}
	taskStore := store.New(append(opts, store.WithLogger(logger))...)

	if cfg.ImportFile != "" {
		if err := importFile(taskStore, cfg.ImportFile); err != nil {
			log.Fatal(err)
		}
	}

	sweeper := overdue.New(taskStore, cfg.OverdueInterval.Duration, logger)

	if cfg.WebEnabled {
		handler := web.NewServer(taskStore, logger).Handler()
		if flags.webOnly {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go sweeper.Run(ctx)

			logger.Printf("Web server running at http://localhost%s", cfg.WebAddr)
			if err := serve(ctx, cfg.WebAddr, handler); err != nil {
				log.Fatal(err)
			}
			return
		}

		go func() {
			logger.Printf("Web server running at http://localhost%s", cfg.WebAddr)
			if err := http.ListenAndServe(cfg.WebAddr, handler); err != nil {
				logger.Printf("web server error: %v", err)
			}
		}()
	}

	p := tea.NewProgram(ui.NewModel(taskStore, sweeper), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// openLogger picks the log destination. The TUI owns the terminal, so
// without a log file its logs are dropped.
func openLogger(cfg config.Config, webOnly bool) (*log.Logger, func(), error) {
	if webOnly {
		return log.Default(), func() {}, nil
	}
	if cfg.LogFile == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	if err := config.EnsureDir(cfg.LogFile); err != nil {
		return nil, nil, err
	}
	f, err := tea.LogToFile(cfg.LogFile, "flowboard")
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return log.Default(), func() { f.Close() }, nil
}

func importFile(s *store.TaskStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	n, err := importer.Import(s, data)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}
	log.Printf("imported %d task(s) from %s", n, path)
	return nil
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
