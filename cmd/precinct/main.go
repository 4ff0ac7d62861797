package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eringen/precinct"
	"github.com/eringen/precinct/auth"
	"github.com/eringen/precinct/docstore"
	"github.com/eringen/precinct/seed"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
	password   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "precinct",
	Short: "Little Bamiyan community site",
	Long: `precinct serves the Little Bamiyan site: business directory, blog and
admin dashboard, backed by a single SQLite document store.

Configuration comes from --config (YAML), a .env file and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Create an admin account",
	Long: `Create an admin account. The password is taken from --password, the
PRECINCT_ADMIN_PASSWORD environment variable, or read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate empty collections with the sample directory and posts",
	RunE:  runSeed,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the precinct version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("precinct %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	userAddCmd.Flags().StringVar(&password, "password", "", "Account password (min 8 characters)")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (precinct.SiteConfig, error) {
	cfg, err := precinct.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := precinct.New(cfg, precinct.WithLogger(logger))
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := docstore.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	pw := password
	if pw == "" {
		pw = os.Getenv("PRECINCT_ADMIN_PASSWORD")
	}
	if pw == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}

	provider := auth.NewProvider(store, []byte(cfg.AuthSecret))
	if err := provider.CreateUser(cmd.Context(), args[0], pw); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return fmt.Errorf("%s already has an account", args[0])
		}
		return err
	}
	logger.Info("admin account created", zap.String("email", strings.ToLower(args[0])))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := docstore.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := seed.New(store, logger).Seed(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d collection(s)\n", n)
	return nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			os.Exit(2)
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
