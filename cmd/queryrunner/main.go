package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/PaulBabatuyi/movieQueries/internal/config"
	"github.com/PaulBabatuyi/movieQueries/internal/data"
	"github.com/PaulBabatuyi/movieQueries/internal/db"
	"github.com/PaulBabatuyi/movieQueries/internal/fixtures"
	"github.com/PaulBabatuyi/movieQueries/internal/logging"
	"github.com/PaulBabatuyi/movieQueries/internal/ratelimit"
	"github.com/PaulBabatuyi/movieQueries/internal/runner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	envFile   string
	logLevel  string
	database  string
	commentID string

	// seed flags
	fixtureFile string
	reset       bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "queryrunner",
	Short: "Run the fixed sequence of movie database queries",
	Long: `queryrunner connects to MongoDB and runs, in order, one insert, six reads,
four updates, three deletes and two aggregations against the users, movies
and comments collections, logging each result.

MONGO_URI must be set (directly or through a .env file). COMMENT_ID selects
the comment removed by the single-comment delete.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFile(envFile); err != nil {
			return err
		}
		var err error
		logger, err = logging.New(config.LogLevel(logLevel))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: runQueries,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample movies and comments into the database",
	Long: `Loads movies and their comments from a YAML fixture file (or the built-in
sample set when --file is omitted). Each comment gets a back-reference to its
movie and each movie lists its comment ids.`,
	Args: cobra.NoArgs,
	RunE: seedFixtures,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&database, "database", "", "database name (overrides MONGO_DATABASE and the URI path)")
	rootCmd.Flags().StringVar(&commentID, "comment-id", "", "hex id of the comment to delete (overrides COMMENT_ID)")

	seedCmd.Flags().StringVarP(&fixtureFile, "file", "f", "", "YAML fixture file")
	seedCmd.Flags().BoolVar(&reset, "reset", false, "drop the users, movies and comments collections first")

	rootCmd.AddCommand(seedCmd)
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if database != "" {
		cfg.Database = database
	}
	if commentID != "" {
		cfg.CommentID = commentID
	}
	cfg.LogLevel = config.LogLevel(logLevel)
	return cfg, nil
}

// connect opens the single client used for the whole invocation.
func connect(ctx context.Context, cfg *config.Config) (*db.Client, error) {
	client, err := db.New(ctx, cfg.MongoURI, cfg.Database, cfg.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	logger.Debug("connected to MongoDB", zap.String("database", client.Name()))
	return client, nil
}

// closeClient disconnects with its own deadline so a cancelled run context
// does not prevent cleanup.
func closeClient(client *db.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Close(ctx); err != nil {
		logger.Warn("failed to close MongoDB connection", zap.Error(err))
	}
}

func runQueries(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Debug("loaded configuration",
		zap.String("log_level", cfg.LogLevel),
		zap.Float64("query_rate", cfg.QueryRate),
		zap.Duration("connect_timeout", cfg.ConnectTimeout))

	ctx := cmd.Context()
	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient(client)

	r := runner.New(
		data.NewUsersStore(client.UsersCollection()),
		data.NewMoviesStore(client.MoviesCollection()),
		data.NewCommentsStore(client.CommentsCollection()),
		runner.WithLogger(logger),
		runner.WithPacer(ratelimit.NewPacer(cfg.QueryRate, 1)),
		runner.WithCommentID(cfg.CommentID),
	)
	return r.Run(ctx)
}

func seedFixtures(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	f, err := fixtures.Load(fixtureFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient(client)

	if reset {
		if err := client.Drop(ctx); err != nil {
			return err
		}
		logger.Info("dropped collections", zap.String("database", client.Name()))
	}

	// Ensure indexes exist
	if err := client.CreateIndexes(ctx); err != nil {
		return err
	}

	res, err := fixtures.Seed(ctx, f,
		data.NewMoviesStore(client.MoviesCollection()),
		data.NewCommentsStore(client.CommentsCollection()),
	)
	if err != nil {
		return err
	}
	logger.Info("seeded fixtures",
		zap.Int("movies", res.Movies),
		zap.Int("comments", res.Comments))
	return nil
}

// reportFailure logs err against the command that returned it, or prints it
// when the logger was never built.
func reportFailure(log *zap.Logger, cmd *cobra.Command, err error) {
	if log == nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	name := rootCmd.Name()
	if cmd != nil {
		name = cmd.Name()
	}
	log.Error("command failed", zap.String("command", name), zap.Error(err))
}

func main() {
	cmd, err := rootCmd.ExecuteContextC(context.Background())
	if err != nil {
		reportFailure(logger, cmd, err)
	}
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}
