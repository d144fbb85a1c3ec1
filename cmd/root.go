package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prasadnitish/StrollerScout-sub001/config"
	"github.com/prasadnitish/StrollerScout-sub001/geocode"
	"github.com/prasadnitish/StrollerScout-sub001/planner"
	"github.com/prasadnitish/StrollerScout-sub001/safety"
	"github.com/prasadnitish/StrollerScout-sub001/trip"
	"github.com/prasadnitish/StrollerScout-sub001/upstream"
	"github.com/prasadnitish/StrollerScout-sub001/weather"
)

var (
	cfgFile       string
	cfg           *config.Config
	logger        zerolog.Logger
	geocodeClient *geocode.Client
	weatherClient *weather.Client
	safetyClient  *safety.Client
	tripPlanner   *planner.Planner
	tripService   *trip.Service

	appVersion   = "dev"
	appBuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "strollerscout",
	Short: "A family travel planner for parents with young children",
	Long: `strollerscout plans family trips: it geocodes your destination, checks
the weather, pulls neighborhood safety ratings, and generates a
stroller-friendly itinerary and packing list.`,
	PersistentPreRunE: initializeApp,
}

// SetVersion records build information for the version output.
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	exec := upstream.NewExecutor(logger,
		upstream.WithMaxRetries(cfg.HTTP.MaxRetries),
		upstream.WithBaseDelay(time.Duration(cfg.HTTP.BaseDelayMs)*time.Millisecond),
		upstream.WithAttemptTimeout(time.Duration(cfg.HTTP.TimeoutMs)*time.Millisecond),
		upstream.WithRetryHook(func(attempt int, failure *upstream.Failure) {
			logger.Warn().
				Int("attempt", attempt).
				Int("status", failure.StatusCode).
				Str("reason", failure.Message).
				Msg("Upstream request failed, retrying")
		}),
		upstream.WithRateLimitHook(func(info upstream.RateLimitInfo) {
			if info.Remaining >= 0 && info.Remaining < 5 {
				logger.Warn().
					Int("remaining", info.Remaining).
					Time("reset_at", info.ResetAt).
					Msg("Upstream quota nearly exhausted")
			}
		}),
	)

	cacheTTL := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	cacheSize := cfg.Cache.MaxEntries

	geocodeClient = geocode.NewClient(exec, logger,
		geocode.WithBaseURL(cfg.Geocoding.URL),
		geocode.WithCache(cacheTTL, cacheSize),
	)
	weatherClient = weather.NewClient(exec, logger,
		weather.WithBaseURL(cfg.Weather.URL),
		weather.WithCache(cacheTTL, cacheSize),
	)

	var safetyProvider trip.SafetyProvider
	if cfg.Safety.Enabled && cfg.Safety.ClientID != "" && cfg.Safety.ClientSecret != "" {
		safetyClient = safety.NewClient(cfg.Safety.URL, cfg.Safety.ClientID, cfg.Safety.ClientSecret, exec, logger,
			safety.WithCache(cacheTTL, cacheSize),
		)
		safetyProvider = safetyClient
		logger.Info().Msg("Safety ratings integration enabled")
	} else {
		logger.Debug().Msg("Safety ratings integration disabled")
	}

	tripPlanner = planner.New(cfg.OpenAI.APIKey, logger, planner.WithModel(cfg.OpenAI.Model))
	tripService = trip.NewService(geocodeClient, weatherClient, safetyProvider, tripPlanner, logger)

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	noColor := !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd())
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
