package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/match-predictor/external/apifootball"
	"github.com/riskibarqy/match-predictor/internal/config"
	"github.com/riskibarqy/match-predictor/internal/domain/prediction"
	"github.com/riskibarqy/match-predictor/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/match-predictor/internal/interfaces/httpapi"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/platform/resilience"
	"github.com/riskibarqy/match-predictor/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
)

// App holds the services shared by every binary. Close releases the pool.
type App struct {
	cfg    config.Config
	logger *logging.Logger
	store  *sqlstore.Store

	Provider    *apifootball.Client
	Features    *usecase.FeatureService
	Teams       *usecase.TeamService
	Predictions *usecase.PredictionService
	Collector   *usecase.CollectorService
	Training    *usecase.TrainingService
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := sqlstore.Open(cfg.DBDriver, cfg.DBURL, otelsql.WithQueryFormatter(formatDBQueryForTrace))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DBDriver == config.DBDriverPostgres {
		store.DB().SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	logger.Info("database connected", "driver", cfg.DBDriver, "database", dbNameFromURL(cfg.DBURL))

	if cfg.DBAutoMigrate {
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.Info("database migrations applied", "driver", cfg.DBDriver)
	}

	provider := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:        cfg.APIFootballBaseURL,
		APIKey:         cfg.APIFootballAPIKey,
		Host:           cfg.APIFootballHost,
		Timeout:        cfg.APIFootballTimeout,
		DailyBudget:    cfg.APIFootballDailyBudget,
		PacingInterval: cfg.APIFootballPacingInterval,
		RetryMaxWait:   cfg.APIFootballRetryMaxWait,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
	})

	features := usecase.NewFeatureService(store.Teams, store.Stats, usecase.FeatureConfig{
		Window:       cfg.PredictionWindow,
		CacheEnabled: cfg.CacheEnabled,
		CacheTTL:     cfg.CacheTTL,
	}, logger.Named("features"))

	scoreline := prediction.DefaultScorelineModel()
	heuristic := prediction.NewHeuristic(prediction.HeuristicConfig{
		HomeAdvantage:  cfg.PredictionHomeAdvantage,
		FormWeight:     cfg.PredictionFormWeight,
		ShootingWeight: cfg.PredictionShootingWeight,
		DrawFraction:   cfg.PredictionDrawFraction,
	}, scoreline)
	learned := prediction.NewLogistic(prediction.DefaultLogisticConfig(), scoreline)

	var (
		scorer   prediction.Scorer = heuristic
		fallback prediction.Scorer
	)
	if cfg.PredictionBackend == config.BackendLearned {
		scorer, fallback = learned, heuristic
	}

	a := &App{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		Provider:    provider,
		Features:    features,
		Teams:       usecase.NewTeamService(store.Teams, features),
		Predictions: usecase.NewPredictionService(store.Teams, features, scorer, fallback, usecase.PredictionConfig{BatchWorkers: cfg.PredictionBatchWorkers}, logger.Named("prediction")),
		Collector:   usecase.NewCollectorService(provider, store.Teams, store.Matches, store.Stats, competitionsFrom(cfg.Competitions), logger.Named("collector")),
		Training:    usecase.NewTrainingService(store.Matches, features, learned, logger.Named("training")),
	}

	if cfg.PredictionTrainOnStart {
		if _, err := a.Training.Train(ctx, ""); err != nil {
			// The fallback scorer keeps serving until enough history exists.
			logger.WarnContext(ctx, "initial model training skipped", "error", err)
		}
	}

	return a, nil
}

// Competitions returns the configured competitions, optionally narrowed to
// the given names.
func (a *App) Competitions(names ...string) []usecase.Competition {
	all := competitionsFrom(a.cfg.Competitions)
	if len(names) == 0 {
		return all
	}

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	out := make([]usecase.Competition, 0, len(names))
	for _, comp := range all {
		if _, ok := wanted[comp.Name]; ok {
			out = append(out, comp)
		}
	}
	return out
}

// NewHTTPServer builds the API server on top of the shared services.
func (a *App) NewHTTPServer() (*http.Server, error) {
	handler := httpapi.NewHandler(a.Teams, a.Predictions, a.store.DB(), a.logger.Named("http"))
	router := httpapi.NewRouter(handler, a.logger, a.cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func (a *App) Close() error {
	return a.store.Close()
}

func competitionsFrom(items []config.Competition) []usecase.Competition {
	out := make([]usecase.Competition, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.Competition{Name: item.Name, LeagueID: item.LeagueID})
	}
	return out
}
