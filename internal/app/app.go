package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/davidriba/f1-fantasy-league/external/jolpica"
	"github.com/davidriba/f1-fantasy-league/internal/config"
	"github.com/davidriba/f1-fantasy-league/internal/domain/driver"
	"github.com/davidriba/f1-fantasy-league/internal/domain/market"
	"github.com/davidriba/f1-fantasy-league/internal/domain/pricing"
	"github.com/davidriba/f1-fantasy-league/internal/domain/user"
	"github.com/davidriba/f1-fantasy-league/internal/infrastructure/account/paddock"
	"github.com/davidriba/f1-fantasy-league/internal/infrastructure/repository/memory"
	"github.com/davidriba/f1-fantasy-league/internal/infrastructure/repository/postgres"
	"github.com/davidriba/f1-fantasy-league/internal/interfaces/httpapi"
	"github.com/davidriba/f1-fantasy-league/internal/platform/cache"
	idgen "github.com/davidriba/f1-fantasy-league/internal/platform/id"
	"github.com/davidriba/f1-fantasy-league/internal/platform/logging"
	"github.com/davidriba/f1-fantasy-league/internal/platform/resilience"
	"github.com/davidriba/f1-fantasy-league/internal/usecase"
)

const driverIndexTimeout = 10 * time.Second

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		uow        market.UnitOfWork
		driverRepo driver.Repository
		userRepo   user.Repository
		closeDB    func() error
	)

	if strings.TrimSpace(cfg.DBURL) == "" {
		store := memory.NewMarketStore()
		uow = store
		driverRepo = memory.NewDriverRepository(memory.SeedDrivers())
		userRepo = memory.NewUserRepository(memory.SeedUsers())
		logger.Info("market storage using in-memory store", "reason", "DB_URL empty")
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		uow = postgres.NewUnitOfWork(db)
		driverRepo = postgres.NewDriverRepository(db)
		userRepo = postgres.NewUserRepository(db)
		closeDB = db.Close
		logger.Info("market storage using postgres", "database", dbNameFromURL(cfg.DBURL))
	}

	results, err := buildResultsProvider(cfg, driverRepo, logger)
	if err != nil {
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, err
	}

	pricers, err := ants.NewPool(cfg.PricerPoolSize)
	if err != nil {
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, fmt.Errorf("create pricer pool: %w", err)
	}

	var statsCache *cache.Store
	if cfg.CacheEnabled {
		statsCache = cache.NewStore(cfg.CacheTTL)
	}

	rules, err := marketRulesFromConfig(cfg)
	if err != nil {
		pricers.Release()
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, err
	}
	formula := pricing.Formula{
		BasePrice:        cfg.MarketBasePrice,
		PointsMultiplier: cfg.MarketPointsMultiplier,
		PodiumBonus:      cfg.MarketPodiumBonus,
		VictoryBonus:     cfg.MarketVictoryBonus,
	}
	idGen := idgen.NewRandomGenerator()

	marketSvc := usecase.NewMarketService(uow, results, rules, formula, idGen, nil, pricers, logger)
	teamSvc := usecase.NewTeamService(uow, results, driverRepo, userRepo, rules, idGen, nil, logger)
	ownershipSvc := usecase.NewOwnershipService(uow, driverRepo, results, formula, rules, statsCache, logger)

	verifier := paddock.NewClient(
		&http.Client{Timeout: cfg.PaddockTimeout},
		cfg.PaddockBaseURL,
		cfg.PaddockIntrospectURL,
		cfg.PaddockAdminKey,
		logger,
	)

	handler := httpapi.NewHandler(marketSvc, teamSvc, ownershipSvc, cfg.SeasonYear, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.OpsToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		pricers.Release()
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server.RegisterOnShutdown(func() {
		pricers.Release()
		if closeDB != nil {
			if err := closeDB(); err != nil {
				logger.Error("close database", "error", err)
			}
		}
	})

	return server, nil
}

func marketRulesFromConfig(cfg config.Config) (market.Rules, error) {
	rules := market.DefaultRules(cfg.SeasonYear)
	rules.BuyoutMultiplier = cfg.MarketBuyoutMultiplier
	rules.SellRefundRate = cfg.MarketSellRefundRate
	rules.LockAfterPurchase = time.Duration(cfg.MarketLockDays) * 24 * time.Hour
	rules.MaxBuyoutsPerPairPerSeason = cfg.MarketMaxBuyoutsPerPair
	rules.MaxDriversPerUser = cfg.MarketMaxDrivers
	rules.MinLineupDrivers = cfg.MarketMinLineup
	rules.InitialBudget = cfg.MarketInitialBudget

	if err := rules.Validate(); err != nil {
		return market.Rules{}, fmt.Errorf("market rules: %w", err)
	}

	return rules, nil
}

func buildResultsProvider(cfg config.Config, driverRepo driver.Repository, logger *slog.Logger) (usecase.ResultsProvider, error) {
	if !cfg.JolpicaEnabled {
		logger.Info("results provider using static season stats", "reason", "JOLPICA_ENABLED=false")
		return memory.NewStaticResultsProvider(memory.SeedSeasonStats()), nil
	}

	ids, err := driverCodeIndex(driverRepo, cfg.SeasonYear)
	if err != nil {
		return nil, fmt.Errorf("build driver code index: %w", err)
	}

	client := jolpica.NewClient(jolpica.ClientConfig{
		BaseURL:         cfg.JolpicaBaseURL,
		Timeout:         cfg.JolpicaTimeout,
		MaxRetries:      cfg.JolpicaMaxRetries,
		PageLimit:       cfg.JolpicaPageLimit,
		DriverIDsByCode: ids,
		Logger:          logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.JolpicaCircuitEnabled,
			FailureThreshold: cfg.JolpicaCircuitFailureCount,
			OpenTimeout:      cfg.JolpicaCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.JolpicaCircuitHalfOpenMaxReq,
		},
	})

	logger.Info("results provider using jolpica", "base_url", cfg.JolpicaBaseURL, "drivers_mapped", len(ids))

	return client, nil
}

// driverCodeIndex maps the catalog's three-letter driver codes to internal
// ids so provider results can be joined back to catalog rows.
func driverCodeIndex(driverRepo driver.Repository, seasonYear int) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), driverIndexTimeout)
	defer cancel()

	drivers, err := driverRepo.ListBySeason(ctx, seasonYear)
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(drivers))
	for _, d := range drivers {
		code := strings.ToUpper(strings.TrimSpace(d.Code))
		if code == "" {
			continue
		}
		out[code] = d.ID
	}

	return out, nil
}
