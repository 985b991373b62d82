package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/handler/http"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/logger"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/mongo"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/postgres"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/prometheus"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/redis"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/storage"
	"github.com/sm8ta/webike_maintenance_microservice/internal/adapter/vision"
	"github.com/sm8ta/webike_maintenance_microservice/internal/config"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/services"

	"github.com/go-playground/validator/v10"
	redisClient "github.com/redis/go-redis/v9"
	mongoDriver "go.mongodb.org/mongo-driver/mongo"
)

type App struct {
	Config       *config.Container
	Logger       *logger.LoggerAdapter
	DB           *sql.DB
	MongoClient  *mongoDriver.Client
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	HTTPRouter   *http.Router
}

type repositories struct {
	records ports.MaintenanceRecordRepository
	tags    ports.TagIntervalRepository
	checks  ports.OdoCheckRepository
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter, err := logger.NewLoggerAdapter(cfg.App.Env, cfg.App.LogLevel, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app":   cfg.App.Name,
		"env":   cfg.App.Env,
		"store": cfg.Store.Driver,
	})

	a := &App{
		Config: cfg,
		Logger: loggerAdapter,
	}

	// Set redis
	a.RedisClient = redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := a.RedisClient.Ping(ctx).Result(); err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	a.RedisAdapter = redis.NewRedisAdapter(a.RedisClient)

	// Entity store
	repos, err := a.openStore(ctx)
	if err != nil {
		a.closeClients(ctx)
		return nil, err
	}

	// Image store
	images, err := storage.NewImageStore(ctx, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("failed to init image store: %w", err)
	}

	// Odometer reader
	reader := vision.NewOpenAIReader(vision.Options{
		BaseURL:   cfg.Vision.BaseURL,
		APIKey:    cfg.Vision.APIKey,
		Model:     cfg.Vision.Model,
		MaxTokens: cfg.Vision.MaxTokens,
		Timeout:   cfg.Vision.Timeout,
	}, loggerAdapter)

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Services
	maintenanceService := services.NewMaintenanceService(repos.records, repos.tags, images, loggerAdapter, validate, a.RedisAdapter)
	tagService := services.NewTagService(repos.tags, loggerAdapter, validate, a.RedisAdapter)
	odoCheckService := services.NewOdoCheckService(repos.checks, repos.records, repos.tags, loggerAdapter, metrics, evaluationPolicy(cfg.Evaluation))
	odometerService := services.NewOdometerService(reader, loggerAdapter)

	// HTTP Handlers
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, loggerAdapter)
	recordHandler := http.NewRecordHandler(maintenanceService, loggerAdapter, metrics)
	tagHandler := http.NewTagHandler(tagService, loggerAdapter, metrics)
	checkHandler := http.NewCheckHandler(odoCheckService, loggerAdapter, metrics)
	odoHandler := http.NewOdoHandler(odometerService, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		tokenService,
		metrics,
		recordHandler,
		tagHandler,
		checkHandler,
		odoHandler,
	)
	if err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}
	a.HTTPRouter = router

	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repositories, error) {
	cfg := a.Config

	if cfg.Store.Driver == config.StorePostgres {
		db, err := postgres.Open(ctx, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		a.DB = db

		if err := postgres.Migrate(db, cfg.DB.MigrationsDir); err != nil {
			return nil, err
		}

		return &repositories{
			records: postgres.NewMaintenanceRecordRepository(db),
			tags:    postgres.NewTagIntervalRepository(db),
			checks:  postgres.NewOdoCheckRepository(db),
		}, nil
	}

	client, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.MongoClient = client

	db := client.Database(cfg.Mongo.Database)
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &repositories{
		records: mongo.NewMaintenanceRecordRepository(db, a.Logger),
		tags:    mongo.NewTagIntervalRepository(db, a.Logger),
		checks:  mongo.NewOdoCheckRepository(db),
	}, nil
}

func evaluationPolicy(cfg *config.Evaluation) services.EvaluationPolicy {
	policy := services.DefaultEvaluationPolicy()
	policy.DueSoonRatio = cfg.DueSoonRatio
	policy.NoHistory = services.NoHistoryPolicy(cfg.NoHistory)
	policy.MissingDistanceLast = cfg.MissingKmLast
	return policy
}

// Runs all services
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	a.closeClients(ctx)

	a.Logger.Info("Application stopped successfully", nil)
	_ = a.Logger.Sync()
	return nil
}

func (a *App) closeClients(ctx context.Context) {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("Database close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if a.MongoClient != nil {
		if err := a.MongoClient.Disconnect(ctx); err != nil {
			a.Logger.Error("MongoDB disconnect error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Logger.Error("Redis close error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}
