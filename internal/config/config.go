package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
)

type (
	Container struct {
		App        *App        `envPrefix:"APP_"`
		Token      *Token      `envPrefix:"TOKEN_"`
		Store      *Store      `envPrefix:"STORE_"`
		DB         *DB         `envPrefix:"DB_"`
		Mongo      *Mongo      `envPrefix:"MONGO_"`
		HTTP       *HTTP       `envPrefix:"HTTP_"`
		Redis      *Redis      `envPrefix:"REDIS_"`
		Storage    *Storage    `envPrefix:"MINIO_"`
		Vision     *Vision     `envPrefix:"OPENAI_"`
		Evaluation *Evaluation `envPrefix:"EVAL_"`
	}

	App struct {
		Name     string `env:"NAME" envDefault:"maintenance-service"`
		Env      string `env:"ENV" envDefault:"development"`
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Token struct {
		Secret string `env:"SECRET,required,notEmpty"`
	}

	Store struct {
		Driver string `env:"DRIVER" envDefault:"mongo"`
	}

	DB struct {
		Host          string `env:"HOST" envDefault:"localhost"`
		Port          string `env:"PORT" envDefault:"5432"`
		User          string `env:"USER" envDefault:"postgres"`
		Password      string `env:"PASSWORD"`
		Name          string `env:"NAME" envDefault:"maintenance"`
		MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"./internal/adapter/postgres/migrations"`
	}

	Mongo struct {
		URI            string        `env:"URI" envDefault:"mongodb://localhost:27017"`
		Database       string        `env:"DB" envDefault:"maintenance"`
		ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
	}

	HTTP struct {
		Env            string
		Port           string `env:"PORT" envDefault:"8080"`
		AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"*"`
		URL            string `env:"URL"`
	}

	Redis struct {
		Address  string `env:"ADDRESS" envDefault:"localhost:6379"`
		Password string `env:"PASSWORD"`
	}

	Storage struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET_NAME" envDefault:"maintenance"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
		PublicURL string `env:"PUBLIC_URL"`
	}

	Vision struct {
		APIKey    string        `env:"API_KEY"`
		BaseURL   string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
		Model     string        `env:"MODEL" envDefault:"gpt-4o"`
		MaxTokens int           `env:"MAX_TOKENS" envDefault:"10"`
		Timeout   time.Duration `env:"TIMEOUT" envDefault:"30s"`
	}

	Evaluation struct {
		DueSoonRatio  float64 `env:"DUE_SOON_RATIO" envDefault:"0.10"`
		NoHistory     string  `env:"NO_HISTORY" envDefault:"omit"`
		MissingKmLast bool    `env:"MISSING_KM_LAST" envDefault:"false"`
	}
)

// New reads .env outside production, a missing file is fine, and then
// parses the environment.
func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Container{
		App:        &App{},
		Token:      &Token{},
		Store:      &Store{},
		DB:         &DB{},
		Mongo:      &Mongo{},
		HTTP:       &HTTP{},
		Redis:      &Redis{},
		Storage:    &Storage{},
		Vision:     &Vision{},
		Evaluation: &Evaluation{},
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.HTTP.Env = cfg.App.Env

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Container) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Evaluation.NoHistory {
	case "omit", "overdue":
	default:
		return fmt.Errorf("unknown EVAL_NO_HISTORY %q", c.Evaluation.NoHistory)
	}
	if c.Evaluation.DueSoonRatio < 0 || c.Evaluation.DueSoonRatio >= 1 {
		return fmt.Errorf("EVAL_DUE_SOON_RATIO must be in [0, 1), got %v", c.Evaluation.DueSoonRatio)
	}
	return nil
}

func (d *DB) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}
