package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                    App                    `mapstructure:",squash"`
	Server                 Server                 `mapstructure:",squash"`
	Database               Database               `mapstructure:",squash"`
	Cors                   Cors                   `mapstructure:",squash"`
	Cache                  Cache                  `mapstructure:",squash"`
	ProductTotalsReconcile ProductTotalsReconcile `mapstructure:",squash"`
	SecretKey              string                 `mapstructure:"secret_key" validate:"required"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port" validate:"required,numeric"`
}

type Database struct {
	DSN             string        `mapstructure:"-"`
	Driver          string        `mapstructure:"database_driver" validate:"required"`
	Password        string        `mapstructure:"database_password"`
	URL             string        `mapstructure:"database_url" validate:"required"`
	User            string        `mapstructure:"database_user" validate:"required"`
	MaxOpenConns    int           `mapstructure:"database_max_open_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"database_conn_max_lifetime" validate:"gte=0"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Cors struct {
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type Cache struct {
	Enabled       bool          `mapstructure:"dashboard_cache_enabled"`
	RedisAddr     string        `mapstructure:"redis_addr" validate:"required_if=Enabled true"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
	TTL           time.Duration `mapstructure:"dashboard_cache_ttl" validate:"required_if=Enabled true"`
	Prefix        string        `mapstructure:"dashboard_cache_prefix"`
}

type ProductTotalsReconcile struct {
	CronSchedule      string `mapstructure:"product_totals_reconcile_cron" validate:"required_if=Enabled true"`
	MaxConcurrentJobs int    `mapstructure:"product_totals_reconcile_max_concurrent_jobs" validate:"gte=0"`
	Enabled           bool   `mapstructure:"product_totals_reconcile_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/shop_ops?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Cache do dashboard em Redis. Desabilitado, o dashboard é recalculado a cada requisição
	viper.SetDefault("DASHBOARD_CACHE_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("DASHBOARD_CACHE_TTL", "1m")
	viper.SetDefault("DASHBOARD_CACHE_PREFIX", "shop-ops:")

	viper.SetDefault("PRODUCT_TOTALS_RECONCILE_CRON", "0 3 * * *")      // Todos os dias às 3h da manhã
	viper.SetDefault("PRODUCT_TOTALS_RECONCILE_MAX_CONCURRENT_JOBS", 3) // 3 proprietários processados em paralelo
	viper.SetDefault("PRODUCT_TOTALS_RECONCILE_ENABLED", false)         // Habilitar reconciliação dos totais dos produtos

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // apenas local

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar configuração")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate confere os campos obrigatórios, inclusive os que dependem de um recurso habilitado
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "configuração inválida")
	}
	return nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// cmd/api roda dois níveis abaixo da raiz
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		logrus.Debug("Tentando carregar .env de:", location)
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
