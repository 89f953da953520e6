package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config armazena todas as configurações do Stockroom.
// Os valores vêm de variáveis de ambiente (opcionalmente carregadas de um .env no main).
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Armazenamento: caminho de arquivo SQLite (padrão local) ou URL postgres://
	DatabaseURL  string        `envconfig:"DATABASE_URL" default:"stockroom.db"`
	DBTimeout    time.Duration `envconfig:"DB_TIMEOUT" default:"5s"`
	TxMaxRetries uint64        `envconfig:"TX_MAX_RETRIES" default:"3"`
	TxRetryBase  time.Duration `envconfig:"TX_RETRY_BASE" default:"50ms"`

	// Cache (Redis). Vazio = cache em memória do processo.
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	// Segurança (JWT)
	JWTSecretKey string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenExpiry  time.Duration `envconfig:"JWT_EXPIRY" default:"60m"`

	// Rate limiting do login, formato ulule (e.g., "10-M" = 10 por minuto)
	LoginRateLimit string `envconfig:"LOGIN_RATE_LIMIT" default:"10-M"`
}

// Load lê a configuração do ambiente e valida os campos dependentes.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("falha ao ler configuração: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL não pode ser vazio")
	}
	if strings.TrimSpace(cfg.JWTSecretKey) == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY deve ser definida")
	}
	if cfg.DBTimeout <= 0 {
		return nil, fmt.Errorf("DB_TIMEOUT deve ser positivo, recebido %s", cfg.DBTimeout)
	}

	return &cfg, nil
}

// LoadConfig carrega as configurações e encerra o processo se estiverem inválidas.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Erro de Configuração: %v", err)
	}
	return cfg
}
