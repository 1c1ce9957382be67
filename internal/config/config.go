package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey   string `env:"LLM_API_KEY,required,notEmpty"`
	// Solo aplica al proveedor openai.
	LLMBaseURL string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string        `env:"LLM_MODEL" envDefault:"gemini-2.5-flash"`
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`
	// 0 deja la temperatura por defecto del proveedor.
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.3"`

	RedditClientID     string        `env:"REDDIT_CLIENT_ID,required,notEmpty"`
	RedditClientSecret string        `env:"REDDIT_CLIENT_SECRET,required,notEmpty"`
	RedditUserAgent    string        `env:"REDDIT_USER_AGENT,required,notEmpty"`
	RedditBaseURL      string        `env:"REDDIT_BASE_URL" envDefault:"https://oauth.reddit.com"`
	RedditAuthURL      string        `env:"REDDIT_AUTH_URL" envDefault:"https://www.reddit.com/api/v1/access_token"`
	RedditTimeout      time.Duration `env:"REDDIT_TIMEOUT" envDefault:"20s"`

	// Sin PEOPLE_API_KEY el enriquecimiento queda deshabilitado, no es un error.
	PeopleAPIKey  string        `env:"PEOPLE_API_KEY"`
	PeopleAPIURL  string        `env:"PEOPLE_API_URL" envDefault:"https://api.peopledatalabs.com/v5/person/enrich"`
	PeopleTimeout time.Duration `env:"PEOPLE_TIMEOUT" envDefault:"15s"`

	TopicsEnabled       bool `env:"TOPICS_ENABLED" envDefault:"true"`
	TopicMinClusterSize int  `env:"TOPIC_MIN_CLUSTER_SIZE" envDefault:"5"`
	TopicMaxFeatures    int  `env:"TOPIC_MAX_FEATURES" envDefault:"3000"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"10m"`

	JWTSecret           string `env:"JWT_SECRET"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EnrichmentEnabled indica si hay credenciales para People Data Labs.
func (c *Config) EnrichmentEnabled() bool {
	return c != nil && c.PeopleAPIKey != ""
}
