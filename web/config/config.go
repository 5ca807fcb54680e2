package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-web/pkg/kafka"
	"github.com/Astemirdum/library-web/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"WEB_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"WEB_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"30s"`
	SecureCookie bool          `yaml:"secureCookie" envconfig:"SECURE_COOKIE"`
}

type Backend struct {
	BaseURL string        `yaml:"baseUrl" envconfig:"BACKEND_URI" default:"http://localhost:5000"`
	Timeout time.Duration `yaml:"timeout" envconfig:"BACKEND_TIMEOUT" default:"30s"`
}

type UI struct {
	SearchDebounce time.Duration `yaml:"searchDebounce" envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
	WorkspaceTTL   time.Duration `yaml:"workspaceTtl" envconfig:"WORKSPACE_TTL" default:"30m"`
	MaxWorkspaces  int           `yaml:"maxWorkspaces" envconfig:"MAX_WORKSPACES" default:"10000"`
	DefaultLocale  string        `yaml:"defaultLocale" envconfig:"DEFAULT_LOCALE" default:"es"`
}

type Config struct {
	Server  HTTPServer   `yaml:"server"`
	Backend Backend      `yaml:"backend"`
	UI      UI           `yaml:"ui"`
	Kafka   kafka.Config `yaml:"kafka"`
	Log     logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment; options are applied on top of it.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
		if cfg.Log.LogLevel == zapcore.DebugLevel {
			printConfig(cfg)
		}
	})

	return cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
