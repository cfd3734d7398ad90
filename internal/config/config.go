package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Render   RenderConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type LLMConfig struct {
	ServerURL string
	Model     string
	Timeout   time.Duration
}

type PipelineConfig struct {
	// ChunkDelay is the mandatory pause between cleaning calls.
	ChunkDelay time.Duration
	// TopicBatchSize caps concurrent topic generation calls.
	TopicBatchSize int
	// AutoSaveThreshold is the unsaved-question count that triggers a save.
	AutoSaveThreshold int
}

type RenderConfig struct {
	// FontPath points at a TTF used by the raster renderer. When empty or
	// unreadable the renderer reports itself unavailable and documents fall
	// back to plain text.
	FontPath  string
	BrandName string
	Tagline   string
}

type LoggerConfig struct {
	Level string
	Env   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("database.path", "paperforge.db")
	viper.SetDefault("redis.ttl", 300)
	viper.SetDefault("llm.model", "qwen3:0.6b")
	viper.SetDefault("llm.timeout", 60)
	viper.SetDefault("pipeline.chunk_delay_ms", 500)
	viper.SetDefault("pipeline.topic_batch_size", 3)
	viper.SetDefault("pipeline.autosave_threshold", 10)
	viper.SetDefault("render.brand_name", "CGP Career Avenues")
	viper.SetDefault("render.tagline", "Gateway to IITs")
	viper.SetDefault("logger.level", "info")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			TTL:      viper.GetDuration("redis.ttl") * time.Second,
		},
		LLM: LLMConfig{
			ServerURL: viper.GetString("llm.server_url"),
			Model:     viper.GetString("llm.model"),
			Timeout:   viper.GetDuration("llm.timeout") * time.Second,
		},
		Pipeline: PipelineConfig{
			ChunkDelay:        viper.GetDuration("pipeline.chunk_delay_ms") * time.Millisecond,
			TopicBatchSize:    viper.GetInt("pipeline.topic_batch_size"),
			AutoSaveThreshold: viper.GetInt("pipeline.autosave_threshold"),
		},
		Render: RenderConfig{
			FontPath:  viper.GetString("render.font_path"),
			BrandName: viper.GetString("render.brand_name"),
			Tagline:   viper.GetString("render.tagline"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
	}

	return cfg, nil
}
