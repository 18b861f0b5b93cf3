package internal

import (
	chatErrors "chat-live/errors"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true" validate:"required"`
	Host           string `env:"HOST,default=localhost" validate:"required"`
	Port           int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	GrpcPort       int    `env:"GRPC_PORT,default=9090" validate:"min=1,max=65535,nefield=Port"`
	DebugPort      int    `env:"DEBUG_PORT,default=8081" validate:"min=1,max=65535,nefield=Port"`

	FeedRetention         time.Duration `env:"FEED_RETENTION,default=24h" validate:"gt=0"`
	CursorRetention       time.Duration `env:"CURSOR_RETENTION,default=10m" validate:"gt=0"`
	CursorRefreshInterval time.Duration `env:"CURSOR_REFRESH_INTERVAL,default=1m" validate:"gt=0,ltfield=CursorRetention"`
	LimitMessages         *int          `env:"LIMIT_MESSAGES" validate:"omitempty,min=1"`
	StreamBatchSize       int           `env:"STREAM_BATCH_SIZE,default=64" validate:"min=1"`

	ModerationWords []string `env:"MODERATION_WORDS"`
	ModerationChar  string   `env:"MODERATION_CHAR,default=*"`

	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,default=chat-live.messages" validate:"required"`
	RedisAddr    string   `env:"REDIS_ADDR"`

	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s" validate:"gt=0"`
	MetricInterval      time.Duration `env:"METRIC_INTERVAL,default=5s" validate:"gt=0"`
	GCInterval          time.Duration `env:"GC_INTERVAL,default=5m" validate:"gt=0"`
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL,default=10s" validate:"gt=0"`
}

// LoadConfig reads an optional .env file, then the environment, then
// validates the result. Every failure wraps ErrInvalidInput.
func LoadConfig(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: load env file: %w", chatErrors.ErrInvalidInput, err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", chatErrors.ErrInvalidInput, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", chatErrors.ErrInvalidInput, err)
	}
	if _, err := CharacterRune(c.ModerationChar); err != nil {
		return fmt.Errorf("%w: %w", chatErrors.ErrInvalidInput, err)
	}
	return nil
}

// Brokers drops the empty entries an unset or trailing separated variable leaves.
func (c Config) Brokers() []string {
	return lo.Compact(c.KafkaBrokers)
}

func (c Config) Words() []string {
	return lo.Compact(c.ModerationWords)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHAR must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
