package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_SERVER_URL points at a running, seeded chat-live HTTP API.
	// The suites are skipped when it is empty.
	ServerURL string `envconfig:"CHAT_SERVER_URL"`
	OpsAddr   string `envconfig:"CHAT_GRPC_ADDR" default:"localhost:9090"`
	// E2E_DEBUG_JSON dumps gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
