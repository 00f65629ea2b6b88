// Package config resolves process configuration the way the teacher's
// services do: a small set of bootstrap env vars locate Vault, then the
// bulk of configuration (DB URL, API keys, CORS origin) is pulled from a
// Vault KV v2 secret via go-core/config.SecretManager. Local/dev runs
// without Vault fall back to plain env vars, since DroneWatch's collectors
// and dev-loop are expected to run outside the teacher's cluster too.
package config

import (
	"fmt"
	"os"
	"strconv"

	vaultapi "github.com/hashicorp/vault/api"
)

// Config is everything cmd/dronewatch-api needs to wire up.
type Config struct {
	PostgresURL       string
	NATSUrl           string
	OTelEndpoint      string // empty disables tracing/metrics export
	IngestBearerToken string
	CORSOrigin        string
	ClassifierBaseURL string
	ClassifierAPIKey  string
	ClassifierModel   string
	HTTPAddr          string
	OrchestratorCron  string // robfig/cron expression, e.g. "0 */15 * * * *"
}

// SecretManager mirrors go-core/config.SecretManager's Vault KV v2 access,
// copied here (rather than imported) since it is a small, self-contained
// adapter and the module does not otherwise depend on the teacher's
// packages/go-core tree.
type SecretManager struct {
	client *vaultapi.Client
}

// NewSecretManager creates a Vault client pointed at address and
// authenticated with token.
func NewSecretManager(address, token string) (*SecretManager, error) {
	cfg := vaultapi.DefaultConfig()
	cfg.Address = address

	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client initialization failed: %w", err)
	}
	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

// GetKV2 reads a KV v2 secret at path and returns its unwrapped data map.
func (s *SecretManager) GetKV2(path string) (map[string]interface{}, error) {
	secret, err := s.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret at %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no data found at %s", path)
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected data format at %s", path)
	}
	return data, nil
}

// Load resolves Config from Vault when VAULT_ADDR is set, else from plain
// env vars. This is a deliberate deviation from the teacher's Vault-or-die
// posture: DroneWatch is meant to also run as a standalone dev binary.
func Load() (Config, error) {
	if vaultAddr := os.Getenv("VAULT_ADDR"); vaultAddr != "" {
		return loadFromVault(vaultAddr)
	}
	return loadFromEnv(), nil
}

func loadFromVault(vaultAddr string) (Config, error) {
	token := os.Getenv("VAULT_TOKEN")
	path := os.Getenv("VAULT_SECRET_PATH")
	if path == "" {
		path = "secret/data/dronewatch/api"
	}

	mgr, err := NewSecretManager(vaultAddr, token)
	if err != nil {
		return Config{}, err
	}
	secrets, err := mgr.GetKV2(path)
	if err != nil {
		return Config{}, err
	}

	get := func(key, fallback string) string {
		if v, ok := secrets[key].(string); ok && v != "" {
			return v
		}
		return fallback
	}

	return Config{
		PostgresURL:       get("PG_URL", ""),
		NATSUrl:           get("NATS_URL", "nats://localhost:4222"),
		OTelEndpoint:      get("OTEL_EXPORTER_OTLP_ENDPOINT", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		IngestBearerToken: get("INGEST_BEARER_TOKEN", ""),
		CORSOrigin:        get("CORS_ORIGIN", "*"),
		ClassifierBaseURL: get("CLASSIFIER_BASE_URL", ""),
		ClassifierAPIKey:  get("CLASSIFIER_API_KEY", ""),
		ClassifierModel:   get("CLASSIFIER_MODEL", "drone-report-classifier-v1"),
		HTTPAddr:          get("HTTP_ADDR", ":8080"),
		OrchestratorCron:  get("ORCHESTRATOR_CRON", "0 */15 * * * *"),
	}, nil
}

func loadFromEnv() Config {
	return Config{
		PostgresURL:       os.Getenv("PG_URL"),
		NATSUrl:           envOr("NATS_URL", "nats://localhost:4222"),
		OTelEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		IngestBearerToken: os.Getenv("INGEST_BEARER_TOKEN"),
		CORSOrigin:        envOr("CORS_ORIGIN", "*"),
		ClassifierBaseURL: os.Getenv("CLASSIFIER_BASE_URL"),
		ClassifierAPIKey:  os.Getenv("CLASSIFIER_API_KEY"),
		ClassifierModel:   envOr("CLASSIFIER_MODEL", "drone-report-classifier-v1"),
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		OrchestratorCron:  envOr("ORCHESTRATOR_CRON", "0 */15 * * * *"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvInt parses key as an int, or returns fallback if unset/invalid.
func EnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
