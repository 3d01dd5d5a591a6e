package config

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfig = `{
  "server": {"port": ${PARLEY_TEST_PORT:8080}, "log_level": "${PARLEY_TEST_LOG_LEVEL:info}"},
  "llm": {"endpoint": "${PARLEY_TEST_LLM_ENDPOINT}", "model": "gpt-test", "temperature": 0.2},
  "database": {"postgres": {"dsn": "${PARLEY_TEST_DSN:postgres://local:5432/parley}"}},
  "prompts": {"qa": "configs/prompts/qa.yaml", "sql": "configs/prompts/sql.yaml"}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadSubstitutesEnvironment(t *testing.T) {
	t.Setenv("PARLEY_TEST_LLM_ENDPOINT", "http://llm.internal/v1")
	t.Setenv("PARLEY_TEST_PORT", "9090")

	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want env override", cfg.Server.Port)
	}
	if cfg.LLM.Endpoint != "http://llm.internal/v1" {
		t.Fatalf("endpoint = %q", cfg.LLM.Endpoint)
	}
	if cfg.LLM.Model != "gpt-test" || cfg.LLM.Temperature != 0.2 {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Setenv("PARLEY_TEST_LLM_ENDPOINT", "http://llm.internal/v1")

	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" {
		t.Fatalf("log level = %q, want default", cfg.Server.LogLevel)
	}
	if cfg.Database.Postgres.DSN != "postgres://local:5432/parley" {
		t.Fatalf("dsn = %q", cfg.Database.Postgres.DSN)
	}
}

func TestLoadMissingVarWithoutDefault(t *testing.T) {
	// ${PARLEY_TEST_LLM_ENDPOINT} has no default, so an unset var leaves the
	// field empty rather than failing the load.
	os.Unsetenv("PARLEY_TEST_LLM_ENDPOINT")

	cfg, err := Load(writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Endpoint != "" {
		t.Fatalf("endpoint = %q, want empty", cfg.LLM.Endpoint)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	if _, err := Load(writeConfig(t, "{not json")); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
