package config

// loader.go - configuration loading from files and environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables, including a .env file  (this file)
//   3. YAML config file  (this file)
//   4. Defaults   (defaults.go)

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ── YAML file ────────────────────────────────────────────────────────

// LoadFile overlays the YAML document at path onto cfg.  Keys absent
// from the file keep their current value; unknown keys are an error so
// that typos do not go unnoticed.
func LoadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty file
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// ── .env file ────────────────────────────────────────────────────────

// LoadEnvFile reads KEY=VALUE pairs from path into the process
// environment.  Variables that are already set win over the file.  A
// missing file is not an error unless required is set.
func LoadEnvFile(path string, required bool) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("env file %s: %w", path, err)
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the IRCECHO_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive); "0", "false", "no"
// switch a setting off.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("IRCECHO_HOST"); v != "" {
		cfg.Host = v
	}
	if v, ok := envInt("IRCECHO_PORT"); ok && v > 0 {
		cfg.Port = v
	}
	if v := os.Getenv("IRCECHO_BIND"); v != "" {
		cfg.BindHost = v
	}
	if v, ok := envInt("IRCECHO_TIMEOUT"); ok && v > 0 {
		cfg.ConnTimeout = secondsDuration(v)
	}
	if v, ok := envInt("IRCECHO_KEEPALIVE"); ok {
		cfg.KeepAlive = secondsDuration(v)
	}

	// Identity
	if v := os.Getenv("IRCECHO_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("IRCECHO_NICK"); v != "" {
		cfg.Nickname = v
	}
	if v := os.Getenv("IRCECHO_REALNAME"); v != "" {
		cfg.RealName = v
	}
	if v, ok := envInt("IRCECHO_MODE"); ok {
		cfg.Mode = v
	}

	// Channels
	if v := os.Getenv("IRCECHO_CHANNELS"); v != "" {
		cfg.Channels = ParseChannels(v)
	}
	if v := os.Getenv("IRCECHO_ECHO_CHANNEL"); v != "" {
		cfg.EchoChannel = v
	}

	// SSH gateway
	if v := os.Getenv("IRCECHO_SSH_GATEWAY"); v != "" {
		cfg.GatewaySpec = v
	}
	if v := os.Getenv("IRCECHO_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if v, ok := envBool("IRCECHO_SSH_PASSWORD"); ok {
		cfg.SSHPassword = v
	}
	if v, ok := envBool("IRCECHO_SSH_AGENT"); ok {
		cfg.UseSSHAgent = v
	}
	if v, ok := envBool("IRCECHO_STRICT_HOSTKEY"); ok {
		cfg.StrictHostKey = v
	}
	if v := os.Getenv("IRCECHO_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v, ok := envBool("IRCECHO_NO_MIRROR"); ok {
		cfg.Mirror = !v
	}
	if v, ok := envInt("IRCECHO_VERBOSE"); ok && v > 0 {
		cfg.Verbose = v
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		cfg.NoColor = true
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(key string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
