package config

import (
	"strings"
	"testing"
	"time"

	ircerr "ircecho/internal/errors"
)

// ── ParseGatewaySpec ─────────────────────────────────────────────────

func TestParseGatewaySpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseGatewaySpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestResolveGateway(t *testing.T) {
	cfg := Defaults()
	if err := cfg.ResolveGateway(); err != nil || cfg.GatewayEnabled {
		t.Fatalf("empty spec: enabled=%v err=%v", cfg.GatewayEnabled, err)
	}

	cfg.GatewaySpec = "ops@bastion:2200"
	if err := cfg.ResolveGateway(); err != nil {
		t.Fatal(err)
	}
	if !cfg.GatewayEnabled || cfg.GatewayUser != "ops" || cfg.GatewayHost != "bastion" || cfg.GatewayPort != 2200 {
		t.Errorf("unexpected gateway fields: %+v", cfg)
	}

	cfg.GatewaySpec = "a@b:0x1"
	err := cfg.ResolveGateway()
	var ce *ircerr.ConfigError
	if !ircerr.As(err, &ce) || ce.Field != "ssh-gateway" {
		t.Fatalf("want ConfigError for ssh-gateway, got %v", err)
	}
}

// ── ParseChannels ────────────────────────────────────────────────────

func TestParseChannels(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"test", []string{"test"}},
		{"test,#go-nuts", []string{"test", "#go-nuts"}},
		{" a , ,b,", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseChannels(tt.in)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("ParseChannels(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// ── Defaults ─────────────────────────────────────────────────────────

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Errorf("server = %s:%d", cfg.Host, cfg.Port)
	}
	if cfg.Username != DefaultUsername || cfg.RealName != DefaultRealName {
		t.Errorf("identity = %q / %q", cfg.Username, cfg.RealName)
	}
	if !cfg.Mirror {
		t.Error("mirror should default on")
	}
	if cfg.ConnTimeout != 30*time.Second {
		t.Errorf("ConnTimeout = %v", cfg.ConnTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	// Mutating one Config must not leak into the next.
	cfg.Channels[0] = "changed"
	if Defaults().Channels[0] != "test" {
		t.Error("Defaults shares the channel slice")
	}
}

// ── Validate ─────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string // "" → valid
		wantHint  bool
	}{
		{"defaults", func(*Config) {}, "", false},
		{"no host", func(c *Config) { c.Host = "" }, "host", true},
		{"port zero", func(c *Config) { c.Port = 0 }, "port", false},
		{"port too big", func(c *Config) { c.Port = 70000 }, "port", false},
		{"no user", func(c *Config) { c.Username = "" }, "user", false},
		{"user with space", func(c *Config) { c.Username = "go bot" }, "user", false},
		{"nick with comma", func(c *Config) { c.Nickname = "a,b" }, "nick", false},
		{"negative mode", func(c *Config) { c.Mode = -1 }, "mode", false},
		{"no channels", func(c *Config) { c.Channels = nil }, "channels", true},
		{"bare hash", func(c *Config) { c.Channels = []string{"#"} }, "channels", false},
		{"channel with space", func(c *Config) { c.Channels = []string{"go nuts"} }, "channels", false},
		{"echo channel list", func(c *Config) { c.EchoChannel = "#a,#b" }, "echo-channel", false},
		{"empty echo channel", func(c *Config) { c.EchoChannel = "" }, "", false},
		{"negative timeout", func(c *Config) { c.ConnTimeout = -time.Second }, "timeout", false},
		{"gateway without host", func(c *Config) { c.GatewayEnabled = true }, "ssh-gateway", false},
		{"ssh key without gateway", func(c *Config) { c.SSHKeyPath = "/k" }, "ssh-gateway", true},
		{"gateway ok", func(c *Config) {
			c.GatewayEnabled, c.GatewayHost, c.UseSSHAgent = true, "bastion", true
		}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ce *ircerr.ConfigError
			if !ircerr.As(err, &ce) {
				t.Fatalf("want *ConfigError, got %T (%v)", err, err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
			if tt.wantHint && !strings.Contains(err.Error(), "hint:") {
				t.Errorf("error %q should carry a hint", err.Error())
			}
		})
	}
}
