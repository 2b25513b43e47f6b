// Package config defines the runtime configuration for ircecho and
// provides helpers for parsing channel lists and gateway specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ircerr "ircecho/internal/errors"
)

// Config holds every tuneable for a single bot session.  The yaml tags
// name the keys accepted by the --config file.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	BindHost    string        `yaml:"bind"`
	ConnTimeout time.Duration `yaml:"timeout"`
	KeepAlive   time.Duration `yaml:"keepalive"` // TCP keepalive period; negative disables

	// ── Identity ─────────────────────────────────────────────────────
	Username string `yaml:"user"`
	Nickname string `yaml:"nick"` // empty → Username
	RealName string `yaml:"realname"`
	Mode     int    `yaml:"mode"`

	// ── Channels ─────────────────────────────────────────────────────
	Channels    []string `yaml:"channels"`
	EchoChannel string   `yaml:"echo_channel"`

	// ── SSH gateway ──────────────────────────────────────────────────
	GatewaySpec    string `yaml:"ssh_gateway"` // raw user@host[:port]
	GatewayEnabled bool   `yaml:"-"`
	GatewayUser    string `yaml:"-"`
	GatewayHost    string `yaml:"-"`
	GatewayPort    int    `yaml:"-"`
	SSHKeyPath     string `yaml:"ssh_key"`
	SSHPassword    bool   `yaml:"ssh_password"` // true → prompt interactively
	UseSSHAgent    bool   `yaml:"ssh_agent"`
	StrictHostKey  bool   `yaml:"strict_hostkey"`
	KnownHostsPath string `yaml:"known_hosts"`

	// ── Output ───────────────────────────────────────────────────────
	Mirror  bool `yaml:"mirror"` // copy raw traffic to stdout
	Verbose int  `yaml:"verbose"`
	NoColor bool `yaml:"no_color"`
}

// Defaults returns a Config populated with the built-in values.
func Defaults() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		ConnTimeout: DefaultConnTimeout,
		KeepAlive:   DefaultKeepAlive,
		Username:    DefaultUsername,
		Nickname:    DefaultNickname,
		RealName:    DefaultRealName,
		Mode:        DefaultMode,
		Channels:    append([]string(nil), DefaultChannels...),
		EchoChannel: DefaultEchoChannel,
		Mirror:      true,
	}
}

// ── Channel helpers ──────────────────────────────────────────────────

// ParseChannels splits a comma-separated list such as "test,#go-nuts"
// into its names, dropping blanks.  Names are returned as given; the
// leading '#' is added when JOIN is sent.
func ParseChannels(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// ── Gateway-spec parser ──────────────────────────────────────────────

// gatewayRe matches [user@]host[:port].
var gatewayRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseGatewaySpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseGatewaySpec(spec string) (user, host string, port int, err error) {
	m := gatewayRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid gateway spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid gateway port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ResolveGateway parses GatewaySpec into the Gateway* fields.  An empty
// spec disables the gateway.
func (c *Config) ResolveGateway() error {
	if c.GatewaySpec == "" {
		c.GatewayEnabled = false
		return nil
	}
	user, host, port, err := ParseGatewaySpec(c.GatewaySpec)
	if err != nil {
		return &ircerr.ConfigError{
			Field:   "ssh-gateway",
			Value:   c.GatewaySpec,
			Message: err.Error(),
			Hint:    "use --ssh-gateway user@bastion.example.com:22",
		}
	}
	c.GatewayEnabled = true
	c.GatewayUser, c.GatewayHost, c.GatewayPort = user, host, port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ircerr.ConfigError{Field: "host", Message: "server hostname is required",
			Hint: "pass it as the first argument or set IRCECHO_HOST"}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ircerr.ConfigError{Field: "port", Value: c.Port, Message: "out of range 1-65535"}
	}
	if c.Username == "" {
		return &ircerr.ConfigError{Field: "user", Message: "username is required"}
	}
	if strings.ContainsAny(c.Username, " \t@") {
		return &ircerr.ConfigError{Field: "user", Value: c.Username, Message: "must not contain spaces or '@'"}
	}
	if strings.ContainsAny(c.Nickname, " \t,!@") {
		return &ircerr.ConfigError{Field: "nick", Value: c.Nickname, Message: "must not contain spaces, ',', '!' or '@'"}
	}
	if c.Mode < 0 {
		return &ircerr.ConfigError{Field: "mode", Value: c.Mode, Message: "must not be negative"}
	}
	if len(c.Channels) == 0 {
		return &ircerr.ConfigError{Field: "channels", Message: "at least one channel is required",
			Hint: "use --channels test,go-nuts"}
	}
	for _, ch := range c.Channels {
		if strings.TrimPrefix(ch, "#") == "" || strings.ContainsAny(ch, " \t,\a") {
			return &ircerr.ConfigError{Field: "channels", Value: ch, Message: "invalid channel name"}
		}
	}
	if strings.ContainsAny(c.EchoChannel, " \t,") {
		return &ircerr.ConfigError{Field: "echo-channel", Value: c.EchoChannel, Message: "invalid channel name"}
	}
	if c.ConnTimeout < 0 {
		return &ircerr.ConfigError{Field: "timeout", Value: c.ConnTimeout, Message: "must not be negative"}
	}

	if c.GatewayEnabled && c.GatewayHost == "" {
		return &ircerr.ConfigError{Field: "ssh-gateway", Message: "gateway host is required"}
	}
	if !c.GatewayEnabled && (c.SSHKeyPath != "" || c.SSHPassword || c.UseSSHAgent) {
		return &ircerr.ConfigError{Field: "ssh-gateway", Message: "SSH options need a gateway",
			Hint: "add --ssh-gateway user@host or drop the SSH flags"}
	}
	return nil
}
