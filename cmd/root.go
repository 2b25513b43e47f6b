// Package cmd wires up the CLI flags and starts a bot session.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"ircecho/bot"
	"ircecho/config"
	"ircecho/internal/metrics"
	"ircecho/internal/transport"
	"ircecho/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X ircecho/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the bot until the server hangs up or
// ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// ── file and environment layers ──────────────────────────────
	configPath, envFile := preParse(args)

	cfg := config.Defaults()
	if configPath != "" {
		if err := config.LoadFile(cfg, configPath); err != nil {
			return err
		}
	}
	if err := config.LoadEnvFile(envFile, envFile != config.DefaultEnvFile); err != nil {
		return err
	}
	config.LoadFromEnv(cfg)

	// ── flags (defaults are the values loaded so far) ────────────
	fs := flag.NewFlagSet("ircecho", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&configPath, "config", configPath, "YAML config file")
	fs.StringVar(&envFile, "env-file", envFile, "dotenv file with IRCECHO_* variables")

	// ── identity ─────────────────────────────────────────────────
	fs.StringVarP(&cfg.Username, "user", "u", cfg.Username, "Username sent with USER")
	fs.StringVarP(&cfg.Nickname, "nick", "n", cfg.Nickname, "Nickname (defaults to --user)")
	fs.StringVar(&cfg.RealName, "realname", cfg.RealName, "Real name sent with USER")
	fs.IntVar(&cfg.Mode, "mode", cfg.Mode, "USER mode bitmask (8 = invisible)")

	// ── channels ─────────────────────────────────────────────────
	fs.StringSliceVarP(&cfg.Channels, "channels", "c", cfg.Channels, "Channels to join (comma-separated)")
	fs.StringVar(&cfg.EchoChannel, "echo-channel", cfg.EchoChannel, "Channel that receives a copy of every echo")

	// ── connection ───────────────────────────────────────────────
	fs.StringVar(&cfg.BindHost, "bind", cfg.BindHost, "Local source address")
	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", int(cfg.ConnTimeout/time.Second), "Connect timeout in seconds")
	var keepAliveSec int
	fs.IntVar(&keepAliveSec, "keepalive", int(cfg.KeepAlive/time.Second), "TCP keepalive period in seconds (-1 disables)")

	// ── SSH gateway ──────────────────────────────────────────────
	fs.StringVarP(&cfg.GatewaySpec, "ssh-gateway", "T", cfg.GatewaySpec, "Reach the server via SSH [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	var noMirror bool
	fs.BoolVar(&noMirror, "no-mirror", !cfg.Mirror, "Do not copy raw traffic to stdout")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable coloured log tags")
	var verbosity int
	fs.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate configuration, print it and exit")

	fs.Usage = func() { printUsage(fs, stderr) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(fs, stderr)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "ircecho %s\n", version)
		return nil
	}

	if fs.Changed("timeout") {
		cfg.ConnTimeout = time.Duration(timeoutSec) * time.Second
	}
	if fs.Changed("keepalive") {
		cfg.KeepAlive = time.Duration(keepAliveSec) * time.Second
	}
	if fs.Changed("verbose") {
		cfg.Verbose = verbosity
	}
	cfg.Mirror = !noMirror
	if cfg.NoColor {
		color.NoColor = true
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── gateway spec ─────────────────────────────────────────────
	if err := cfg.ResolveGateway(); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun {
		printConfig(stdout, cfg)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	// Normal output (echo notices) is on by default; each -v adds a level.
	logger := util.NewLogger(cfg.Verbose + 1)
	logger.SetOutput(stderr)

	dialer := newDialer(cfg, logger)
	defer dialer.Close()

	stats := metrics.New()
	session := &bot.Session{
		Host: cfg.Host,
		Port: cfg.Port,
		Registration: bot.Registration{
			Username: cfg.Username,
			Nickname: cfg.Nickname,
			RealName: cfg.RealName,
			Mode:     cfg.Mode,
			Channels: cfg.Channels,
		},
		EchoChannel: cfg.EchoChannel,
		Dialer:      dialer,
		Logger:      logger,
		Stats:       stats,
	}
	if cfg.Mirror {
		session.Mirror = stdout
	}

	err := session.Run(ctx)
	logger.Verbose("stats: %s", stats.JSON())
	return err
}

// ── helpers ──────────────────────────────────────────────────────────

// preParse picks out --config and --env-file ahead of the real parse,
// because the file layers must be loaded before flag defaults are set.
func preParse(args []string) (configPath, envFile string) {
	pre := flag.NewFlagSet("ircecho", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	pre.ParseErrorsWhitelist.UnknownFlags = true

	pre.StringVar(&configPath, "config", "", "")
	pre.StringVar(&envFile, "env-file", config.DefaultEnvFile, "")
	pre.BoolP("help", "h", false, "")

	_ = pre.Parse(args) // real errors are reported by the full parse
	return configPath, envFile
}

func newDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if !cfg.GatewayEnabled {
		return &transport.TCPDialer{Timeout: cfg.ConnTimeout, BindHost: cfg.BindHost, KeepAlive: cfg.KeepAlive}
	}
	if cfg.BindHost != "" {
		logger.Warn("--bind is ignored when connecting through an SSH gateway")
	}
	user := cfg.GatewayUser
	if user == "" {
		user = os.Getenv("USER")
	}
	return transport.NewSSHDialer(&transport.GatewayConfig{
		User:          user,
		Host:          cfg.GatewayHost,
		Port:          cfg.GatewayPort,
		KeyPath:       cfg.SSHKeyPath,
		PromptPass:    cfg.SSHPassword,
		UseAgent:      cfg.UseSSHAgent,
		StrictHostKey: cfg.StrictHostKey,
		KnownHosts:    cfg.KnownHostsPath,
		ConnTimeout:   cfg.ConnTimeout,
	}, logger)
}

// parsePositional accepts an optional server host and port.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
	case 1:
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		port, err := strconv.Atoi(remaining[1])
		if err != nil || !util.ValidPort(port) {
			return fmt.Errorf("invalid port %q", remaining[1])
		}
		cfg.Port = port
	default:
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	nick := cfg.Nickname
	if nick == "" {
		nick = cfg.Username
	}
	channels := make([]string, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		channels[i] = bot.ChannelName(ch)
	}

	fmt.Fprintf(w, "server:   %s\n", util.FormatAddr(cfg.Host, cfg.Port))
	fmt.Fprintf(w, "user:     %s (mode %d, %q)\n", cfg.Username, cfg.Mode, cfg.RealName)
	fmt.Fprintf(w, "nick:     %s\n", nick)
	fmt.Fprintf(w, "channels: %s\n", strings.Join(channels, ","))
	fmt.Fprintf(w, "echo:     %s\n", cfg.EchoChannel)
	fmt.Fprintf(w, "keepalive: %v\n", cfg.KeepAlive)
	if cfg.GatewayEnabled {
		fmt.Fprintf(w, "gateway:  %s@%s:%d\n", cfg.GatewayUser, cfg.GatewayHost, cfg.GatewayPort)
	}
	fmt.Fprintf(w, "mirror:   %v\n", cfg.Mirror)
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	color.New(color.Bold).Fprintf(w, "ircecho – IRC echo bot v%s\n", version)
	fmt.Fprintf(w, `
Connects, registers, joins its channels, then answers PINGs and echoes
every message it sees back to the sender and the echo channel.

Usage:
  ircecho [options] [host [port]]

Options:
`)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Environment:
  IRCECHO_HOST, IRCECHO_PORT, IRCECHO_USER, IRCECHO_NICK, IRCECHO_CHANNELS,
  IRCECHO_ECHO_CHANNEL, IRCECHO_SSH_GATEWAY, ... (also read from .env)

Examples:
  ircecho                                     Defaults (%s:%d)
  ircecho -n GoBot -c test,go-nuts irc.example.net
  ircecho --config bot.yaml -v
  ircecho -T admin@bastion irc.internal 6667  Via SSH gateway
`, config.DefaultHost, config.DefaultPort)
}
