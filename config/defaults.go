package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost is the IRC server the bot connects to.
	DefaultHost = "irc.libera.chat"

	// DefaultPort is the plaintext IRC port.
	DefaultPort = 6667

	// DefaultUsername is sent in USER and doubles as the nickname.
	DefaultUsername = "MyGoIRCbot"

	// DefaultNickname is empty so the username is used.
	DefaultNickname = ""

	// DefaultRealName is the USER realname field.
	DefaultRealName = "Go IRC Bot"

	// DefaultMode is the USER mode bitmask.
	DefaultMode = 0

	// DefaultEchoChannel receives a copy of every echo.
	DefaultEchoChannel = "#test"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the TCP/SSH connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultKeepAlive is the TCP keepalive period.  It lets the
	// kernel notice a dead server between PINGs.
	DefaultKeepAlive = 30 * time.Second

	// DefaultEnvFile is loaded when present.
	DefaultEnvFile = ".env"
)

// DefaultChannels are joined after registration.
var DefaultChannels = []string{"test"}
