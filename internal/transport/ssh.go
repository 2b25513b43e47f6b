package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	ircerr "ircecho/internal/errors"
	"ircecho/util"
)

// GatewayConfig describes the SSH jump host an IRC connection is
// forwarded through.
type GatewayConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration
}

// Addr returns the gateway's host:port.
func (c *GatewayConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SSHDialer forwards connections through an SSH gateway.  The SSH
// client is established on the first Dial and torn down on Close.
type SSHDialer struct {
	config *GatewayConfig
	logger *util.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDialer returns a dialer for cfg, filling in the default port
// and handshake timeout.
func NewSSHDialer(cfg *GatewayConfig, logger *util.Logger) *SSHDialer {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &SSHDialer{config: cfg, logger: logger}
}

// connect dials the gateway and completes the SSH handshake unless a
// client is already up.
func (d *SSHDialer) connect(ctx context.Context) (*ssh.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	auth, err := AuthMethods(d.config)
	if err != nil {
		return nil, fmt.Errorf("ssh auth %s: %w", d.config.Addr(), err)
	}
	hostKey, err := HostKeyCallback(d.config)
	if err != nil {
		return nil, fmt.Errorf("ssh host key %s: %w", d.config.Addr(), err)
	}

	addr := d.config.Addr()
	d.logger.Verbose("ssh: dialing gateway %s as %s", addr, d.config.User)

	var nd net.Dialer
	nd.Timeout = d.config.ConnTimeout
	tcpConn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, ircerr.Wrap("dial", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, &ssh.ClientConfig{
		User:            d.config.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         d.config.ConnTimeout,
	})
	if err != nil {
		tcpConn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}

	d.client = ssh.NewClient(sshConn, chans, reqs)
	d.logger.Verbose("ssh: gateway %s ready", addr)
	return d.client, nil
}

// Dial opens address through the gateway.  The returned conn does not
// support read deadlines.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("ssh: forwarding %s %s", network, address)
	conn, err := client.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("ssh forward %s: %w", address, err)
	}
	return conn, nil
}

// Close shuts down the SSH client, if any.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}
