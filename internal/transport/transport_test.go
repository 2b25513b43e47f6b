package transport

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"

	"ircecho/util"
)

// TestTCPDialer_Connect verifies that TCPDialer can reach a local
// TCP server and exchange data.
func TestTCPDialer_Connect(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		conn.Write([]byte(":irc.local NOTICE * :hello\r\n")) //nolint:errcheck
	}()

	d := &TCPDialer{Timeout: 2 * time.Second}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != ":irc.local NOTICE * :hello\r\n" {
		t.Errorf("got %q", got)
	}
}

// TestTCPDialer_KeepAlive verifies both an explicit period and a
// disabled keepalive still produce a usable connection.
func TestTCPDialer_KeepAlive(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	for _, ka := range []time.Duration{45 * time.Second, -1} {
		d := &TCPDialer{Timeout: 2 * time.Second, KeepAlive: ka}
		conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
		if err != nil {
			t.Fatalf("keepalive %v: dial: %v", ka, err)
		}
		conn.Close()
	}
}

// TestTCPDialer_Bind verifies the source address is honoured.
func TestTCPDialer_Bind(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		if c, err := ln.Accept(); err == nil {
			c.Close()
		}
	}()

	d := &TCPDialer{Timeout: 2 * time.Second, BindHost: "127.0.0.1"}
	conn, err := d.Dial(context.Background(), "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if ip := conn.LocalAddr().(*net.TCPAddr).IP; !ip.IsLoopback() {
		t.Errorf("local addr = %v, want loopback", ip)
	}
}

// TestTCPDialer_ContextCancel verifies that a cancelled context stops the dial.
func TestTCPDialer_ContextCancel(t *testing.T) {
	d := &TCPDialer{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.Dial(ctx, "tcp", "127.0.0.1:1"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestTCPDialer_Close(t *testing.T) {
	d := &TCPDialer{}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestSSHDialer_Defaults(t *testing.T) {
	cfg := &GatewayConfig{User: "bot", Host: "bastion.example.net"}
	d := NewSSHDialer(cfg, util.NewLogger(0))

	if cfg.Port != 22 {
		t.Errorf("port = %d, want 22", cfg.Port)
	}
	if cfg.ConnTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.ConnTimeout)
	}
	if got := cfg.Addr(); got != "bastion.example.net:22" {
		t.Errorf("addr = %q", got)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close before Dial: %v", err)
	}
}

// TestSSHDialer_GatewayDown verifies a refused gateway surfaces as a dial error.
func TestSSHDialer_GatewayDown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	keyPath := writeTestKey(t)
	d := NewSSHDialer(&GatewayConfig{
		User:        "bot",
		Host:        "127.0.0.1",
		Port:        port,
		KeyPath:     keyPath,
		ConnTimeout: time.Second,
	}, util.NewLogger(0))

	if _, err := d.Dial(context.Background(), "tcp", "irc.example.net:6667"); err == nil {
		t.Fatal("expected error when gateway is down")
	}
}

func TestAuthMethods_KeyFile(t *testing.T) {
	methods, err := AuthMethods(&GatewayConfig{KeyPath: writeTestKey(t)})
	if err != nil {
		t.Fatalf("AuthMethods: %v", err)
	}
	if len(methods) != 1 {
		t.Errorf("got %d methods, want 1", len(methods))
	}
}

func TestAuthMethods_MissingKey(t *testing.T) {
	_, err := AuthMethods(&GatewayConfig{KeyPath: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("expected error for missing key file")
	}
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := HostKeyCallback(&GatewayConfig{})
	if err != nil || cb == nil {
		t.Fatalf("non-strict callback: %v", err)
	}

	_, err = HostKeyCallback(&GatewayConfig{
		StrictHostKey: true,
		KnownHosts:    filepath.Join(t.TempDir(), "missing_known_hosts"),
	})
	if err == nil {
		t.Fatal("expected error for missing known_hosts")
	}
}

func writeTestKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "ircecho test")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
