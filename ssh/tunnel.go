// Package ssh implements SSH local port forwarding for reaching a
// Postgres source through a bastion/jump host.
//
// Design decisions:
//   - Uses golang.org/x/crypto/ssh for the SSH client.
//   - Allocates a random local port ("127.0.0.1:0") to avoid conflicts.
//   - The tunnel runs in a background goroutine and is stopped
//     via the Stop method (which closes the listener).
//   - Only key-based authentication is supported (with optional passphrase).
//   - Host keys are checked against known_hosts unless Insecure is set.
package ssh

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/config"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Addr represents host:port of the local tunnel endpoint.
type Addr struct {
	Host string
	Port int
}

// Tunnel manages an SSH local port forward.
type Tunnel struct {
	sshConfig  *ssh.ClientConfig
	sshAddr    string // e.g. "bastion:22"
	remoteAddr string // e.g. "db-host:5432"

	client   *ssh.Client
	listener net.Listener
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// NewTunnel creates a tunnel configuration (does not connect yet).
func NewTunnel(cfg config.SSHConfig, remoteHost string, remotePort int) (*Tunnel, error) {
	authMethods, err := buildAuthMethods(cfg)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := buildHostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}

	return &Tunnel{
		sshConfig: &ssh.ClientConfig{
			User:            cfg.User,
			Auth:            authMethods,
			HostKeyCallback: hostKeyCallback,
		},
		sshAddr:    net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		remoteAddr: net.JoinHostPort(remoteHost, strconv.Itoa(remotePort)),
		done:       make(chan struct{}),
	}, nil
}

// Start opens the SSH connection and starts forwarding.
// Returns the local address to connect pgx to.
func (t *Tunnel) Start(ctx context.Context) (*Addr, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.sshAddr)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", t.sshAddr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, t.sshAddr, t.sshConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake %s: %w", t.sshAddr, err)
	}
	t.client = ssh.NewClient(c, chans, reqs)

	t.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.client.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	tcpAddr := t.listener.Addr().(*net.TCPAddr)
	localAddr := &Addr{Host: "127.0.0.1", Port: tcpAddr.Port}
	applog.Event("SSH", "tunnel %s -> %s via %s", t.listener.Addr(), t.remoteAddr, t.sshAddr)

	t.wg.Add(1)
	go t.acceptLoop()

	return localAddr, nil
}

// Stop tears down the tunnel. Safe to call more than once.
func (t *Tunnel) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		if t.listener != nil {
			t.listener.Close()
		}
		t.wg.Wait()
		if t.client != nil {
			t.client.Close()
		}
	})
}

// acceptLoop accepts local connections and forwards them through SSH.
func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		localConn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(localConn)
	}
}

// forward pipes data between local and remote connections.
func (t *Tunnel) forward(localConn net.Conn) {
	defer t.wg.Done()
	defer localConn.Close()

	remoteConn, err := t.client.Dial("tcp", t.remoteAddr)
	if err != nil {
		applog.Error("ssh forward to %s: %v", t.remoteAddr, err)
		return
	}
	defer remoteConn.Close()

	done := make(chan struct{}, 2)
	go func() {
		_, _ = io.Copy(remoteConn, localConn)
		done <- struct{}{}
	}()
	go func() {
		_, _ = io.Copy(localConn, remoteConn)
		done <- struct{}{}
	}()
	select {
	case <-done:
	case <-t.done:
	}
}

// buildAuthMethods creates SSH auth methods from config.
func buildAuthMethods(cfg config.SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		keyPath, err := homedir.Expand(cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("ssh key path: %w", err)
		}
		keyBytes, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("read ssh key %s: %w", cfg.KeyPath, err)
		}

		var signer ssh.Signer
		if cfg.KeyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(cfg.KeyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			return nil, fmt.Errorf("parse ssh key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH authentication methods configured (provide --ssh-key)")
	}

	return methods, nil
}

// buildHostKeyCallback verifies the bastion against a known_hosts file.
func buildHostKeyCallback(cfg config.SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.Insecure {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	path := cfg.KnownHosts
	if path == "" {
		path = filepath.Join("~", ".ssh", "known_hosts")
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("locate known_hosts: %w", err)
	}

	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", path, err)
	}
	return cb, nil
}
