package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync/atomic"
	"time"

	"github.com/gliderlabs/ssh"

	"matrix-rain/internal/config"
	"matrix-rain/internal/loop"
	"matrix-rain/internal/rain"
	"matrix-rain/internal/render"
	"matrix-rain/internal/wallpaper"
)

// SSHServer serves an independent rain animation to every PTY session.
type SSHServer struct {
	addr        string
	maxSessions int
	interval    time.Duration
	background  rain.RGB
	builder     loop.GridBuilder

	active atomic.Int32
	server *ssh.Server
}

// NewSSHServer creates a server from the loaded settings. The settings are
// adapted to a character grid before use. The host key file must exist.
func NewSSHServer(cfg config.Config, src *wallpaper.Source) (*SSHServer, error) {
	term := cfg.Terminal()
	p, err := term.Params()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s := &SSHServer{
		addr:        cfg.Server.Addr,
		maxSessions: cfg.Server.MaxSessions,
		interval:    cfg.FrameInterval(),
		background:  cfg.Background.RGB(),
		builder:     loop.GridBuilder{Params: p, Wallpaper: src},
	}
	s.server = &ssh.Server{
		Addr: s.addr,
		Handler: func(sess ssh.Session) {
			s.handleSession(sess)
		},
	}

	// Set host key
	if err := s.server.SetOption(ssh.HostKeyFile(cfg.Server.HostKey)); err != nil {
		return nil, fmt.Errorf("set host key: %w", err)
	}
	return s, nil
}

// Start listens on the configured address and serves until Shutdown.
func (s *SSHServer) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	log.Printf("SSH server listening on %s", l.Addr())
	return s.Serve(l)
}

// Serve accepts sessions on l until Shutdown.
func (s *SSHServer) Serve(l net.Listener) error {
	err := s.server.Serve(l)
	if errors.Is(err, ssh.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting sessions and waits for open ones to end.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Active returns the number of open sessions.
func (s *SSHServer) Active() int { return int(s.active.Load()) }

// admit reserves a session slot, or reports false when the server is full.
func (s *SSHServer) admit() bool {
	n := s.active.Add(1)
	if s.maxSessions > 0 && int(n) > s.maxSessions {
		s.active.Add(-1)
		return false
	}
	return true
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	// Require PTY
	ptyReq, winCh, ok := sess.Pty()
	if !ok {
		fmt.Fprintln(sess, "Error: PTY required. Use: ssh -t ...")
		return
	}

	if !s.admit() {
		fmt.Fprintf(sess, "Server full (%d sessions), try again later.\r\n", s.maxSessions)
		return
	}
	defer s.active.Add(-1)

	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}
	remote := sess.RemoteAddr()
	log.Printf("Session connected: %s from %s (%dx%d)", username, remote, ptyReq.Window.Width, ptyReq.Window.Height)
	defer log.Printf("Session disconnected: %s from %s", username, remote)

	w, h := ptyReq.Window.Width, ptyReq.Window.Height
	engine := render.NewEngine(sess, w, h)
	anim, err := loop.NewAnimation(engine, engine, s.builder, s.background, w, h)
	if err != nil {
		fmt.Fprintf(sess, "Error: %v\r\n", err)
		return
	}
	anim.OnResize(engine.Resize)

	// Setup terminal
	io.WriteString(sess, render.EnterScreen())
	defer io.WriteString(sess, render.LeaveScreen())

	ctx, cancel := context.WithCancel(sess.Context())
	defer cancel()

	// Goroutine: read input
	go func() {
		defer cancel()
		buf := make([]byte, 64)
		for {
			n, err := sess.Read(buf)
			if err != nil {
				return
			}
			if parseInput(buf[:n]) == actionQuit {
				return
			}
		}
	}()

	// Goroutine: handle window resizes
	go func() {
		for win := range winCh {
			if err := anim.Resize(win.Width, win.Height); err != nil {
				log.Printf("Session %s: keeping previous grid: %v", username, err)
			}
		}
	}()

	if err := loop.New(s.interval, nil, anim.Step).Run(ctx); err != nil {
		log.Printf("Session %s: %v", username, err)
	}
}

type action int

const (
	actionNone action = iota
	actionQuit
)

// parseInput reports whether the bytes read from the session ask to quit:
// q, Q, Ctrl-C or a lone Escape. Escape sequences such as arrow keys are
// skipped.
func parseInput(data []byte) action {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case 'q', 'Q', 3: // 3 is Ctrl-C
			return actionQuit
		case 0x1b:
			if i+1 == len(data) {
				return actionQuit
			}
			if data[i+1] == '[' || data[i+1] == 'O' {
				i += 2
				// Skip parameters up to the final byte.
				for i < len(data) && (data[i] < 0x40 || data[i] > 0x7e) {
					i++
				}
			}
		}
	}
	return actionNone
}
