package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"matrix-rain/internal/config"
	"matrix-rain/internal/server"
	"matrix-rain/internal/wallpaper"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	flags := config.NewFlags(flag.CommandLine)
	addr := flag.String("addr", "", "listen address (overrides config and PORT)")
	flag.Parse()

	cfg, err := flags.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log.Printf("Config loaded: theme %s, %d fps, alphabet %s", cfg.Theme, cfg.FPS, cfg.Alphabet)

	// Generate host key if it doesn't exist
	if err := server.EnsureHostKey(cfg.Server.HostKey); err != nil {
		log.Fatalf("Host key error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := wallpaper.NewSource(cfg.Wallpaper.Path, cfg.Wallpaper.Fallback.RGB())
	if cfg.Wallpaper.Watch && src.Path() != "" {
		go func() {
			if err := src.Watch(ctx); err != nil {
				log.Printf("Wallpaper watch stopped: %v", err)
			}
		}()
	}

	sshServer, err := server.NewSSHServer(cfg, src)
	if err != nil {
		log.Fatalf("SSH server error: %v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sshServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	log.Printf("Starting matrix rain, connect with: ssh -t -p %s localhost", port(cfg.Server.Addr))
	if err := sshServer.Start(); err != nil {
		log.Fatalf("SSH server error: %v", err)
	}
}

func port(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return addr
}
