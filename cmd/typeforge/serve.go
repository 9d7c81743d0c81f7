package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeforge/internal/auth"
	"github.com/verte-zerg/typeforge/internal/live"
	"github.com/verte-zerg/typeforge/internal/mail"
	"github.com/verte-zerg/typeforge/internal/server"
)

var (
	serveAddr      string
	serveLogFormat string
	serveDebug     bool
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides PORT/ADDR)")
	cmd.Flags().StringVar(&serveLogFormat, "log-format", "text", "log format (text or json)")
	cmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug logging")
	return cmd
}

func newLogger(format string, debug bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("--log-format must be text or json, got %q", format)
	}
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	logger, err := newLogger(serveLogFormat, serveDebug)
	if err != nil {
		return err
	}
	if !serveDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	applyStringFlag(cmd, "addr", &settings.Server.Addr, serveAddr)

	secret := settings.Server.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("JWT_SECRET is not set; using a per-process secret, sessions end on restart")
	}
	signer, err := auth.NewSigner(secret)
	if err != nil {
		return err
	}

	var mailer mail.Mailer
	if settings.Email.Configured() {
		rm, err := mail.NewResendMailer(settings.Email.ResendAPIKey, settings.Email.From)
		if err != nil {
			return err
		}
		mailer = rm
	} else {
		logger.Info("email is not configured; sign-in links are disabled")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cmd, settings)
	if err != nil {
		return err
	}
	defer closeStore(st)
	logger.Info("database ready", "driver", st.Driver())

	srv, err := server.New(server.Options{
		Store:    st,
		Policy:   settings.Policy,
		Signer:   signer,
		Mailer:   mailer,
		Hub:      live.NewHub(logger, settings.Server.CORSOrigins),
		Settings: settings.Server,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx, settings.Server.Addr)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
