package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	_ "github.com/lib/pq"

	"planmeet/config"
	_ "planmeet/docs"
	"planmeet/internal/adapters/auth"
	"planmeet/internal/adapters/email"
	"planmeet/internal/adapters/ical"
	delivery "planmeet/internal/delivery/http"
	"planmeet/internal/delivery/http/controllers"
	"planmeet/internal/delivery/http/middleware"
	"planmeet/internal/domain"
	"planmeet/internal/repository/memory"
	"planmeet/internal/repository/postgres"
	"planmeet/internal/services"
)

// @title Planmeet API
// @version 1.0
// @description Scheduling coordination service: planners create events with a candidate date range, participants join by invite code and submit their available dates.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	app := &cli.App{
		Name:  "planmeet",
		Usage: "Group scheduling backend.",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createUserCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

// repositories bundles one storage backend's repository set.
type repositories struct {
	users        domain.UserRepository
	events       domain.EventRepository
	participants domain.ParticipantRepository
	invitations  domain.EventInvitationRepository
	db           *sql.DB // nil for the memory backend
}

func openRepositories(cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			users:        store.Users(),
			events:       store.Events(),
			participants: store.Participants(),
			invitations:  store.Invitations(),
		}, nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBUrl)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		return &repositories{
			users:        postgres.NewUserRepository(db),
			events:       postgres.NewEventRepository(db),
			participants: postgres.NewParticipantRepository(db),
			invitations:  postgres.NewEventInvitationRepository(db),
			db:           db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger()
			slog.SetDefault(logger)

			repos, err := openRepositories(cfg, logger)
			if err != nil {
				return err
			}
			if repos.db != nil {
				defer repos.db.Close()
			}

			hasher := auth.NewBcryptHasher(0)
			issuer, verifier := auth.NewJWTCodec(cfg.JWTSecret)

			mailer, err := email.NewMailer(email.MailerConfig{
				Provider:    cfg.EmailProvider,
				FromAddress: cfg.EmailFrom,
				FromName:    cfg.EmailFromName,
				SES: email.SESConfig{
					Region:          cfg.SESRegion,
					AccessKeyID:     cfg.SESAccessKeyID,
					SecretAccessKey: cfg.SESSecretKey,
				},
			})
			if err != nil {
				return fmt.Errorf("create mailer: %w", err)
			}
			emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

			authService := services.NewAuthService(repos.users, hasher, issuer, cfg.JWTExpiry)
			eventService := services.NewEventService(repos.events, repos.users, repos.invitations,
				emailService, cfg.BaseURL, 10*time.Second)
			participantService := services.NewParticipantService(repos.events, repos.participants,
				repos.users, ical.NewExporter())

			secureCookie := cfg.Environment == "production"
			mux := delivery.NewRouter(
				logger,
				verifier,
				prometheus.NewRegistry(),
				controllers.NewAuthController(logger, authService, cfg.JWTExpiry, secureCookie),
				controllers.NewEventController(logger, eventService),
				controllers.NewParticipantController(logger, participantService),
			)

			handler := middleware.Logging(logger, middleware.CORS(cfg.AllowedOrigins, mux))
			server := &http.Server{
				Addr:              ":" + cfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment, "storage", cfg.StorageDriver)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			}
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the postgres schema.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := config.NewLogger()

			db, err := sql.Open("postgres", cfg.DBUrl)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
			defer cancel()
			if err := postgres.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema applied")
			return nil
		},
	}
}

func createUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-user",
		Usage: "Create a user from the terminal.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Usage: "Username; prompted when omitted."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StorageDriver != "postgres" {
				return errors.New("create-user requires the postgres storage driver")
			}
			logger := config.NewLogger()

			username := strings.TrimSpace(c.String("username"))
			if username == "" {
				fmt.Print("Username: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return errors.New("username cannot be empty")
			}

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}

			hasher := auth.NewBcryptHasher(0)
			hash, err := hasher.Hash(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			db, err := sql.Open("postgres", cfg.DBUrl)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			user := domain.NewUser(username, hash)
			ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
			defer cancel()
			if err := postgres.NewUserRepository(db).Create(ctx, user); err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return fmt.Errorf("username %q is already taken", username)
				}
				return fmt.Errorf("create user: %w", err)
			}
			logger.Info("user created", "id", user.ID, "username", user.Username)
			return nil
		},
	}
}

// readPassword prompts on stdout and reads without echo. Falls back to a
// plain line read when stdin is not a terminal (e.g. piped input).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}
