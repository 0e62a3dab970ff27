package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/pitchside/auth"
	"github.com/pitchside/auth/gql"
)

type envConfig struct {
	signingKey string
	issuer     string
	audience   []string
}

func (c envConfig) GetSigningKey() string { return c.signingKey }
func (c envConfig) GetIssuer() string     { return c.issuer }
func (c envConfig) GetAudience() []string { return c.audience }

func loadConfig() envConfig {
	cfg := envConfig{
		signingKey: os.Getenv("AUTH_SIGNING_KEY"),
		issuer:     envOr("AUTH_ISSUER", "pitchside"),
		audience:   []string{"api"},
	}

	if aud := os.Getenv("AUTH_AUDIENCE"); aud != "" {
		cfg.audience = strings.Split(aud, ",")
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded, using process environment")
	}

	cfg := loadConfig()
	debug := os.Getenv("DEBUG") != ""

	logger := auth.NewDefaultLogger()

	sqldb, err := sql.Open(sqliteshim.ShimName, envOr("DATABASE_DSN", "file::memory:?cache=shared"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	if _, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	auther, err := auth.NewAuthenticator(repo, cfg)
	if err != nil {
		log.Fatalf("authenticator: %v", err)
	}
	auther.WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:      "authd",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if err := gql.RegisterRoutes(app, gql.Config{
		Auther:   auther,
		Repo:     repo,
		Logger:   logger,
		Debug:    debug,
		GraphiQL: debug,
	}); err != nil {
		log.Fatalf("graphql routes: %v", err)
	}

	addr := envOr("LISTEN_ADDR", ":8080")

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	if err := app.Shutdown(); err != nil {
		logger.Error("server shutdown: %v", err)
	}

	// Let in-flight verification emails finish before the process exits.
	auther.Notifier().Drain()

	if err := db.Close(); err != nil {
		logger.Error("database close: %v", err)
	}
}
