package gql

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/graphql-go/handler"

	"github.com/pitchside/auth"
)

// Config wires the GraphQL surface to the auth package.
type Config struct {
	Auther   auth.Authenticator
	Repo     auth.RepositoryManager
	Logger   auth.Logger
	Debug    bool
	GraphiQL bool
}

// NewHTTPHandler builds the net/http GraphQL endpoint handler.
func NewHTTPHandler(cfg Config) (http.Handler, error) {
	schema, err := NewSchema(cfg)
	if err != nil {
		return nil, err
	}

	return handler.New(&handler.Config{
		Schema:   &schema,
		Pretty:   cfg.Debug,
		GraphiQL: cfg.GraphiQL,
	}), nil
}

// RegisterRoutes mounts the GraphQL endpoint at /graphql. The viewer
// middleware runs first so resolvers see the request session.
func RegisterRoutes(app *fiber.App, cfg Config) error {
	h, err := NewHTTPHandler(cfg)
	if err != nil {
		return err
	}

	app.Use("/graphql", ViewerMiddleware(cfg.Auther, cfg.Logger))
	app.All("/graphql", adaptor.HTTPHandler(h))

	return nil
}

// ViewerMiddleware decodes a Bearer token into a session on the request
// context. An absent or undecodable token leaves the request anonymous.
func ViewerMiddleware(auther auth.Authenticator, logger auth.Logger) fiber.Handler {
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		session, err := auther.SessionFromToken(token)
		if err != nil {
			logger.Debug("viewer: session decode failed: %v", err)
			return c.Next()
		}

		c.SetUserContext(auth.WithSession(c.UserContext(), session))

		return c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
