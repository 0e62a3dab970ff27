// Package gql exposes the auth operations over GraphQL: the authBasic
// mutation and the me viewer query, mounted on a fiber app.
package gql

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/graphql-go/graphql"

	"github.com/pitchside/auth"
)

type resolver struct {
	auther auth.Authenticator
	repo   auth.RepositoryManager
	logger auth.Logger
	debug  bool
}

// NewSchema builds the GraphQL schema around an authenticator and a
// repository manager.
func NewSchema(cfg Config) (graphql.Schema, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	r := &resolver{
		auther: cfg.Auther,
		repo:   cfg.Repo,
		logger: logger,
		debug:  cfg.Debug,
	}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"email":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"username":    &graphql.Field{Type: graphql.String},
			"firstName":   &graphql.Field{Type: graphql.String},
			"lastName":    &graphql.Field{Type: graphql.String},
			"picture":     &graphql.Field{Type: graphql.String},
			"roles":       &graphql.Field{Type: graphql.NewList(graphql.String)},
			"activated":   &graphql.Field{Type: graphql.Boolean},
			"isVerified":  &graphql.Field{Type: graphql.Boolean},
			"onboarded":   &graphql.Field{Type: graphql.Boolean},
			"lastLoginAt": &graphql.Field{Type: graphql.DateTime},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	errorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthError",
		Fields: graphql.Fields{
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"code":    &graphql.Field{Type: graphql.String},
		},
	})

	// The response object mirrors the internal union: user and token are
	// populated together, or errors is, never both.
	authResponseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthResponse",
		Fields: graphql.Fields{
			"user":   &graphql.Field{Type: userType},
			"token":  &graphql.Field{Type: graphql.String},
			"errors": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(errorType))},
		},
	})

	authBasicInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AuthBasicInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"rememberMe": &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:    userType,
				Resolve: r.resolveMe,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"authBasic": &graphql.Field{
				Type: graphql.NewNonNull(authResponseType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(authBasicInput),
					},
				},
				Resolve: r.resolveAuthBasic,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func (r *resolver) resolveAuthBasic(p graphql.ResolveParams) (any, error) {
	raw, _ := p.Args["input"].(map[string]any)

	payload := AuthBasicPayload{
		Email:      stringArg(raw, "email"),
		Password:   stringArg(raw, "password"),
		RememberMe: boolArg(raw, "rememberMe"),
	}

	if r.debug {
		fmt.Println("======= AUTH BASIC ======")
		fmt.Println(print.MaybePrettyJSON(payload.Masked()))
		fmt.Println("=========================")
	}

	if err := payload.Validate(); err != nil {
		return map[string]any{
			"errors": []any{
				map[string]any{
					"message": err.Error(),
					"code":    auth.TextCodeInvalidInput,
				},
			},
		}, nil
	}

	resp := r.auther.AuthBasic(p.Context, auth.AuthBasicInput{
		Email:      payload.Email,
		Password:   payload.Password,
		RememberMe: payload.RememberMe,
	})

	return authResponseToMap(resp), nil
}

// resolveMe returns the viewer for the request session, or null. Every
// failure path degrades to null rather than a GraphQL error.
func (r *resolver) resolveMe(p graphql.ResolveParams) (any, error) {
	session, ok := auth.SessionFromContext(p.Context)
	if !ok {
		return nil, nil
	}

	user, err := r.repo.Users().GetByID(p.Context, session.GetUserID())
	if err != nil {
		r.logger.Debug("me resolver: lookup for %s failed: %v", session.GetUserID(), err)
		return nil, nil
	}

	return userToMap(user), nil
}

func authResponseToMap(resp *auth.AuthResponse) map[string]any {
	if resp.Ok() {
		return map[string]any{
			"user":  userToMap(resp.User()),
			"token": resp.Token(),
		}
	}

	errs := make([]any, 0, len(resp.Errors()))
	for _, e := range resp.Errors() {
		errs = append(errs, map[string]any{
			"message": e.Message,
			"code":    e.Code,
		})
	}

	return map[string]any{"errors": errs}
}

func userToMap(u *auth.User) map[string]any {
	if u == nil {
		return nil
	}

	out := map[string]any{
		"id":         u.ID.String(),
		"email":      u.Email,
		"username":   u.Username,
		"firstName":  u.FirstName,
		"lastName":   u.LastName,
		"picture":    u.Picture,
		"roles":      []string(u.Roles),
		"activated":  u.Activated,
		"isVerified": u.EmailVerified,
		"onboarded":  u.Onboarded,
	}

	if u.LastLoginAt != nil {
		out["lastLoginAt"] = *u.LastLoginAt
	}

	if u.CreatedAt != nil {
		out["createdAt"] = *u.CreatedAt
	}

	return out
}

func stringArg(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(raw map[string]any, key string) bool {
	if raw == nil {
		return false
	}
	if v, ok := raw[key].(bool); ok {
		return v
	}
	return false
}
