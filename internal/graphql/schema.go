package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/Rakete-RSO/zapiski-ai-auth/internal/cqrs"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/models"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/repository"
	"github.com/Rakete-RSO/zapiski-ai-auth/internal/token"
)

// Commander is the write side consumed by the schema.
type Commander interface {
	Register(cqrs.RegisterUserCommand) (*models.User, error)
}

// Querier is the read side consumed by the schema.
type Querier interface {
	VerifyToken(cqrs.VerifyTokenCommand) (*token.Claims, error)
	GetUser(cqrs.GetUserQuery) (*models.UserView, error)
}

var subscriptionTierEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SubscriptionTier",
	Values: graphql.EnumValueConfigMap{
		"Basic":   &graphql.EnumValueConfig{Value: string(models.TierBasic)},
		"Pro":     &graphql.EnumValueConfig{Value: string(models.TierPro)},
		"Premium": &graphql.EnumValueConfig{Value: string(models.TierPremium)},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"username":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"subscriptionTier": &graphql.Field{Type: subscriptionTierEnum},
		"subscribedDate":   &graphql.Field{Type: graphql.DateTime},
	},
})

// NewSchema builds the auth GraphQL schema: a getUser query keyed on an
// access token, and a registerUser mutation.
func NewSchema(commands Commander, queries Querier) (graphql.Schema, error) {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"accessToken": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					accessToken, _ := p.Args["accessToken"].(string)

					claims, err := queries.VerifyToken(cqrs.VerifyTokenCommand{Token: accessToken})
					if err != nil {
						// Invalid or expired token resolves to null.
						return nil, nil
					}

					view, err := queries.GetUser(cqrs.GetUserQuery{Username: claims.Subject})
					if errors.Is(err, repository.ErrUserNotFound) {
						return nil, errors.New("user not found")
					}
					if err != nil {
						return nil, err
					}

					return map[string]any{
						"id":               view.ID,
						"username":         view.Username,
						"email":            view.Email,
						"subscriptionTier": string(view.SubscriptionTier),
						"subscribedDate":   view.SubscribedDate,
					}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"registerUser": &graphql.Field{
				Type: graphql.String,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					username, _ := p.Args["username"].(string)
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)

					user, err := commands.Register(cqrs.RegisterUserCommand{
						Username: username,
						Email:    email,
						Password: password,
					})
					if errors.Is(err, repository.ErrUsernameTaken) || errors.Is(err, repository.ErrEmailTaken) {
						return "User already exists!", nil
					}
					if err != nil {
						return nil, err
					}

					return fmt.Sprintf("User %s registered successfully!", user.Username), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}
