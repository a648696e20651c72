package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/ports"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
	"github.com/samirrijal/pawsearch/internal/pkg/geospatial"
)

const credentialsKey ctxKey = "credentials"

func credentialsFromCtx(ctx context.Context) domain.Credentials {
	creds, _ := ctx.Value(credentialsKey).(domain.Credentials)
	return creds
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	dogType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Dog",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"img":      &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"age":      &graphql.Field{Type: graphql.Int},
			"zip_code": &graphql.Field{Type: graphql.String},
			"breed":    &graphql.Field{Type: graphql.String},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	locationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Location",
		Fields: graphql.Fields{
			"zip_code":  &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
			"city":      &graphql.Field{Type: graphql.String},
			"state":     &graphql.Field{Type: graphql.String},
			"county":    &graphql.Field{Type: graphql.String},
		},
	})

	searchStateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchState",
		Fields: graphql.Fields{
			"seq":     &graphql.Field{Type: graphql.Int},
			"status":  &graphql.Field{Type: graphql.String},
			"dogs":    &graphql.Field{Type: graphql.NewList(dogType)},
			"total":   &graphql.Field{Type: graphql.Int},
			"next":    &graphql.Field{Type: graphql.String},
			"prev":    &graphql.Field{Type: graphql.String},
			"loading": &graphql.Field{Type: graphql.Boolean},
			"error":   &graphql.Field{Type: graphql.String},
			"stale":   &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"breeds": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "All breed names known to the upstream",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Breeds.List(p.Context, credentialsFromCtx(p.Context))
				},
			},
			"boundingBox": &graphql.Field{
				Type:        boundsType,
				Description: "Lat/lon rectangle containing a radius around a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					center := domain.GeoPoint{Lat: p.Args["lat"].(float64), Lon: p.Args["lon"].(float64)}
					return geospatial.BoundingBox(center, p.Args["radius"].(float64))
				},
			},
			"location": &graphql.Field{
				Type:        locationType,
				Description: "Resolve a zip code",
				Args: graphql.FieldConfigArgument{
					"zip_code": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Locations == nil {
						return nil, errors.New("location lookup is not available")
					}
					return deps.Locations.Resolve(p.Context, credentialsFromCtx(p.Context), p.Args["zip_code"].(string))
				},
			},
			"lastSearch": &graphql.Field{
				Type:        searchStateType,
				Description: "Latest applied search state for this session",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					creds := credentialsFromCtx(p.Context)
					if creds.Empty() {
						return nil, domain.ErrUnauthorized
					}
					return stateToMap(deps.Sessions.Get(creds).Current(), false), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"search": &graphql.Field{
				Type:        searchStateType,
				Description: "Run a dog search for this session",
				Args: graphql.FieldConfigArgument{
					"breeds":      &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"zipCodes":    &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"minAge":      &graphql.ArgumentConfig{Type: graphql.Int},
					"maxAge":      &graphql.ArgumentConfig{Type: graphql.Int},
					"sort":        &graphql.ArgumentConfig{Type: graphql.String},
					"zipCode":     &graphql.ArgumentConfig{Type: graphql.String},
					"radiusMiles": &graphql.ArgumentConfig{Type: graphql.Float},
					"reverse":     &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					creds := credentialsFromCtx(p.Context)
					if creds.Empty() {
						return nil, domain.ErrUnauthorized
					}

					filter := filterFromArgs(p.Args)
					if err := filter.Validate(); err != nil {
						return nil, err
					}
					if filter.Near != nil && deps.Locations == nil {
						return nil, errors.New("radius search is not available")
					}

					state := deps.Sessions.Get(creds).Search(p.Context, creds, filter, ports.NavigatorFunc(func(context.Context) {}))
					if state.Status == domain.StatusUnauthorized {
						return nil, domain.ErrUnauthorized
					}
					reverse, _ := p.Args["reverse"].(bool)
					return stateToMap(state, reverse), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

func filterFromArgs(args map[string]interface{}) domain.SearchFilter {
	var f domain.SearchFilter
	f.Breeds = stringList(args["breeds"])
	f.ZipCodes = stringList(args["zipCodes"])
	if v, ok := args["minAge"].(int); ok {
		f.MinAge = &v
	}
	if v, ok := args["maxAge"].(int); ok {
		f.MaxAge = &v
	}
	f.Sort, _ = args["sort"].(string)

	zip, _ := args["zipCode"].(string)
	radius, _ := args["radiusMiles"].(float64)
	if zip != "" || radius != 0 {
		f.Near = &domain.GeoFilter{ZipCode: zip, RadiusMiles: radius}
	}
	return f
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	var out []string
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stateToMap converts a SearchState for GraphQL, with dogs in breed order.
func stateToMap(st domain.SearchState, reverse bool) map[string]interface{} {
	return map[string]interface{}{
		"seq":     int(st.Seq),
		"status":  string(st.Status),
		"dogs":    usecases.SortByBreed(st.Dogs, reverse),
		"total":   st.Total,
		"next":    st.Next,
		"prev":    st.Prev,
		"loading": st.Loading,
		"error":   st.Error,
		"stale":   st.Stale,
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		ctx := context.WithValue(c.UserContext(), credentialsKey, credentials(c))
		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        ctx,
		})

		return c.JSON(result)
	}
}
