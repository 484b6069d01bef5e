package http

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapdraw/internal/core/usecases"
)

// featureToMap flattens an exported shape feature for GraphQL.
func featureToMap(f *geojson.Feature) (map[string]interface{}, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{
		"id":       f.Properties["id"],
		"kind":     f.Properties["kind"],
		"radius_m": f.Properties["radius_m"],
		"center":   f.Properties["center"],
		"geojson":  string(raw),
	}
	if poly, ok := f.Geometry.(orb.Polygon); ok && len(poly) > 0 {
		ring := make([][]float64, len(poly[0]))
		for i, p := range poly[0] {
			ring[i] = []float64{p.Lon(), p.Lat()}
		}
		m["ring"] = ring
	}
	return m, nil
}

// buildSchema creates the GraphQL schema wired to the session registry.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	shapeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Shape",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.Int},
			"kind":     &graphql.Field{Type: graphql.String},
			"radius_m": &graphql.Field{Type: graphql.Float},
			"center":   &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"ring":     &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.Float))},
			"geojson":  &graphql.Field{Type: graphql.String, Description: "The exported GeoJSON Feature"},
		},
	})

	source := func(p graphql.ResolveParams) *usecases.Workspace {
		w, _ := p.Source.(*usecases.Workspace)
		return w
	}

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) { return source(p).ID, nil },
			},
			"mode": &graphql.Field{
				Type:    graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) { return source(p).Mode().String(), nil },
			},
			"created_at": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return source(p).CreatedAt, nil
				},
			},
			"listening": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var out []string
					for _, k := range source(p).Info().Listening {
						out = append(out, string(k))
					}
					return out, nil
				},
			},
			"cursor": &graphql.Field{
				Type:    graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) { return source(p).Info().Cursor, nil },
			},
			"shapes": &graphql.Field{
				Type:        graphql.NewList(shapeType),
				Description: "Committed shapes, optionally filtered by kind",
				Args: graphql.FieldConfigArgument{
					"kind": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["kind"].(string)
					kinds, err := parseKinds(raw)
					if err != nil {
						return nil, err
					}
					fc := source(p).Shapes(kinds...)
					out := make([]map[string]interface{}, 0, len(fc.Features))
					for _, f := range fc.Features {
						m, err := featureToMap(f)
						if err != nil {
							return nil, err
						}
						out = append(out, m)
					}
					return out, nil
				},
			},
			"preview": &graphql.Field{
				Type:        graphql.String,
				Description: "GeoJSON FeatureCollection of the shape being drawn",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw, err := json.Marshal(source(p).Preview())
					if err != nil {
						return nil, err
					}
					return string(raw), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"sessions": &graphql.Field{
				Type:        graphql.NewList(sessionType),
				Description: "Open drawing sessions, oldest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					infos, _ := deps.Sketches.List(offset, limit)
					out := make([]*usecases.Workspace, 0, len(infos))
					for _, info := range infos {
						// A session closed since List is skipped.
						if w, err := deps.Sketches.Get(info.ID); err == nil {
							out = append(out, w)
						}
					}
					return out, nil
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a drawing session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					w, err := deps.Sketches.Get(id)
					if err != nil {
						return nil, fmt.Errorf("session %s: %w", id, err)
					}
					return w, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
