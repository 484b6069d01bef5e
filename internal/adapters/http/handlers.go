package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/mapdraw/internal/core/domain"
	"github.com/samirrijal/mapdraw/internal/core/ports"
	"github.com/samirrijal/mapdraw/internal/core/usecases"
	"github.com/samirrijal/mapdraw/internal/pkg/telemetry"
)

const geoJSONContentType = "application/geo+json"

var tracer = telemetry.Tracer("github.com/samirrijal/mapdraw/internal/adapters/http")

// SessionState is the full view of one drawing session.
type SessionState struct {
	Session usecases.SessionInfo       `json:"session"`
	Preview *geojson.FeatureCollection `json:"preview"`
	Shapes  *geojson.FeatureCollection `json:"shapes"`
}

func stateOf(w *usecases.Workspace) SessionState {
	return SessionState{Session: w.Info(), Preview: w.Preview(), Shapes: w.Shapes()}
}

type modeRequest struct {
	Kind string `json:"kind"`
}

type eventRequest struct {
	Type       string             `json:"type"`
	Coordinate *domain.Coordinate `json:"coordinate"`
	Delta      float64            `json:"delta"`
}

// shapeRequest is the body of the replace hook. Polygons are given either as
// a ring of coordinates or as a GeoJSON Polygon geometry.
type shapeRequest struct {
	Kind         string              `json:"kind"`
	Ring         []domain.Coordinate `json:"ring"`
	Geometry     *geojson.Geometry   `json:"geometry"`
	Center       *domain.Coordinate  `json:"center"`
	RadiusMeters float64             `json:"radius_m"`
	Corner1      *domain.Coordinate  `json:"corner1"`
	Corner2      *domain.Coordinate  `json:"corner2"`
}

func (r shapeRequest) shape() (domain.Shape, error) {
	kind, err := domain.ParseShapeKind(r.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case domain.ShapePolygon:
		ring := r.Ring
		if len(ring) == 0 && r.Geometry != nil {
			poly, ok := r.Geometry.Geometry().(orb.Polygon)
			if !ok || len(poly) == 0 {
				return nil, fmt.Errorf("%w: geometry must be a Polygon", domain.ErrInvariantViolation)
			}
			for _, p := range poly[0] {
				ring = append(ring, domain.CoordinateFromPoint(p))
			}
		}
		return domain.Polygon{Ring: ring}, nil
	case domain.ShapeCircle:
		if r.Center == nil {
			return nil, fmt.Errorf("%w: circle needs a center", domain.ErrInvariantViolation)
		}
		return domain.Circle{Center: *r.Center, RadiusMeters: r.RadiusMeters}, nil
	default:
		if r.Corner1 == nil || r.Corner2 == nil {
			return nil, fmt.Errorf("%w: rectangle needs two corners", domain.ErrInvariantViolation)
		}
		return domain.Rectangle{Corner1: *r.Corner1, Corner2: *r.Corner2}, nil
	}
}

func workspace(c *fiber.Ctx, deps *Dependencies) (*usecases.Workspace, error) {
	return deps.Sketches.Get(c.Params("id"))
}

// parseKinds reads a comma-separated kind filter. Empty means every kind.
func parseKinds(raw string) ([]domain.ShapeKind, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var kinds []domain.ShapeKind
	for _, part := range strings.Split(raw, ",") {
		k, err := domain.ParseShapeKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseIDs(raw string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid shape id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// CreateSessionHandler opens a drawing session. An optional {"kind"} body
// starts drawing right away.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req modeRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		w, err := deps.Sketches.Create(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		if req.Kind != "" {
			kind, err := domain.ParseShapeKind(req.Kind)
			if err == nil {
				_, err = w.SelectMode(kind)
			}
			if err != nil {
				_ = deps.Sketches.Close(c.UserContext(), w.ID)
				return writeError(c, err)
			}
		}

		c.Location("/v1/sessions/" + w.ID)
		return c.Status(fiber.StatusCreated).JSON(stateOf(w))
	}
}

// ListSessionsHandler returns open sessions, paginated.
func ListSessionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pg := parsePagination(c, 50, 200)
		sessions, total := deps.Sketches.List(pg.Offset, pg.Limit)
		pg.Total = total

		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sessions, Pagination: pg})
	}
}

// GetSessionHandler returns the session info, preview and committed shapes.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(stateOf(w))
	}
}

// DeleteSessionHandler closes a session and discards its shapes.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sketches.Close(c.UserContext(), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectModeHandler switches the session to drawing a shape kind.
func SelectModeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		var req modeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		kind, err := domain.ParseShapeKind(req.Kind)
		if err != nil {
			return writeError(c, err)
		}
		if _, err := w.SelectMode(kind); err != nil {
			return writeError(c, err)
		}
		return c.JSON(stateOf(w))
	}
}

// CancelHandler discards the shape being drawn.
func CancelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		if _, err := w.Cancel(); err != nil {
			return writeError(c, err)
		}
		return c.JSON(stateOf(w))
	}
}

// FinishHandler commits the shape being drawn, like the toolbar's finish button.
func FinishHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		report, err := w.Finish()
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(report)
	}
}

// PostEventHandler feeds one host pointer event into the session.
func PostEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := tracer.Start(c.UserContext(), telemetry.SpanEventPost)
		defer span.End()

		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		var req eventRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		kind, err := domain.ParseEventKind(req.Type)
		if err != nil {
			return writeError(c, err)
		}
		span.SetAttributes(
			attribute.String(telemetry.AttrSessionID, w.ID),
			attribute.String(telemetry.AttrEventKind, string(kind)),
		)

		report, err := w.Deliver(ctx, kind, ports.HostEvent{Coordinate: req.Coordinate, WheelDelta: req.Delta})
		if err != nil {
			LoggerFromCtx(ctx).Warn("event refused", "session", w.ID, "event", kind, "error", err)
			return writeError(c, err)
		}
		return c.JSON(report)
	}
}

// PreviewHandler returns the transient geometry of the shape being drawn.
func PreviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(w.Preview(), geoJSONContentType)
	}
}

// ShapesHandler exports committed shapes, optionally filtered by ?kind=.
func ShapesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		kinds, err := parseKinds(c.Query("kind"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(w.Shapes(kinds...), geoJSONContentType)
	}
}

// DeleteShapesHandler removes committed shapes listed in ?ids=1,2.
func DeleteShapesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		ids, err := parseIDs(c.Query("ids"))
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if len(ids) == 0 {
			return errBadRequest(c, "ids query parameter is required")
		}
		removed, err := w.RemoveShapes(ids...)
		if err != nil {
			return writeError(c, err)
		}
		if removed == nil {
			removed = []int{}
		}
		return c.JSON(fiber.Map{"removed": removed})
	}
}

// ReplaceShapeHandler swaps a committed shape in place.
func ReplaceShapeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := workspace(c, deps)
		if err != nil {
			return writeError(c, err)
		}
		id, err := c.ParamsInt("shapeID")
		if err != nil || id <= 0 {
			return errBadRequest(c, "invalid shape id")
		}
		var req shapeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		shape, err := req.shape()
		if err != nil {
			return writeError(c, err)
		}
		if err := w.ReplaceShape(id, shape); err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"id": id, "kind": shape.Kind()})
	}
}
