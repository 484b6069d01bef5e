package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mapdraw/internal/core/domain"
)

func scrape(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", Handler())

	var o ShapeObserver
	o.ShapeCreated(1, domain.Circle{RadiusMeters: 50})
	o.ShapeUpdated(1, domain.Rectangle{})
	o.ShapesDeleted([]int{1})

	if _, err := app.Test(httptest.NewRequest("GET", "/ping", nil)); err != nil {
		t.Fatal(err)
	}
	out := scrape(t, app)
	for _, want := range []string{
		`mapdraw_http_requests_total{method="GET",path="/ping",status="200"}`,
		`mapdraw_draw_shapes_committed_total{kind="circle"}`,
		`mapdraw_draw_shapes_updated_total{kind="rectangle"}`,
		`mapdraw_draw_shapes_removed_total`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
