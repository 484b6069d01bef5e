package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("mapdraw-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "mapdraw-test" {
		t.Errorf("expected service name from argument, got %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Draw.CircleSteps != 64 || cfg.Draw.DefaultRadiusM != 100 || cfg.Draw.RadiusStepM != 20 {
		t.Errorf("unexpected draw defaults %+v", cfg.Draw)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MAPDRAW_DRAW_CIRCLE_STEPS", "32")
	t.Setenv("MAPDRAW_SERVER_PORT", "9090")

	cfg, err := Load("mapdraw-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Draw.CircleSteps != 32 {
		t.Errorf("expected 32 circle steps, got %d", cfg.Draw.CircleSteps)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate_CollectsErrors(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1, RequestTimeout: 1},
		Log:    LogConfig{Format: "xml"},
		NATS:   NATSConfig{Enabled: true},
		Draw:   DrawConfig{CircleSteps: 2, DefaultRadiusM: 5, RadiusStepM: 20},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "log.format", "nats.url", "draw.circle_steps", "draw.default_radius_m"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got %v", want, err)
		}
	}
}
