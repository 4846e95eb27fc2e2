package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap/zaptest"

	"ray_analysis/internal/bootstrap"
	analysisDelivery "ray_analysis/internal/delivery/analysis"
	domain "ray_analysis/internal/domain/analysis"
)

func testConfig() *bootstrap.Config {
	return &bootstrap.Config{
		BoardSize:       9,
		Komi:            6.5,
		ValueScale:      0.5,
		Playouts:        8,
		SearchSeed:      1,
		ExpandThreshold: 2,
		EvalThreshold:   1,
		ArchiveTTLHours: 1,
		MongoDatabase:   "ray_analysis",
		MaxLineBytes:    1 << 20,
	}
}

func TestSettings(t *testing.T) {
	cfg := testConfig()
	s := Settings(cfg)
	if s.Budget != (domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 8}) || s.BoardSize != 9 || s.ValueScale != 0.5 {
		t.Fatalf("Settings = %+v", s)
	}

	cfg.ConstTime = 1.5
	if b := Settings(cfg).Budget; b.Mode != domain.ConstTimeMode || b.Seconds != 1.5 {
		t.Fatalf("Budget = %+v, want const time 1.5s", b)
	}
}

func TestNewWithArchive(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisUrl = mr.Addr()

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	defer a.Close(context.Background())

	var out strings.Builder
	input := `{"request":"analyse-position","game":[{"x":4,"y":4}]}` + "\n"
	if err := a.Dispatcher.Serve(context.Background(), strings.NewReader(input), &out, cfg.MaxLineBytes); err != nil {
		t.Fatalf("Serve error = %v", err)
	}
	if !strings.Contains(out.String(), `"finalScore"`) {
		t.Fatalf("output = %s", out.String())
	}
	if keys := mr.Keys(); len(keys) != 1 || !strings.HasSuffix(keys[0], ":sgf") {
		t.Fatalf("redis keys = %v, want one archived sgf", keys)
	}
}

func TestNewFailsOnUnreachableStore(t *testing.T) {
	cfg := testConfig()
	cfg.RedisUrl = "redis://:bad port"
	if _, err := New(context.Background(), cfg, zaptest.NewLogger(t).Sugar()); err == nil {
		t.Fatal("New succeeded with a broken REDIS_URL")
	}
}

func TestRouter(t *testing.T) {
	cfg := testConfig()
	log := zaptest.NewLogger(t).Sugar()
	a, err := New(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	srv := httptest.NewServer(NewRouter(analysisDelivery.NewAnalysisHandler(*cfg, log, a.Dispatcher)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/analyse", "application/json", strings.NewReader(`{"request":"update-time-settings"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/analyse")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", resp.StatusCode)
	}
}
