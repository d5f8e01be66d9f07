package health

import (
	"context"
	"errors"
	"testing"
)

func TestAggregator_CheckAll(t *testing.T) {
	agg := NewAggregator(0)
	agg.Register("console", NewCheckerFunc("console", func(context.Context) Result {
		return Healthy("connected")
	}))
	agg.Register("cache", NewCheckerFunc("cache", func(context.Context) Result {
		return Degraded("high miss rate")
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results["console"].Status != StatusHealthy {
		t.Errorf("console status = %v, want healthy", results["console"].Status)
	}
	if OverallStatus(results) != StatusDegraded {
		t.Errorf("overall = %v, want degraded (worst wins)", OverallStatus(results))
	}
}

func TestAggregator_UnknownChecker(t *testing.T) {
	agg := NewAggregator(0)
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("err = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_ReplaceKeepsOrder(t *testing.T) {
	agg := NewAggregator(0)
	agg.Register("a", NewCheckerFunc("a", func(context.Context) Result { return Healthy("") }))
	agg.Register("b", NewCheckerFunc("b", func(context.Context) Result { return Healthy("") }))
	agg.Register("a", NewCheckerFunc("a", func(context.Context) Result {
		return Unhealthy("replaced", errors.New("down"))
	}))

	results := agg.CheckAll(context.Background())
	if results["a"].Status != StatusUnhealthy {
		t.Error("re-registering should replace the checker")
	}
	if OverallStatus(results) != StatusUnhealthy {
		t.Error("overall should reflect the replaced checker")
	}
}

func TestResult_Constructors(t *testing.T) {
	r := Unhealthy("console unreachable", errors.New("timeout")).
		WithDetails(map[string]any{"host": "10.0.0.5"})
	if r.Status != StatusUnhealthy || r.Error == nil || r.Details["host"] != "10.0.0.5" {
		t.Errorf("unexpected result: %+v", r)
	}
	if StatusHealthy.String() != "healthy" || StatusDegraded.String() != "degraded" {
		t.Error("status strings should be stable, tools expose them verbatim")
	}
}
