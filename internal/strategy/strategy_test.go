package strategy

import "testing"

func TestBuildRegistry(t *testing.T) {
	strat, err := Build("momentum", 1000)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if strat.Name() != "momentum" {
		t.Fatalf("unexpected name %s", strat.Name())
	}

	strat, err = Build(" SMA_CROSS ", 1000)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if strat.Name() != "sma_cross" {
		t.Fatalf("unexpected name %s", strat.Name())
	}
}

func TestBuildRejectsUnknownName(t *testing.T) {
	if _, err := Build("hodl", 1000); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
