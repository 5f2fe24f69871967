package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricSignInSuccess)

	if got := m.Value(MetricSignInSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricSignInSuccess)
	m.Inc(MetricSignInSuccess)
	m.Inc(MetricSignInSuccess)

	if got := m.Value(MetricSignInSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsSnapshotCoversAllCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLogout)

	snap := m.Snapshot()
	if len(snap.Counters) != int(metricIDCount) {
		t.Fatalf("expected %d counters, got %d", metricIDCount, len(snap.Counters))
	}
	if snap.Counters[MetricLogout] != 1 {
		t.Fatalf("expected logout counter 1, got %d", snap.Counters[MetricLogout])
	}
}

func TestEngineCountsOperations(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dir := newFakeDirectory()
	engine := newTestEngine(t, rdb, dir, nil)
	seedUser(t, engine, dir, "u1", "ada@example.com", "ada", "correct-password-1")
	ctx := context.Background()

	signedIn, err := engine.SignIn(ctx, "ada@example.com", "correct-password-1", "")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if _, err := engine.SignIn(ctx, "ada@example.com", "wrong-password-99", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.Refresh(ctx, signedIn.RefreshToken, ""); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if _, err := engine.Logout(ctx, signedIn.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := engine.Refresh(ctx, signedIn.RefreshToken, ""); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}

	snap := engine.MetricsSnapshot()
	checks := map[MetricID]uint64{
		MetricSignInSuccess:  1,
		MetricSignInFailure:  1,
		MetricRefreshSuccess: 1,
		MetricRefreshRevoked: 1,
		MetricLogout:         1,
	}
	for id, want := range checks {
		if got := snap.Counters[id]; got != want {
			t.Fatalf("counter %d: expected %d, got %d", id, want, got)
		}
	}
}
