package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func livezBody(t *testing.T, h *Health) (int, statusResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func readyzBody(t *testing.T, h *Health) (int, statusResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

// runProbe drives the named probe directly, without the scheduler.
func runProbe(h *Health, name string, times int) {
	for _, p := range h.probes {
		if p.name != name {
			continue
		}
		for range times {
			p.run(context.Background())
		}
	}
}

func TestLiveEndpoint_AllHealthy(t *testing.T) {
	h := New()
	h.AddLivenessCheck("noop", time.Second, func(context.Context) error { return nil })
	runProbe(h, "noop", 1)

	code, body := livezBody(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestFailureThreshold(t *testing.T) {
	h := New()
	h.AddLivenessCheck("flaky", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	// Two consecutive failures are below the threshold; the probe still
	// reports healthy.
	runProbe(h, "flaky", 2)
	code, _ := livezBody(t, h)
	assert.Equal(t, http.StatusOK, code)

	runProbe(h, "flaky", 1)
	code, body := livezBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["flaky"])
}

func TestRecoveryAfterSingleSuccess(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)

	h := New()
	h.AddLivenessCheck("db", time.Second, func(context.Context) error {
		if fail.Load() {
			return errors.New("down")
		}
		return nil
	})

	runProbe(h, "db", defaultFailureThreshold)
	code, _ := livezBody(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)

	fail.Store(false)
	runProbe(h, "db", 1)
	code, _ = livezBody(t, h)
	assert.Equal(t, http.StatusOK, code)
}

func TestReadyEndpoint_ManualGate(t *testing.T) {
	h := New()

	code, body := readyzBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	h.SetReady(true)
	code, body = readyzBody(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)

	h.SetReady(false)
	code, _ = readyzBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestReadinessProbeDoesNotAffectLiveness(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("postgres", time.Second, func(context.Context) error {
		return errors.New("no route to host")
	})

	runProbe(h, "postgres", defaultFailureThreshold)

	code, _ := livezBody(t, h)
	assert.Equal(t, http.StatusOK, code)

	code, body := readyzBody(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "no route to host", body.Checks["postgres"])
	assert.False(t, h.IsReady())
}

func TestProbeTimeout(t *testing.T) {
	h := New()
	h.AddReadinessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	h.SetReady(true)

	runProbe(h, "slow", defaultFailureThreshold)
	assert.False(t, h.IsReady())
}

func TestScheduler(t *testing.T) {
	var runs atomic.Int32

	h := New()
	h.AddLivenessCheck("counter", time.Second, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx, 5*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 },
		time.Second, time.Millisecond)

	h.Stop()
	after := runs.Load()
	time.Sleep(25 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), after+1)
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
