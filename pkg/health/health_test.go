package health

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCheck fails while failing is set.
type flakyCheck struct {
	failing atomic.Bool
}

func (f *flakyCheck) check(context.Context) error {
	if f.failing.Load() {
		return errors.New("dependency down")
	}
	return nil
}

func TestHealth_ReadyGate(t *testing.T) {
	h := New()

	assert.False(t, h.IsReady(), "must start not-ready")

	h.SetReady(true)
	assert.True(t, h.IsReady())

	h.SetReady(false)
	assert.False(t, h.IsReady())
}

func TestHealth_FailureThreshold(t *testing.T) {
	h := New()
	f := &flakyCheck{}
	h.AddReadinessCheck("dep", time.Second, f.check)
	h.SetReady(true)

	p := h.probes[0]
	ctx := context.Background()

	// One or two failures are tolerated.
	f.failing.Store(true)
	p.evaluate(ctx)
	p.evaluate(ctx)
	assert.True(t, h.IsReady(), "below the failure threshold")

	p.evaluate(ctx)
	assert.False(t, h.IsReady(), "third consecutive failure trips the probe")

	// A single success restores it.
	f.failing.Store(false)
	p.evaluate(ctx)
	assert.True(t, h.IsReady())
}

func TestHealth_Endpoints(t *testing.T) {
	h := New()
	f := &flakyCheck{}
	h.AddLivenessCheck("loop", time.Second, f.check)
	h.AddReadinessCheck("dep", time.Second, f.check)
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, nil)
	assert.Equal(t, 200, rec.Code)

	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, nil)
	assert.Equal(t, 200, rec.Code)

	// Trip the readiness probe only.
	f.failing.Store(true)
	ctx := context.Background()
	for range 3 {
		h.probes[1].evaluate(ctx)
	}

	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, nil)
	require.Equal(t, 503, rec.Code)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "dependency down", resp.Checks["dep"])

	rec = httptest.NewRecorder()
	h.LiveEndpoint(rec, nil)
	assert.Equal(t, 200, rec.Code, "liveness unaffected by readiness probe")
}

func TestHealth_ReadyEndpointBeforeSetReady(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, nil)
	require.Equal(t, 503, rec.Code)

	var resp statusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Checks, "_readiness")
}

func TestHealth_StartEvaluatesProbes(t *testing.T) {
	h := New()
	var calls atomic.Int32
	h.AddReadinessCheck("counter", time.Second, func(context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.Start(ctx, 10*time.Millisecond)
	defer h.Stop()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("probe ran %d times, want at least 3", calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHealth_StopIsIdempotent(t *testing.T) {
	h := New()
	h.Start(context.Background(), time.Minute)
	h.Stop()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestGCMaxPauseCheck(t *testing.T) {
	require.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestPingCheck(t *testing.T) {
	require.NoError(t, PingCheck(stubPinger{})(context.Background()))

	down := stubPinger{err: errors.New("connection refused")}
	require.Error(t, PingCheck(down)(context.Background()))
}
