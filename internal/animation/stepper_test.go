package animation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cts/internal/points"
	"github.com/roach88/cts/internal/testutil"
)

func threePoints() *points.Registry {
	r := points.New()
	r.Append(0, 0, "p1")
	r.Append(1, 0, "p2")
	r.Append(2, 0, "p3")
	return r
}

// lit returns the coordinates currently marked, in insertion order.
func lit(r *points.Registry) []points.Point {
	var out []points.Point
	r.Each(func(e points.Entry) bool {
		if e.Generation != 1 {
			return true
		}
		if _, ok := r.Mark(e.X, e.Y); ok {
			out = append(out, e.Point())
		}
		return true
	})
	return out
}

func newTestStepper(t *testing.T, r *points.Registry, renders *int) (*Stepper, *testutil.ManualScheduler) {
	t.Helper()
	sched := testutil.NewManualScheduler()
	s, err := New("running-point:#09f", r, func() { *renders++ }, WithScheduler(sched))
	require.NoError(t, err)
	return s, sched
}

func TestParseSetup(t *testing.T) {
	tests := []struct {
		name    string
		setup   string
		want    Setup
		wantErr bool
	}{
		{name: "with colour", setup: "running-point:green", want: Setup{Mode: ModeRunningPoint, Highlight: Highlight{Color: "green"}}},
		{name: "default colour", setup: "running-point", want: Setup{Mode: ModeRunningPoint, Highlight: Highlight{Color: DefaultColor}}},
		{name: "empty option", setup: "running-point:", want: Setup{Mode: ModeRunningPoint, Highlight: Highlight{Color: DefaultColor}}},
		{name: "hex colour keeps text", setup: "running-point:#333", want: Setup{Mode: ModeRunningPoint, Highlight: Highlight{Color: "#333"}}},
		{name: "empty", setup: "", wantErr: true},
		{name: "missing mode", setup: ":red", wantErr: true},
		{name: "unknown mode", setup: "blink:red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSetup(tt.setup)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSetup)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ClearsMarks(t *testing.T) {
	r := threePoints()
	r.SetMark(1, 0, "stale")

	_, err := New("running-point", r, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Marked())
}

func TestNew_RejectsNilRegistry(t *testing.T) {
	_, err := New("running-point", nil, nil)
	assert.Error(t, err)
}

func TestStepper_Cycle(t *testing.T) {
	r := threePoints()
	renders := 0
	s, sched := newTestStepper(t, r, &renders)

	require.True(t, s.Start())
	assert.Equal(t, Lit, s.State())
	assert.Equal(t, []points.Point{{X: 0, Y: 0}}, lit(r))
	assert.Equal(t, 1, sched.Pending())

	require.True(t, sched.Fire())
	assert.Equal(t, []points.Point{{X: 1, Y: 0}}, lit(r))

	require.True(t, sched.Fire())
	assert.Equal(t, []points.Point{{X: 2, Y: 0}}, lit(r))

	// Fourth step wraps around to the first point.
	require.True(t, sched.Fire())
	assert.Equal(t, []points.Point{{X: 0, Y: 0}}, lit(r))

	assert.Equal(t, 4, renders)
	assert.Equal(t, 4, s.Steps())
	assert.Equal(t, 1, sched.Pending(), "exactly one step pending")
	for _, d := range sched.Delays() {
		assert.Equal(t, DefaultInterval, d)
	}
}

func TestStepper_HighlightTag(t *testing.T) {
	r := threePoints()
	renders := 0
	s, _ := newTestStepper(t, r, &renders)
	require.True(t, s.Start())

	tag, ok := r.Mark(0, 0)
	require.True(t, ok)
	assert.Equal(t, Highlight{Color: "#09f"}, tag)
}

func TestStepper_SkipsLaterGenerations(t *testing.T) {
	r := points.New()
	r.Append(0, 0, nil)
	r.Append(1, 0, nil)
	r.Append(0, 0, nil) // generation 2
	r.Append(2, 0, nil)
	r.Append(1, 0, nil) // generation 2

	renders := 0
	s, sched := newTestStepper(t, r, &renders)
	require.True(t, s.Start())

	var order []points.Point
	order = append(order, lit(r)...)
	for i := 0; i < 3; i++ {
		require.True(t, sched.Fire())
		got := lit(r)
		require.Len(t, got, 1, "exactly one lit point")
		order = append(order, got...)
	}

	assert.Equal(t, []points.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 0}}, order)
}

func TestStepper_EmptyRegistryStaysIdle(t *testing.T) {
	renders := 0
	s, sched := newTestStepper(t, points.New(), &renders)

	assert.False(t, s.Start())
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, 0, renders)
	assert.False(t, s.Step())
}

func TestStepper_SinglePointLoopsOnItself(t *testing.T) {
	r := points.New()
	r.Append(4, 4, nil)

	renders := 0
	s, sched := newTestStepper(t, r, &renders)
	require.True(t, s.Start())

	for i := 0; i < 3; i++ {
		require.True(t, sched.Fire())
		assert.Equal(t, []points.Point{{X: 4, Y: 4}}, lit(r))
	}
}

func TestStepper_Stop(t *testing.T) {
	r := threePoints()
	renders := 0
	s, sched := newTestStepper(t, r, &renders)
	require.True(t, s.Start())
	require.True(t, sched.Fire())

	s.Stop()

	assert.Equal(t, Idle, s.State())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, []points.Point{{X: 1, Y: 0}}, lit(r), "marks are left as they are")
	assert.False(t, s.Step())
}

func TestStepper_StartTwiceIsNoop(t *testing.T) {
	r := threePoints()
	renders := 0
	s, sched := newTestStepper(t, r, &renders)

	require.True(t, s.Start())
	require.True(t, s.Start())

	assert.Equal(t, 1, renders)
	assert.Equal(t, 1, sched.Pending())
}

func TestStepper_ManualStepReplacesPending(t *testing.T) {
	r := threePoints()
	renders := 0
	s, sched := newTestStepper(t, r, &renders)
	require.True(t, s.Start())

	require.True(t, s.Step())

	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, []points.Point{{X: 1, Y: 0}}, lit(r))
}

func TestStepper_UsesOwnCursor(t *testing.T) {
	r := threePoints()
	r.Last(points.DefaultCursor)

	renders := 0
	s, sched := newTestStepper(t, r, &renders)
	require.True(t, s.Start())
	sched.Fire()

	e, ok := r.Current(points.DefaultCursor)
	require.True(t, ok)
	assert.Equal(t, "p3", e.Payload)
}

func TestStepper_WithInterval(t *testing.T) {
	r := threePoints()
	sched := testutil.NewManualScheduler()
	s, err := New("running-point", r, nil, WithScheduler(sched), WithInterval(200*time.Millisecond))
	require.NoError(t, err)
	require.True(t, s.Start())

	assert.Equal(t, []time.Duration{200 * time.Millisecond}, sched.Delays())
}

func TestStepper_RunRealTimer(t *testing.T) {
	r := threePoints()
	renders := make(chan struct{}, 16)
	s, err := New("running-point", r, func() {
		select {
		case renders <- struct{}{}:
		default:
		}
	}, WithInterval(time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	for i := 0; i < 3; i++ {
		select {
		case <-renders:
		case <-time.After(2 * time.Second):
			t.Fatal("animation did not advance")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, Idle, s.State())
}

func TestStepper_RunEmpty(t *testing.T) {
	s, err := New("running-point", points.New(), nil)
	require.NoError(t, err)

	err = s.Run(context.Background())
	assert.ErrorIs(t, err, ErrNothingToAnimate)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "lit", Lit.String())
	assert.Equal(t, "unknown", State(9).String())
}
