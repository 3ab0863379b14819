package follow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/navigation"
)

func TestEvery_StopsWhenFnDeclines(t *testing.T) {
	calls := 0
	err := Every(context.Background(), time.Millisecond, func(context.Context) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestEvery_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Every(ctx, time.Hour, func(context.Context) bool {
			calls++
			return true
		})
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Every to return after cancel")
	}
	if calls != 1 {
		t.Errorf("Expected the immediate call only, got %d", calls)
	}
}

func TestChase(t *testing.T) {
	if _, ok := Chase(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.5, 9, 0}); ok {
		t.Error("Expected no chase inside stopping distance")
	}

	q, ok := Chase(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 0, 4})
	if !ok {
		t.Fatal("Expected chase query")
	}
	if q.MaxPathLength != 7 || q.MaxDistanceToGoal != 4 {
		t.Errorf("Expected length 7 and vision range 4, got %+v", q)
	}
	if q.PreserveEndVisibility || q.Mode != navigation.FullReachability || q.Simplify {
		t.Errorf("Expected no end visibility or simplification, got %+v", q)
	}
	if q.Goal != (mgl64.Vec3{3, 0, 4}) {
		t.Errorf("Expected goal at target, got %v", q.Goal)
	}
}
