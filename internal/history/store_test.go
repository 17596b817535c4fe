package history

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/farcloser/tactus"
)

func open(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	t.Cleanup(func() { store.Close() })

	return store
}

func result(tempo, variance, consistency float64) *tactus.Result {
	return &tactus.Result{
		TempoBPM: tempo,
		Timing:   tactus.Timing{TimingVarianceMs: variance, RushedNotesPercent: 10},
		Dynamics: tactus.Dynamics{DynamicRangeDb: 20},
		Trends:   tactus.Trends{ConsistencyScore: consistency, TimingImproving: true},
	}
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := open(t)

	saved, err := store.Save(ctx, "take1.wav", "standard", result(120, 18.5, 0.7))
	if err != nil {
		t.Fatalf("saving: %v", err)
	}

	if saved.ID == "" {
		t.Fatal("expected an id")
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("getting: %v", err)
	}

	if got.File != "take1.wav" || got.Profile != "standard" {
		t.Errorf("unexpected entry %+v", got)
	}

	if got.Result.TempoBPM != 120 || got.Result.Timing.TimingVarianceMs != 18.5 || !got.Result.Trends.TimingImproving {
		t.Errorf("result did not survive storage: %+v", got.Result)
	}

	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("expected created at %v, got %v", saved.CreatedAt, got.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	if _, err := open(t).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := open(t)

	for i, file := range []string{"a.wav", "b.wav", "a.wav"} {
		if _, err := store.Save(ctx, file, "standard", result(100+float64(i), 20, 0.5)); err != nil {
			t.Fatalf("saving: %v", err)
		}
	}

	all, err := store.List(ctx, "", 0)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}

	if len(all) != 3 || all[0].Result.TempoBPM != 102 || all[2].Result.TempoBPM != 100 {
		t.Errorf("unexpected order %+v", all)
	}

	onlyA, err := store.List(ctx, "a.wav", 1)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}

	if len(onlyA) != 1 || onlyA[0].Result.TempoBPM != 102 {
		t.Errorf("expected the latest a.wav, got %+v", onlyA)
	}
}

func TestCompare(t *testing.T) {
	prev := &Entry{Result: *result(110, 30, 0.5)}
	cur := &Entry{Result: *result(120, 20, 0.65)}

	p := Compare(prev, cur)

	if p.TempoDeltaBPM != 10 || p.VarianceDeltaMs != -10 {
		t.Errorf("unexpected deltas %+v", p)
	}

	if math.Abs(p.ConsistencyDelta-0.15) > 1e-9 {
		t.Errorf("expected consistency delta 0.15, got %v", p.ConsistencyDelta)
	}

	if !p.Steadier || !p.MoreConsistent {
		t.Errorf("expected improvement, got %+v", p)
	}

	if back := Compare(cur, prev); back.Steadier || back.MoreConsistent {
		t.Errorf("expected regression, got %+v", back)
	}
}
