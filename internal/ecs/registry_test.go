package ecs

import (
	"errors"
	"testing"
)

type position struct{ X, Y float32 }

type velocity struct{ X, Y float32 }

type tag struct{}

func TestCreateEntity(t *testing.T) {
	r := NewRegistry()
	e, err := r.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.IsNull() {
		t.Fatal("expected non-null entity")
	}
	if !r.Alive(e) {
		t.Fatal("expected entity to be alive after creation")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestNullEntityNeverAlive(t *testing.T) {
	r := NewRegistry()
	if r.Alive(Null) {
		t.Error("null entity should not be alive")
	}
	if _, err := Add(r, Null, position{}); !errors.Is(err, ErrStaleEntity) {
		t.Errorf("Add on null: got %v, want ErrStaleEntity", err)
	}
}

func TestHasAfterAddAndRemove(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()

	if Has[position](r, e) {
		t.Fatal("fresh entity should not have position")
	}
	p, err := Add(r, e, position{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !Has[position](r, e) {
		t.Error("Has should be true right after Add")
	}
	if p.X != 1 || p.Y != 2 {
		t.Errorf("stored copy = %+v", *p)
	}
	if !Remove[position](r, e) {
		t.Error("Remove should report true for a present component")
	}
	if Has[position](r, e) {
		t.Error("Has should be false right after Remove")
	}
	if Remove[position](r, e) {
		t.Error("second Remove should report false")
	}
}

func TestAddTwiceFails(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()
	if _, err := Add(r, e, position{}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	_, err := Add(r, e, position{X: 9})
	if !errors.Is(err, ErrComponentExists) {
		t.Fatalf("second Add: got %v, want ErrComponentExists", err)
	}
	if got := MustGet[position](r, e); got.X != 0 {
		t.Error("failed Add must not overwrite the existing component")
	}
}

func TestGetMissing(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()
	if _, err := Get[velocity](r, e); !errors.Is(err, ErrComponentMissing) {
		t.Errorf("got %v, want ErrComponentMissing", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustGet should panic on a missing component")
		}
	}()
	MustGet[velocity](r, e)
}

func TestDestroyRemovesComponentsAndInvalidatesHandle(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()
	Add(r, e, position{X: 7})
	Add(r, e, velocity{X: 1})

	if err := r.Destroy(e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if r.Alive(e) {
		t.Fatal("entity should not be alive after Destroy")
	}
	if Count[position](r) != 0 || Count[velocity](r) != 0 {
		t.Error("components should be gone after Destroy")
	}

	// The index is recycled with a new generation; the old handle stays dead.
	e2, _ := r.Create()
	Add(r, e2, position{X: 3})
	if e2.Index != e.Index {
		t.Fatalf("expected index reuse, got %v after %v", e2, e)
	}
	if Has[position](r, e) {
		t.Error("stale handle resolved to the recycled entity's component")
	}
	if err := r.Destroy(e); !errors.Is(err, ErrStaleEntity) {
		t.Errorf("double Destroy: got %v, want ErrStaleEntity", err)
	}
}

func TestPointerStableAcrossGrowthAndRemoval(t *testing.T) {
	r := NewRegistry()
	first, _ := r.Create()
	p, _ := Add(r, first, position{X: 1})
	var others []Entity
	for i := 0; i < 100; i++ {
		e, _ := r.Create()
		Add(r, e, position{X: float32(i)})
		others = append(others, e)
	}
	Remove[position](r, others[0])
	p.X = 42
	if MustGet[position](r, first).X != 42 {
		t.Error("pointer returned by Add no longer aliases the stored component")
	}
}

func TestEachVisitsMatchingEntities(t *testing.T) {
	r := NewRegistry()
	both, _ := r.Create()
	Add(r, both, position{})
	Add(r, both, velocity{})
	onlyPos, _ := r.Create()
	Add(r, onlyPos, position{})

	n := 0
	for range Each[position](r) {
		n++
	}
	if n != 2 {
		t.Errorf("Each[position] visited %d, want 2", n)
	}

	var got []Entity
	for e, row := range Each2[position, velocity](r) {
		if row.A == nil || row.B == nil {
			t.Fatal("Each2 yielded nil component")
		}
		got = append(got, e)
	}
	if len(got) != 1 || got[0] != both {
		t.Errorf("Each2 = %v, want [%v]", got, both)
	}

	// Restartable: a second pass sees the same rows.
	n = 0
	for range Each2[position, velocity](r) {
		n++
	}
	if n != 1 {
		t.Errorf("second Each2 pass visited %d, want 1", n)
	}
}

func TestEach3(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()
	Add(r, e, position{})
	Add(r, e, velocity{})
	Add(r, e, tag{})
	other, _ := r.Create()
	Add(r, other, position{})
	Add(r, other, tag{})

	n := 0
	for got := range Each3[position, velocity, tag](r) {
		if got != e {
			t.Errorf("unexpected entity %v", got)
		}
		n++
	}
	if n != 1 {
		t.Errorf("Each3 visited %d, want 1", n)
	}
}

func TestMutationDuringIterationFailsFast(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 3; i++ {
		e, _ := r.Create()
		Add(r, e, position{})
	}

	for e := range Each[position](r) {
		if _, err := r.Create(); !errors.Is(err, ErrIterating) {
			t.Errorf("Create during iteration: got %v", err)
		}
		if err := r.Destroy(e); !errors.Is(err, ErrIterating) {
			t.Errorf("Destroy during iteration: got %v", err)
		}
		if _, err := Add(r, e, velocity{}); !errors.Is(err, ErrIterating) {
			t.Errorf("Add during iteration: got %v", err)
		}
		break
	}

	// Guard released after early break.
	if r.Iterating() {
		t.Fatal("iteration guard leaked after break")
	}
	for _, e := range Collect[position](r) {
		if err := r.Destroy(e); err != nil {
			t.Errorf("Destroy over snapshot: %v", err)
		}
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after destroying snapshot", r.Len())
	}
}

func TestRemoveDuringIterationPanics(t *testing.T) {
	r := NewRegistry()
	e, _ := r.Create()
	Add(r, e, position{})
	defer func() {
		if recover() == nil {
			t.Error("Remove during iteration should panic")
		}
		if r.Iterating() {
			t.Error("guard must be released when the loop body panics")
		}
	}()
	for e := range Each[position](r) {
		Remove[position](r, e)
	}
}

func TestEntitiesAndCollectAll(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Create()
	b, _ := r.Create()
	c, _ := r.Create()
	r.Destroy(b)

	all := r.CollectAll()
	if len(all) != 2 || all[0] != a || all[1] != c {
		t.Errorf("CollectAll = %v", all)
	}
	if r.ComponentCount(a) != 0 {
		t.Error("fresh entity should have no components")
	}
}
