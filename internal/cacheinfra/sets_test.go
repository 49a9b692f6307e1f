package cacheinfra

import (
	"context"
	"reflect"
	"sort"
	"testing"
)

func newTestMemberSets(t *testing.T) *MemberSets {
	t.Helper()
	c, err := NewMemberSets(DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemberSets: %v", err)
	}
	return c
}

func sorted(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestGetManyClassifiesThreeWays(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{100, 200})
	c.StoreMembers(ctx, 2, nil)

	lookup, err := c.GetMany(ctx, []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("GetMany: %v", err)
	}
	if got := sorted(lookup.Members[1]); !reflect.DeepEqual(got, []int64{100, 200}) {
		t.Errorf("Members[1] = %v", got)
	}
	if !reflect.DeepEqual(lookup.Empty, []int64{2}) {
		t.Errorf("Empty = %v, want [2]", lookup.Empty)
	}
	if !reflect.DeepEqual(lookup.Missing, []int64{3}) {
		t.Errorf("Missing = %v, want [3]", lookup.Missing)
	}
}

func TestStoreMembersDedupes(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{5, 5, 7, 5})

	lookup, _ := c.GetMany(ctx, []int64{1})
	if got := sorted(lookup.Members[1]); !reflect.DeepEqual(got, []int64{5, 7}) {
		t.Errorf("Members[1] = %v, want [5 7]", got)
	}
}

func TestStoreMembersReplacesEmptyMarker(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, nil)
	c.StoreMembers(ctx, 1, []int64{9})

	lookup, _ := c.GetMany(ctx, []int64{1})
	if len(lookup.Empty) != 0 {
		t.Errorf("Empty = %v, want none", lookup.Empty)
	}
	if !reflect.DeepEqual(lookup.Members[1], []int64{9}) {
		t.Errorf("Members[1] = %v, want [9]", lookup.Members[1])
	}
}

func TestAddIsIdempotent(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{100})
	c.Add(ctx, 1, 100)
	c.Add(ctx, 1, 100)

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Members[1], []int64{100}) {
		t.Errorf("Members[1] = %v, want [100]", lookup.Members[1])
	}
}

func TestAddToConfirmedEmptySet(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, nil)
	c.Add(ctx, 1, 42)

	lookup, _ := c.GetMany(ctx, []int64{1})
	if len(lookup.Empty) != 0 {
		t.Errorf("Empty = %v, want none", lookup.Empty)
	}
	if !reflect.DeepEqual(lookup.Members[1], []int64{42}) {
		t.Errorf("Members[1] = %v, want [42]", lookup.Members[1])
	}
}

func TestAddToMissingSetIsNoOp(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	// Category 1 was never computed; its true membership is unknown, so
	// the add must not publish a one-element set.
	if err := c.Add(ctx, 1, 42); err != nil {
		t.Fatalf("Add: %v", err)
	}

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Missing, []int64{1}) {
		t.Errorf("Missing = %v, want [1]", lookup.Missing)
	}
	if len(lookup.Members) != 0 || len(lookup.Empty) != 0 {
		t.Errorf("Members = %v, Empty = %v, want none", lookup.Members, lookup.Empty)
	}
}

func TestRemoveFromMissingSetIsNoOp(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	if err := c.Remove(ctx, 1, 42); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Missing, []int64{1}) {
		t.Errorf("Missing = %v, want [1]", lookup.Missing)
	}
}

func TestRemoveNonMemberIsNoOp(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{100})
	c.Remove(ctx, 1, 999)

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Members[1], []int64{100}) {
		t.Errorf("Members[1] = %v, want [100]", lookup.Members[1])
	}
}

func TestRemoveLastMemberLeavesConfirmedEmpty(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{100})
	c.Remove(ctx, 1, 100)

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Empty, []int64{1}) {
		t.Errorf("Empty = %v, want [1]", lookup.Empty)
	}
	if len(lookup.Missing) != 0 {
		t.Errorf("Missing = %v, want none", lookup.Missing)
	}
}

func TestRemoveFromConfirmedEmptyIsNoOp(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, nil)
	c.Remove(ctx, 1, 42)

	lookup, _ := c.GetMany(ctx, []int64{1})
	if !reflect.DeepEqual(lookup.Empty, []int64{1}) {
		t.Errorf("Empty = %v, want [1]", lookup.Empty)
	}
}

func TestGetManyDoneContextDegradesToMissing(t *testing.T) {
	c := newTestMemberSets(t)
	c.StoreMembers(context.Background(), 1, []int64{100})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup, err := c.GetMany(ctx, []int64{1, 2})
	if err != nil {
		t.Fatalf("GetMany with done context: %v", err)
	}
	if got := sorted(lookup.Missing); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("Missing = %v, want [1 2]", got)
	}
}

func TestGetManyReturnsCopies(t *testing.T) {
	c := newTestMemberSets(t)
	ctx := context.Background()

	c.StoreMembers(ctx, 1, []int64{100, 200})

	first, _ := c.GetMany(ctx, []int64{1})
	first.Members[1][0] = 999

	second, _ := c.GetMany(ctx, []int64{1})
	if got := sorted(second.Members[1]); !reflect.DeepEqual(got, []int64{100, 200}) {
		t.Errorf("mutating a lookup leaked into the cache: %v", got)
	}
}
