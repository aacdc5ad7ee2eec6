package internaldefs

import (
	"strings"
	"testing"
)

func TestCounterDefsUniqueAndPrefixed(t *testing.T) {
	names := make(map[string]struct{}, len(CounterDefs))
	ids := make(map[uint16]struct{}, len(CounterDefs))
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "tokenauth_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %q must be tokenauth_*_total", def.Name)
		}
		if _, dup := names[def.Name]; dup {
			t.Fatalf("duplicate counter name %q", def.Name)
		}
		if _, dup := ids[uint16(def.ID)]; dup {
			t.Fatalf("duplicate counter id %d", def.ID)
		}
		names[def.Name] = struct{}{}
		ids[uint16(def.ID)] = struct{}{}
	}
	if len(HistogramBounds) != len(HistogramBoundSuffix) {
		t.Fatal("bounds and suffixes must align")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets(NormalizeBuckets([]uint64{1, 2, 3}))
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
