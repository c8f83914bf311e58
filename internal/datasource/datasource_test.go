package datasource

import (
	"context"
	"testing"
	"time"
)

func TestNormalizeClosedTypeSet(t *testing.T) {
	cases := []struct {
		in   any
		kind Kind
	}{
		{nil, KindNull},
		{int64(5), KindInt64},
		{int32(5), KindInt64},
		{3.14, KindFloat64},
		{true, KindBool},
		{time.Unix(0, 0), KindTime},
		{[]byte("abc"), KindString},
		{"abc", KindString},
	}
	for _, c := range cases {
		got := normalize(c.in)
		if got.Kind != c.kind {
			t.Errorf("normalize(%#v).Kind = %v, want %v", c.in, got.Kind, c.kind)
		}
	}
}

func TestScalarFloat64Widening(t *testing.T) {
	if f, ok := Scalar{Kind: KindInt64, I: 7}.Float64(); !ok || f != 7 {
		t.Fatalf("Int64 widening failed: %v %v", f, ok)
	}
	if f, ok := Scalar{Kind: KindBool, B: true}.Float64(); !ok || f != 1 {
		t.Fatalf("Bool widening failed: %v %v", f, ok)
	}
	if _, ok := Scalar{Kind: KindString, S: "x"}.Float64(); ok {
		t.Fatal("expected String to not widen to float64")
	}
}

func TestManagerGetUnknownDatasource(t *testing.T) {
	m := NewManager(map[string]Config{})
	if _, err := m.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown datasource")
	}
}
