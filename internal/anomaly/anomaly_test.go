package anomaly

import "testing"

func TestInsufficientHistory(t *testing.T) {
	for n := 0; n < minHistory; n++ {
		x := make([]float64, n)
		res := Analyze(x)
		if !res.InsufficientHistory {
			t.Fatalf("n=%d: expected insufficient history", n)
		}
	}
}

func TestConstantSeriesZeroZ(t *testing.T) {
	x := []float64{100, 100, 100, 100, 100, 100, 100, 100, 100, 100}
	res := Analyze(x)
	if res.InsufficientHistory {
		t.Fatal("unexpected insufficient history")
	}
	if res.Z != 0 {
		t.Fatalf("expected z=0 for constant series (MAD=0), got %v", res.Z)
	}
}

func TestOutlierProducesLargeZ(t *testing.T) {
	// The baseline varies slightly so MAD is non-zero: a constant baseline
	// gives MAD = 0 and therefore z = 0 (see TestConstantSeriesZeroZ).
	x := []float64{98, 102, 99, 101, 100, 97, 103, 100, 99, 101, 10000}
	res := Analyze(x)
	if res.InsufficientHistory {
		t.Fatal("unexpected insufficient history")
	}
	if res.Z < 3.5 {
		t.Fatalf("expected |z| well beyond 3.5 for a gross outlier, got %v", res.Z)
	}
}

func TestMedianOddEven(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("expected median 2, got %v", got)
	}
	if got := median([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Fatalf("expected median 2.5, got %v", got)
	}
}
