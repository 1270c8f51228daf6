package main

import (
	"strings"
	"testing"
)

const baselineOut = `goos: linux
goarch: amd64
pkg: github.com/MrEthical07/tokenguard
BenchmarkAuthenticate-8   	  200000	      5000 ns/op	    1200 B/op	      20 allocs/op
BenchmarkAuthenticate-8   	  200000	      5200 ns/op	    1200 B/op	      20 allocs/op
BenchmarkAuthenticate-8   	  200000	      4800 ns/op	    1200 B/op	      20 allocs/op
BenchmarkRefresh-8        	   20000	     60000 ns/op	    9000 B/op	     110 allocs/op
BenchmarkIssuePair-8      	   50000	     20000 ns/op
BenchmarkMetricsInc-8     	1000000000	         1.1 ns/op
PASS
`

func TestParseKeepsTrackedOnly(t *testing.T) {
	got, err := parse(strings.NewReader(baselineOut), defaultTracked)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := got["BenchmarkMetricsInc"]; ok {
		t.Fatal("untracked benchmark kept")
	}
	if n := len(got["BenchmarkAuthenticate"]["ns/op"]); n != 3 {
		t.Fatalf("expected 3 authenticate samples, got %d", n)
	}
	if v := got["BenchmarkRefresh"]["allocs/op"]; len(v) != 1 || v[0] != 110 {
		t.Fatalf("unexpected refresh allocs %v", v)
	}
}

func TestCompare(t *testing.T) {
	base, _ := parse(strings.NewReader(baselineOut), defaultTracked)

	t.Run("within threshold", func(t *testing.T) {
		rows, failures := compare(base, base, defaultTracked, 0.3)
		if len(failures) != 0 {
			t.Fatalf("unexpected failures %v", failures)
		}
		if len(rows) != 5 || rows[0].benchmark != "BenchmarkAuthenticate" {
			t.Fatalf("unexpected rows %+v", rows)
		}
	})

	t.Run("regression", func(t *testing.T) {
		slower := strings.ReplaceAll(baselineOut, "60000 ns/op", "90000 ns/op")
		cand, _ := parse(strings.NewReader(slower), defaultTracked)
		_, failures := compare(base, cand, defaultTracked, 0.3)
		if len(failures) != 1 || !strings.Contains(failures[0], "BenchmarkRefresh ns/op") {
			t.Fatalf("expected refresh regression, got %v", failures)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, failures := compare(base, samples{}, defaultTracked, 0.3)
		if len(failures) != 5 {
			t.Fatalf("expected 5 missing, got %v", failures)
		}
	})
}

func TestMedianAndProcs(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("median odd = %v", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("median even = %v", got)
	}
	if got := stripProcs("BenchmarkRefresh-16"); got != "BenchmarkRefresh" {
		t.Fatalf("stripProcs = %q", got)
	}
	if got := stripProcs("BenchmarkRefresh-fast"); got != "BenchmarkRefresh-fast" {
		t.Fatalf("stripProcs = %q", got)
	}
}
