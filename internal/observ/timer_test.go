package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	load := tm.Begin("load")
	run := tm.Begin("run")
	tm.End(run, "7 queries")
	tm.End(load, "")
	tm.End(42, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.Phases[0].Name != "load" || rep.Phases[1].Note != "7 queries" {
		t.Fatalf("report = %+v", rep)
	}
	if rep.TotalMS < rep.Phases[0].DurationMS {
		t.Fatalf("total %.3f is below a phase", rep.TotalMS)
	}
	sum := tm.Summary()
	if !strings.HasPrefix(sum, "timings:\n") || !strings.Contains(sum, "// 7 queries") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("nil timer must report nothing")
	}
}
