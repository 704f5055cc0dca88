package diag

import (
	"errors"
	"testing"
)

func TestReportCollects(t *testing.T) {
	r := New()
	r.SetFrame(3)
	r.Warn("shading", "checker1", "unsupported node")
	r.Warnf("snapshot", "", "samples clamped to %d", 2)
	r.SetFrame(4)
	r.Error("export", "|ball", errors.New("boom"))

	if got := len(r.Entries()); got != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", got)
	}
	if got := len(r.Warnings()); got != 2 {
		t.Errorf("len(Warnings()) = %d, want 2", got)
	}
	errs := r.Errors()
	if len(errs) != 1 || errs[0].Frame != 4 || errs[0].Message != "boom" {
		t.Errorf("Errors() = %+v", errs)
	}
	if got := r.Entries()[0].String(); got != "frame 3: shading [checker1]: unsupported node" {
		t.Errorf("String() = %q", got)
	}
	if got := r.Summary(); got != "export: 1, shading: 1, snapshot: 1" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestNilReport(t *testing.T) {
	var r *Report
	r.SetFrame(1)
	r.Warn("shading", "", "ignored")
	r.Error("export", "", errors.New("ignored"))

	if r.Entries() != nil {
		t.Error("nil report should have no entries")
	}
	if got := r.Summary(); got != "no warnings" {
		t.Errorf("Summary() = %q", got)
	}
}
