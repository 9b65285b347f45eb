package domain_test

import (
	"testing"

	"github.com/bkyoung/lint-scout/internal/domain"
)

func TestFindingDeterministicID(t *testing.T) {
	input := domain.FindingInput{
		Tool:      "staticcheck",
		File:      "main.go",
		LineStart: 10,
		LineEnd:   12,
		Message:   "example problem",
	}

	finding := domain.NewFinding(input)
	again := domain.NewFinding(input)

	if finding.ID != again.ID {
		t.Fatalf("expected deterministic IDs, got %s and %s", finding.ID, again.ID)
	}

	input.LineEnd = 13
	different := domain.NewFinding(input)
	if finding.ID == different.ID {
		t.Fatal("expected distinct IDs for distinct inputs")
	}
}

func TestLineSetAnyInRange(t *testing.T) {
	set := domain.LineSet{}
	for _, line := range []int{3, 8, 21} {
		set.Add(line)
	}

	tests := []struct {
		start, end int
		want       bool
	}{
		{1, 2, false},
		{3, 3, true},
		{4, 7, false},
		{4, 8, true},
		{1, 100, true},
		{22, 30, false},
	}

	for _, tt := range tests {
		if got := set.AnyInRange(tt.start, tt.end); got != tt.want {
			t.Errorf("AnyInRange(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestLineSetIgnoresNonPositive(t *testing.T) {
	set := domain.LineSet{}
	set.Add(0)
	set.Add(-4)
	if len(set) != 0 {
		t.Errorf("expected non-positive lines ignored, got %v", set.Lines())
	}
}

func TestChangeSetRecordAndFiles(t *testing.T) {
	changes := domain.ChangeSet{}
	changes.Record("b.go", 2)
	changes.Record("a.go", 1)
	changes.Record("a.go", 9)

	files := changes.Files()
	if len(files) != 2 || files[0] != "a.go" || files[1] != "b.go" {
		t.Errorf("expected sorted files [a.go b.go], got %v", files)
	}
	if changes.TotalLines() != 3 {
		t.Errorf("expected 3 total lines, got %d", changes.TotalLines())
	}
}
