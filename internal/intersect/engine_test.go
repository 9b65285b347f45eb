package intersect_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/bkyoung/lint-scout/internal/domain"
	"github.com/bkyoung/lint-scout/internal/intersect"
)

func finding(file string, start, end int) domain.Finding {
	return domain.NewFinding(domain.FindingInput{
		Tool:      "test",
		File:      file,
		LineStart: start,
		LineEnd:   end,
		Message:   "test finding",
	})
}

func lineSet(lines ...int) domain.LineSet {
	set := domain.LineSet{}
	for _, line := range lines {
		set.Add(line)
	}
	return set
}

func TestFilter_UnknownFileIsDropped(t *testing.T) {
	changes := domain.ChangeSet{"src/a.go": lineSet(10)}

	got := intersect.Filter(changes, []domain.Finding{finding("elsewhere.go", 10, 10)}, nil)
	if len(got) != 0 {
		t.Errorf("expected no findings for unmatched file, got %d", len(got))
	}
}

func TestFilter_SuffixPathMatching(t *testing.T) {
	tests := []struct {
		name string
		key  string
		file string
		want bool
	}{
		{"finding relative to sub-project", "crate-a/src/lib.rs", "src/lib.rs", true},
		{"exact match", "src/lib.rs", "src/lib.rs", true},
		{"bare name must respect component boundary", "other/lib.rs", "lib.rs", true},
		{"no match inside a component", "other/nolib.rs", "lib.rs", false},
		{"key shorter than finding path", "src/lib.rs", "crate-a/src/lib.rs", true},
		{"windows separators normalized", "crate-a/src/lib.rs", `src\lib.rs`, true},
		{"leading dot-slash stripped", "src/lib.rs", "./src/lib.rs", true},
		{"case sensitive", "src/lib.rs", "src/LIB.rs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changes := domain.ChangeSet{tt.key: lineSet(5)}
			got := intersect.Filter(changes, []domain.Finding{finding(tt.file, 5, 5)}, nil)
			if kept := len(got) == 1; kept != tt.want {
				t.Errorf("key %q vs file %q: kept=%v, want %v", tt.key, tt.file, kept, tt.want)
			}
		})
	}
}

func TestFilter_MostSpecificKeyWins(t *testing.T) {
	// Both keys end in src/lib.go; only the longer one has the changed line.
	changes := domain.ChangeSet{
		"lib.go":             lineSet(99),
		"crate-a/src/lib.go": lineSet(5),
	}

	got := intersect.Filter(changes, []domain.Finding{finding("src/lib.go", 5, 5)}, nil)
	if len(got) != 1 {
		t.Fatalf("expected the finding to resolve to the longer key, got %d findings", len(got))
	}
}

func TestFilter_OverlapProperty(t *testing.T) {
	// Any line of the reported span being changed retains the finding;
	// randomized sets and ranges, including single-line ranges.
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		set := domain.LineSet{}
		for j := 0; j < rng.Intn(20); j++ {
			set.Add(1 + rng.Intn(100))
		}
		start := 1 + rng.Intn(100)
		end := start + rng.Intn(10)

		want := false
		for line := start; line <= end; line++ {
			if set.Contains(line) {
				want = true
				break
			}
		}

		changes := domain.ChangeSet{"f.go": set}
		got := intersect.Filter(changes, []domain.Finding{finding("f.go", start, end)}, nil)
		if kept := len(got) == 1; kept != want {
			t.Fatalf("set=%v range=[%d,%d]: kept=%v, want %v", set.Lines(), start, end, kept, want)
		}
	}
}

func TestFilter_EndToEnd(t *testing.T) {
	changes := domain.ChangeSet{"src/a.rs": lineSet(10, 11, 12)}
	findings := []domain.Finding{
		finding("a.rs", 10, 12),
		finding("a.rs", 1, 5),
		finding("b.rs", 1, 3),
	}

	got := intersect.Filter(changes, findings, nil)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 finding, got %d", len(got))
	}
	if got[0] != findings[0] {
		t.Errorf("expected first finding retained, got %+v", got[0])
	}
}

func TestFilter_PreservesInputOrder(t *testing.T) {
	changes := domain.ChangeSet{"a.go": lineSet(1, 2, 3)}
	findings := []domain.Finding{
		finding("a.go", 3, 3),
		finding("a.go", 1, 1),
		finding("a.go", 2, 2),
	}

	got := intersect.Filter(changes, findings, nil)
	if !reflect.DeepEqual(got, findings) {
		t.Errorf("expected original order preserved, got %+v", got)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	changes := domain.ChangeSet{"a.go": lineSet(5, 7)}
	findings := []domain.Finding{
		finding("a.go", 4, 6),
		finding("a.go", 8, 9),
	}

	first := intersect.Filter(changes, findings, nil)
	second := intersect.Filter(changes, findings, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestFilter_MultiSpanMessageDecomposed(t *testing.T) {
	// One logical message reported as two spans arrives as two findings;
	// exactly the in-diff span survives.
	changes := domain.ChangeSet{"a.go": lineSet(10)}
	inDiff := finding("a.go", 9, 11)
	outside := finding("a.go", 40, 45)

	got := intersect.Filter(changes, []domain.Finding{inDiff, outside}, nil)
	if len(got) != 1 || got[0] != inDiff {
		t.Errorf("expected only the in-diff span retained, got %+v", got)
	}
}

func TestFilter_InvalidRangeSkipped(t *testing.T) {
	changes := domain.ChangeSet{"a.go": lineSet(5)}
	bad := domain.Finding{Tool: "test", File: "a.go", LineStart: 0, LineEnd: 0}

	got := intersect.Filter(changes, []domain.Finding{bad}, nil)
	if len(got) != 0 {
		t.Errorf("expected invalid record dropped, got %d", len(got))
	}
}

type recordingSink struct {
	decisions []intersect.Decision
}

func (s *recordingSink) Decision(d intersect.Decision) {
	s.decisions = append(s.decisions, d)
}

func TestFilter_TraceSinkSeesEveryDecision(t *testing.T) {
	changes := domain.ChangeSet{"a.go": lineSet(5)}
	findings := []domain.Finding{
		finding("a.go", 5, 5),
		finding("a.go", 9, 9),
		finding("missing.go", 1, 1),
	}

	sink := &recordingSink{}
	got := intersect.Filter(changes, findings, sink)

	if len(got) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got))
	}
	if len(sink.decisions) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(sink.decisions))
	}

	wantReasons := []string{intersect.ReasonInDiff, intersect.ReasonNoOverlap, intersect.ReasonNoPath}
	for i, want := range wantReasons {
		if sink.decisions[i].Reason != want {
			t.Errorf("decision %d: expected reason %q, got %q", i, want, sink.decisions[i].Reason)
		}
	}
	if !sink.decisions[0].Kept || sink.decisions[1].Kept || sink.decisions[2].Kept {
		t.Errorf("unexpected kept flags: %+v", sink.decisions)
	}
}
