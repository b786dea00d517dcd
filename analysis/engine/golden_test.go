package engine

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/cs-au-dk/memorax/testutil"
)

// TestRunPurelyLocalTraceGolden snapshots the exact trace text produced
// for the purely-local scenario against a golden file, so any change to
// trace labeling or step ordering shows up as a reviewable diff.
func TestRunPurelyLocalTraceGolden(t *testing.T) {
	m, forbidden := testutil.PurelyLocal()
	res := runSb(t, m, forbidden, false)
	if !res.Reachable {
		t.Fatal("purely-local machine: got UNREACHABLE, want REACHABLE")
	}

	labels := make([]string, len(res.Trace))
	for i, via := range res.Trace {
		labels[i] = via.Label
	}
	goldie.New(t).Assert(t, t.Name(), []byte(strings.Join(labels, "\n")))
}
