package metrics

import "testing"

func TestMetricFieldKeysAreStable(t *testing.T) {
	if AttrMethod == "" || AttrPath == "" || AttrStatus == "" || AttrStream == "" {
		t.Fatalf("expected metric attribute keys to be non-empty")
	}
	seen := map[string]bool{}
	for _, s := range []string{StreamFeed, StreamChat, StreamMarket, StreamLogin} {
		if seen[s] {
			t.Fatalf("duplicate stream name %q", s)
		}
		seen[s] = true
	}
}
