package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

func TestDecodeFeedItemAcceptsLooseShapes(t *testing.T) {
	doc := Document{
		"id":   "f1",
		"date": "2024-02-03 10:11:12",
		"type": float64(2),
		"meta": map[string]any{
			"player_id": "p9",
			"price":     json.Number("1500000"),
			"extra":     map[string]any{"note": "x", "n": float64(3)},
		},
	}
	item, err := decodeFeedItem("f1", doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2024, 2, 3, 10, 11, 12, 0, time.UTC)
	if !item.Date.Equal(want) {
		t.Fatalf("expected naive date read as UTC, got %s", item.Date)
	}
	if item.Type != domain.FeedTypeSale || item.Meta.PlayerID != "p9" || item.Meta.Price != 1_500_000 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.Meta.Extra["n"] != "3" || item.Meta.Extra["note"] != "x" {
		t.Fatalf("unexpected extra %+v", item.Meta.Extra)
	}
}

func TestDecodeRequiresIdentityFields(t *testing.T) {
	cases := []struct {
		name  string
		run   func() error
		field string
	}{
		{"feed id", func() error { _, err := decodeFeedItem("", Document{"date": time.Now()}); return err }, fieldID},
		{"feed date", func() error { _, err := decodeFeedItem("f", Document{"id": "f"}); return err }, fieldDate},
		{"chat date type", func() error { _, err := decodeChatItem("c", Document{"id": "c", "date": true}); return err }, fieldDate},
		{"market date", func() error { _, err := decodeMarketSnapshot("m", Document{}); return err }, fieldDate},
		{"league id", func() error { _, err := decodeLeague("", Document{"name": "x"}); return err }, fieldID},
		{"setting value", func() error { _, err := decodeSetting("k", Document{"key": "k"}); return err }, fieldValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dErr, ok := AsDecodeError(tc.run())
			if !ok {
				t.Fatalf("expected decode error")
			}
			if dErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, dErr.Field)
			}
		})
	}
}

func TestEncodeMarketSnapshotIndexesPlayerIDs(t *testing.T) {
	doc := encodeMarketSnapshot(domain.MarketSnapshot{
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Players: []domain.MarketPlayer{{ID: "a"}, {ID: "b"}},
	})
	if !containsString(doc[fieldPlayerIDs], "b") {
		t.Fatalf("expected player_ids to include b, got %v", doc[fieldPlayerIDs])
	}
	if doc[fieldID] != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected key %v", doc[fieldID])
	}
}

func TestAsTimeFormats(t *testing.T) {
	want := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	inputs := []any{
		want,
		want.In(time.FixedZone("CEST", 2*3600)),
		"2024-06-01T10:00:00+02:00",
		"2024-06-01T08:00:00",
		want.Unix(),
		float64(want.Unix()),
	}
	for _, in := range inputs {
		got, ok := asTime(in)
		if !ok || !got.Equal(want) {
			t.Fatalf("asTime(%v) = %s, %v", in, got, ok)
		}
		if got.Location() != time.UTC {
			t.Fatalf("expected UTC location for %v", in)
		}
	}
	if _, ok := asTime("not a date"); ok {
		t.Fatalf("expected garbage to fail")
	}
}

func TestDecodeSettingDefaultsKey(t *testing.T) {
	s, err := decodeSetting("league_id", Document{"value": "L1"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.Key != "league_id" || s.Value != "L1" {
		t.Fatalf("unexpected setting %+v", s)
	}
}
