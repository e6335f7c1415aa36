package pdfgen

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kpiwowar/ofertomat/internal/models"
)

func item(name, category string, price, margin, vat, qty float64) *models.OfferItem {
	return &models.OfferItem{
		Name:             name,
		CategoryName:     category,
		Unit:             "szt.",
		PurchasePriceNet: price,
		Margin:           margin,
		VATRate:          vat,
		Quantity:         qty,
	}
}

func closeTo(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}

func TestSortedCategories(t *testing.T) {
	tests := []struct {
		name  string
		items []*models.OfferItem
		ranks map[string]int
		want  []string
	}{
		{
			name: "ranks override insertion order",
			items: []*models.OfferItem{
				item("b1", "B", 10, 30, 23, 1),
				item("a1", "A", 10, 30, 23, 1),
			},
			ranks: map[string]int{"A": 0, "B": 1},
			want:  []string{"A", "B"},
		},
		{
			name: "unranked sort after ranked alphabetically",
			items: []*models.OfferItem{
				item("z", "Zeta", 10, 30, 23, 1),
				item("a", "Alfa", 10, 30, 23, 1),
				item("r", "Rury", 10, 30, 23, 1),
			},
			ranks: map[string]int{"Rury": 0},
			want:  []string{"Rury", "Alfa", "Zeta"},
		},
		{
			name: "no ranks means plain name order",
			items: []*models.OfferItem{
				item("b", "B", 10, 30, 23, 1),
				item("a", "A", 10, 30, 23, 1),
			},
			ranks: nil,
			want:  []string{"A", "B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sortedCategories(groupItems(tt.items), tt.ranks)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sortedCategories() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGroupItemsSkipsNilAndFallsBack(t *testing.T) {
	items := []*models.OfferItem{
		item("a", "Kable", 10, 30, 23, 1),
		nil,
		item("b", "", 10, 30, 23, 1),
	}
	groups := groupItems(items)
	if len(groups["Kable"]) != 1 {
		t.Errorf("Kable group = %d items, want 1", len(groups["Kable"]))
	}
	if len(groups[models.FallbackCategoryName]) != 1 {
		t.Errorf("fallback group = %d items, want 1", len(groups[models.FallbackCategoryName]))
	}
	if len(groups) != 2 {
		t.Errorf("groups = %d, want 2", len(groups))
	}
}

func TestRenderOfferWritesFileAndTotals(t *testing.T) {
	g := New(Options{}, zerolog.Nop())
	out := filepath.Join(t.TempDir(), "oferta.pdf")

	data := OfferData{
		Title: "Oferta testowa",
		Date:  "2026-08-31",
		Items: []*models.OfferItem{
			item("Kabel YDY 3x1,5", "Kable", 10, 30, 23, 1),
			item("Kabel YDY 3x2,5", "Kable", 10, 30, 23, 3),
			nil,
			item("Gniazdo", "Osprzęt", 7, 30, 8, 2.5),
		},
		BusinessCard: &models.BusinessCard{
			Company:  "Elektro-Hurt Sp. z o.o.",
			FullName: "Jan Kowalski",
			Phone:    "600100200",
		},
		CategoryOrder: map[string]int{"Osprzęt": 0, "Kable": 1},
	}

	summary, err := g.RenderOffer(data, out, nil)
	if err != nil {
		t.Fatalf("RenderOffer() error = %v", err)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}

	if summary.Items != 3 {
		t.Errorf("Items = %d, want 3", summary.Items)
	}
	if len(summary.Categories) != 2 {
		t.Fatalf("Categories = %d, want 2", len(summary.Categories))
	}
	if summary.Categories[0].Name != "Osprzęt" || summary.Categories[1].Name != "Kable" {
		t.Errorf("category order = %q, %q, want Osprzęt then Kable",
			summary.Categories[0].Name, summary.Categories[1].Name)
	}
	// Kable: 13.00 + 39.00 net, 15.99 + 47.97 gross.
	if got := summary.Categories[1].Net; !closeTo(got, 52.00) {
		t.Errorf("Kable net = %v, want 52.00", got)
	}
	if got := summary.Categories[1].Gross; !closeTo(got, 63.96) {
		t.Errorf("Kable gross = %v, want 63.96", got)
	}
	if !closeTo(summary.GrandNet, summary.Categories[0].Net+summary.Categories[1].Net) {
		t.Error("GrandNet does not equal sum of category nets")
	}
}

func TestRenderOfferProgressCadence(t *testing.T) {
	g := New(Options{ProgressThreshold: 10, ProgressEvery: 50}, zerolog.Nop())
	out := filepath.Join(t.TempDir(), "oferta.pdf")

	items := make([]*models.OfferItem, 0, 120)
	for i := 0; i < 120; i++ {
		items = append(items, item("pozycja", "Kable", 10, 30, 23, 1))
	}

	var calls [][2]int
	_, err := g.RenderOffer(OfferData{Date: "2026-08-31", Items: items}, out, func(p, total int) {
		calls = append(calls, [2]int{p, total})
	})
	if err != nil {
		t.Fatalf("RenderOffer() error = %v", err)
	}

	want := [][2]int{{0, 120}, {50, 120}, {100, 120}, {120, 120}}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}
}

func TestRenderOfferProgressShortRenderSingleCall(t *testing.T) {
	g := New(Options{ProgressThreshold: 10}, zerolog.Nop())
	out := filepath.Join(t.TempDir(), "oferta.pdf")

	var calls [][2]int
	_, err := g.RenderOffer(OfferData{
		Date:  "2026-08-31",
		Items: []*models.OfferItem{item("a", "Kable", 10, 30, 23, 1)},
	}, out, func(p, total int) {
		calls = append(calls, [2]int{p, total})
	})
	if err != nil {
		t.Fatalf("RenderOffer() error = %v", err)
	}
	if want := [][2]int{{1, 1}}; !reflect.DeepEqual(calls, want) {
		t.Errorf("progress calls = %v, want %v", calls, want)
	}
}

func TestRenderOfferFailureLeavesNoFile(t *testing.T) {
	g := New(Options{}, zerolog.Nop())
	// A directory at the target path makes the final rename fail.
	out := filepath.Join(t.TempDir(), "zajete")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := g.RenderOffer(OfferData{
		Date:  "2026-08-31",
		Items: []*models.OfferItem{item("a", "Kable", 10, 30, 23, 1)},
	}, out, nil)
	if err == nil {
		t.Fatal("RenderOffer() expected error, got nil")
	}

	entries, readErr := os.ReadDir(filepath.Dir(out))
	if readErr != nil {
		t.Fatal(readErr)
	}
	for _, e := range entries {
		if e.Name() != "zajete" {
			t.Errorf("leftover file %q after failed render", e.Name())
		}
	}
}
