package importer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"123,45", 123.45},
		{"123.45", 123.45},
		{"123", 123},
		{" 9,90 ", 9.90},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := ParsePrice(tt.raw); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseVAT(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"23%", 23},
		{"5 %", 5},
		{"0.23", 23},
		{"0,08", 8},
		{"23", 23},
		{"8", 8},
		{"0", 0},
		{"VAT23", 23}, // unparsable, default
		{"", 23},
	}
	for _, tt := range tests {
		if got := ParseVAT(tt.raw); got != tt.want {
			t.Errorf("ParseVAT(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFromFileSemicolonCSV(t *testing.T) {
	path := writeFile(t, "produkty.csv",
		"Nr;Opis;Podst. jednostka miary;Ostatni koszt bezpośredni;Tow. grupa księgowa VAT\n"+
			"K-100;Kabel YDY 3x1,5;mb;\"4,20\";23%\n"+
			";wiersz bez kodu;szt.;1;23\n"+
			"G-200;Gniazdo podwójne;;\"7,50\";8\n")

	got, err := FromFile(path, nil)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FromFile() = %d candidates, want 2", len(got))
	}
	first := got[0]
	if first.Code != "K-100" || first.Name != "Kabel YDY 3x1,5" || first.Unit != "mb" {
		t.Errorf("first candidate = %+v", first)
	}
	if first.PurchasePriceNet != 4.20 || first.VATRate != 23 {
		t.Errorf("first price/vat = %v/%v, want 4.20/23", first.PurchasePriceNet, first.VATRate)
	}
	// Empty unit falls back to the default.
	if got[1].Unit != "szt." {
		t.Errorf("second unit = %q, want szt.", got[1].Unit)
	}
}

func TestFromFileCommaFallbackAndBOM(t *testing.T) {
	path := writeFile(t, "produkty.csv",
		"\uFEFFKod,Nazwa,Cena netto\n"+
			"A-1,Przewód,12.50\n")

	got, err := FromFile(path, nil)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FromFile() = %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Code != "A-1" || c.PurchasePriceNet != 12.50 {
		t.Errorf("candidate = %+v", c)
	}
	// No unit or VAT columns at all: defaults apply.
	if c.Unit != "szt." || c.VATRate != 23 {
		t.Errorf("unit/vat = %q/%v, want szt./23", c.Unit, c.VATRate)
	}
}

func TestFromFileMissingRequiredColumns(t *testing.T) {
	path := writeFile(t, "zle.csv", "Cena;Jednostka\n1;szt.\n")
	if _, err := FromFile(path, nil); err == nil {
		t.Fatal("FromFile() expected error for missing code/name columns")
	}
}

func TestFromFileUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "produkty.txt", "cokolwiek")
	_, err := FromFile(path, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FromFile() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestFromFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "produkty.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Nr", "Opis", "VAT"},
		{"X-9", "Rozdzielnica", "0.23"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	catID := uint(3)
	got, err := FromFile(path, &catID)
	if err != nil {
		t.Fatalf("FromFile() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FromFile() = %d candidates, want 1", len(got))
	}
	c := got[0]
	if c.Code != "X-9" || c.VATRate != 23 {
		t.Errorf("candidate = %+v", c)
	}
	if c.CategoryID == nil || *c.CategoryID != 3 {
		t.Errorf("CategoryID = %v, want 3", c.CategoryID)
	}
}

func TestValidateFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		report := ValidateFile(filepath.Join(t.TempDir(), "brak.csv"))
		if report.Valid {
			t.Error("report.Valid = true for missing file")
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeFile(t, "puste.csv", "Nr;Opis\n")
		report := ValidateFile(path)
		if report.Valid {
			t.Error("report.Valid = true for header-only file")
		}
	})

	t.Run("preview capped at five", func(t *testing.T) {
		content := "Nr;Opis\n"
		for _, code := range []string{"1", "2", "3", "4", "5", "6", "7"} {
			content += code + ";produkt " + code + "\n"
		}
		report := ValidateFile(writeFile(t, "duzo.csv", content))
		if !report.Valid {
			t.Fatalf("report invalid: %s", report.Message)
		}
		if report.TotalRows != 7 {
			t.Errorf("TotalRows = %d, want 7", report.TotalRows)
		}
		if len(report.Preview) != 5 {
			t.Errorf("Preview = %d rows, want 5", len(report.Preview))
		}
	})
}
