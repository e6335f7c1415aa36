// Package importer reads product lists exported from ERP systems (CSV or
// XLSX) and normalizes them into candidates for the batch import. Column
// headers, decimal commas and VAT notation follow the Polish exports the
// tool historically consumed.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/store"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("nieobsługiwany format pliku, użyj CSV lub XLSX")

// Logical fields a source column can map to.
const (
	fieldCode  = "code"
	fieldName  = "name"
	fieldUnit  = "unit"
	fieldPrice = "purchase_price_net"
	fieldVAT   = "vat_rate"
)

// columnMapping matches header cells (trimmed, lowercased) against the
// spellings seen in real exports. "Nr"/"Opis"/"Ostatni koszt bezpośredni"
// is the Business Central layout, the rest cover hand-edited sheets.
var columnMapping = map[string]string{
	"nr":                        fieldCode,
	"indeks":                    fieldCode,
	"kod":                       fieldCode,
	"opis":                      fieldName,
	"nazwa":                     fieldName,
	"podst. jednostka miary":    fieldUnit,
	"jednostka":                 fieldUnit,
	"jm":                        fieldUnit,
	"ostatni koszt bezpośredni": fieldPrice,
	"cena zakupu":               fieldPrice,
	"cena zakupu netto":         fieldPrice,
	"cena":                      fieldPrice,
	"koszt":                     fieldPrice,
	"koszt jednostkowy":         fieldPrice,
	"cena netto":                fieldPrice,
	"wartość":                   fieldPrice,
	"tow. grupa księgowa vat":   fieldVAT,
	"vat":                       fieldVAT,
	"stawka vat":                fieldVAT,
}

// ParsePrice reads a price cell tolerating the Polish decimal comma.
// Unparsable input maps to 0.0 so a bad cell does not abort the import.
func ParsePrice(raw string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// ParseVAT reads a VAT cell: "23%", "23", "0.23" all mean twenty-three
// percent. Unparsable input falls back to the standard rate.
func ParseVAT(raw string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return models.DefaultVATRate
	}
	if v > 0 && v <= 1 {
		v *= 100
	}
	return v
}

// FromFile reads the file and returns normalized candidates. Rows with an
// empty code are dropped. categoryID, when non-nil, is stamped on every
// candidate.
func FromFile(path string, categoryID *uint) ([]store.ProductCandidate, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	return buildCandidates(rows, categoryID)
}

// Report is the pre-import preview shown to the user before committing.
type Report struct {
	Valid     bool
	Message   string
	Preview   []store.ProductCandidate
	TotalRows int
}

// ValidateFile checks a file without touching the database and returns a
// preview of up to five candidates.
func ValidateFile(path string) Report {
	if _, err := os.Stat(path); err != nil {
		return Report{Message: "Plik nie istnieje"}
	}
	rows, err := readRows(path)
	if err != nil {
		return Report{Message: err.Error()}
	}
	if len(rows) <= 1 {
		return Report{Message: "Plik jest pusty"}
	}
	candidates, err := buildCandidates(rows, nil)
	if err != nil {
		return Report{Message: err.Error()}
	}
	preview := candidates
	if len(preview) > 5 {
		preview = preview[:5]
	}
	return Report{
		Valid:     true,
		Message:   fmt.Sprintf("Plik poprawny, %d wierszy do importu", len(candidates)),
		Preview:   preview,
		TotalRows: len(candidates),
	}
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readXLSX(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// readCSV tries the semicolon separator first (the common Polish export
// convention) and falls back to comma when the header came out as a single
// column.
func readCSV(path string) ([][]string, error) {
	rows, err := parseCSV(path, ';')
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) == 1 {
		if commaRows, commaErr := parseCSV(path, ','); commaErr == nil && len(commaRows) > 0 && len(commaRows[0]) > 1 {
			return commaRows, nil
		}
	}
	return rows, nil
}

func parseCSV(path string, sep rune) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("odczyt pliku: %w", err)
	}
	// Excel prepends a UTF-8 BOM.
	text := strings.TrimPrefix(string(raw), "\uFEFF")

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("odczyt CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("odczyt pliku Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("plik Excel nie zawiera arkuszy")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("odczyt arkusza: %w", err)
	}
	return rows, nil
}

// buildCandidates maps the header row to logical fields and normalizes the
// data rows. Missing code or name columns are a hard error; a missing
// price, unit or VAT column falls back to defaults per row.
func buildCandidates(rows [][]string, categoryID *uint) ([]store.ProductCandidate, error) {
	if len(rows) == 0 {
		return nil, errors.New("plik jest pusty")
	}
	header := rows[0]
	fieldIdx := map[string]int{}
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if field, ok := columnMapping[key]; ok {
			if _, taken := fieldIdx[field]; !taken {
				fieldIdx[field] = i
			}
		}
	}

	var missing []string
	for _, required := range []string{fieldCode, fieldName} {
		if _, ok := fieldIdx[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("brak wymaganych kolumn: %s (kolumny w pliku: %s)",
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}

	cellAt := func(row []string, field string) (string, bool) {
		idx, ok := fieldIdx[field]
		if !ok || idx >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[idx]), true
	}

	var candidates []store.ProductCandidate
	for _, row := range rows[1:] {
		code, _ := cellAt(row, fieldCode)
		if code == "" {
			continue
		}
		name, _ := cellAt(row, fieldName)

		unit, ok := cellAt(row, fieldUnit)
		if !ok || unit == "" {
			unit = models.DefaultUnit
		}
		price := 0.0
		if cell, ok := cellAt(row, fieldPrice); ok {
			price = ParsePrice(cell)
		}
		vat := models.DefaultVATRate
		if cell, ok := cellAt(row, fieldVAT); ok {
			vat = ParseVAT(cell)
		}

		candidates = append(candidates, store.ProductCandidate{
			Code:             code,
			Name:             name,
			Unit:             unit,
			PurchasePriceNet: price,
			VATRate:          vat,
			CategoryID:       categoryID,
		})
	}
	return candidates, nil
}
