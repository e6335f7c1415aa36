// Package pdfgen renders a composed offer into a paginated A4 PDF:
// business-card header, one priced table per category in the user-defined
// order, per-category subtotals and a logo watermark on every page.
// Layout and pagination are delegated to maroto.
package pdfgen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"
	"github.com/rs/zerolog"

	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/pricing"
)

// ProgressFunc receives (processed, total) at coarse intervals during a
// long render. It is called on the rendering goroutine; callers bridge to
// their own UI mechanism.
type ProgressFunc func(processed, total int)

// Categories with no explicit rank sort after every ranked one.
const unrankedSentinel = 999

const disclaimer = "Oferta ważna w dniu przedstawienia do momentu zmiany cen rynkowych."

// OfferData is the fully resolved input: everything the document needs,
// nothing fetched during rendering.
type OfferData struct {
	Title         string
	Date          string
	Items         []*models.OfferItem
	BusinessCard  *models.BusinessCard
	CategoryOrder map[string]int
}

type Options struct {
	LogoPath      string
	WatermarkPath string // pre-faded image, drawn as page background
	Fonts         FontResolver
	// Renders above this item count report progress; below it the
	// callback fires once at completion.
	ProgressThreshold int
	ProgressEvery     int
}

type Generator struct {
	opts Options
	log  zerolog.Logger
}

func New(opts Options, log zerolog.Logger) *Generator {
	if opts.ProgressThreshold <= 0 {
		opts.ProgressThreshold = 200
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 50
	}
	if opts.Fonts == nil {
		opts.Fonts = SystemFontResolver{}
	}
	return &Generator{opts: opts, log: log}
}

// CategoryTotal is the per-category subtotal accumulated during rendering.
type CategoryTotal struct {
	Name  string
	Net   float64
	Gross float64
}

// Summary reports what was rendered so callers can show totals without
// re-pricing the items.
type Summary struct {
	Categories []CategoryTotal
	GrandNet   float64
	GrandGross float64
	Items      int
}

// RenderOffer writes the document to outPath. The file is written to a
// temporary sibling and renamed only after a fully successful generate, so
// a failed render never leaves a partial file at outPath.
func (g *Generator) RenderOffer(data OfferData, outPath string, progress ProgressFunc) (*Summary, error) {
	groups := groupItems(data.Items)
	order := sortedCategories(groups, data.CategoryOrder)

	total := 0
	for _, items := range groups {
		total += len(items)
	}
	report := g.reporter(progress, total)
	report(0)

	m := maroto.New(g.buildConfig())
	g.addHeader(m, data)

	summary := &Summary{Items: total}
	processed := 0
	for _, name := range order {
		items := groups[name]
		if len(items) == 0 {
			continue
		}
		m.AddRows(g.categoryHeader(name))
		m.AddRows(g.tableHeader())

		catTotal := CategoryTotal{Name: name}
		for _, item := range items {
			qty := item.Quantity
			if qty == 0 {
				qty = 1.0
			}
			prices := pricing.Calculate(item.PurchasePriceNet, item.Margin, item.VATRate, qty)
			catTotal.Net += prices.NetTotal
			catTotal.Gross += prices.GrossTotal
			m.AddRows(g.itemRow(item, prices))

			processed++
			if processed%g.opts.ProgressEvery == 0 || processed == total {
				report(processed)
			}
		}
		summary.Categories = append(summary.Categories, catTotal)
		summary.GrandNet += catTotal.Net
		summary.GrandGross += catTotal.Gross
		m.AddRow(6)
	}

	m.AddRow(8)
	m.AddRow(5, text.NewCol(12, disclaimer, props.Text{
		Size:  8,
		Style: fontstyle.Italic,
		Align: align.Center,
		Color: &props.Color{Red: 128, Green: 128, Blue: 128},
	}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generowanie PDF: %w", err)
	}
	if err := writeAtomic(outPath, doc); err != nil {
		return nil, err
	}
	g.log.Info().Str("path", outPath).Int("items", total).Msg("wygenerowano PDF oferty")
	return summary, nil
}

func (g *Generator) reporter(progress ProgressFunc, total int) func(int) {
	if progress == nil {
		return func(int) {}
	}
	if total <= g.opts.ProgressThreshold {
		// Short render: a single completion call keeps cheap callers
		// working without the coarse stream.
		return func(processed int) {
			if processed == total {
				progress(total, total)
			}
		}
	}
	return func(processed int) { progress(processed, total) }
}

func (g *Generator) buildConfig() *entity.Config {
	builder := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(20).
		WithRightMargin(20).
		WithTopMargin(20).
		WithBottomMargin(20)

	if fonts, family := g.loadFonts(); len(fonts) > 0 {
		builder = builder.
			WithCustomFonts(fonts).
			WithDefaultFont(&props.Font{Family: family})
	}

	if g.opts.WatermarkPath != "" {
		if raw, err := os.ReadFile(g.opts.WatermarkPath); err == nil {
			builder = builder.WithBackgroundImage(raw, imageExtension(g.opts.WatermarkPath))
		} else {
			g.log.Warn().Err(err).Str("path", g.opts.WatermarkPath).Msg("brak pliku znaku wodnego")
		}
	}

	return builder.Build()
}

// loadFonts registers a Unicode-capable face under one family name for all
// styles maroto may request. No resolvable font means builtin fonts.
func (g *Generator) loadFonts() ([]*entity.CustomFont, string) {
	const family = "oferta"
	regular, ok := g.opts.Fonts.Regular()
	if !ok {
		g.log.Warn().Msg("brak czcionki TTF, polskie znaki mogą być uproszczone")
		return nil, ""
	}
	bold, ok := g.opts.Fonts.Bold()
	if !ok {
		bold = regular
	}
	fonts, err := repository.New().
		AddUTF8Font(family, fontstyle.Normal, regular).
		AddUTF8Font(family, fontstyle.Bold, bold).
		AddUTF8Font(family, fontstyle.Italic, regular).
		AddUTF8Font(family, fontstyle.BoldItalic, bold).
		Load()
	if err != nil {
		g.log.Warn().Err(err).Msg("nie udało się załadować czcionek")
		return nil, ""
	}
	return fonts, family
}

func (g *Generator) addHeader(m core.Maroto, data OfferData) {
	if g.opts.LogoPath != "" {
		if _, err := os.Stat(g.opts.LogoPath); err == nil {
			m.AddRows(image.NewFromFileRow(28, g.opts.LogoPath, props.Rect{Center: true, Percent: 60}))
			m.AddRow(4)
		}
	}

	if card := data.BusinessCard; card != nil {
		if card.Company != "" {
			m.AddRow(8, text.NewCol(12, card.Company, props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Center,
			}))
		}
		if line := card.ContactLine(); line != "" {
			m.AddRow(6, text.NewCol(12, line, props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Center,
			}))
		}
	}

	m.AddRow(6, text.NewCol(12, "Data: "+data.Date, props.Text{
		Size:  10,
		Style: fontstyle.Italic,
		Align: align.Center,
	}))
	m.AddRow(4)

	title := data.Title
	if title == "" {
		title = "Oferta handlowa"
	}
	m.AddRow(14, text.NewCol(12, title, props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 139, Green: 139, Blue: 139},
	}))
	m.AddRow(6)
}

var (
	headerRed = props.Color{Red: 200, Green: 16, Blue: 46}
	white     = props.Color{Red: 255, Green: 255, Blue: 255}
	gridGray  = props.Color{Red: 128, Green: 128, Blue: 128}
)

func (g *Generator) categoryHeader(name string) core.Row {
	return row.New(10).Add(text.NewCol(12, name, props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &headerRed,
		Top:   2,
	}))
}

func (g *Generator) tableHeader() core.Row {
	header := func(size int, label string) core.Col {
		return text.NewCol(size, label, props.Text{
			Size:  9,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: &white,
			Top:   1.5,
		})
	}
	return row.New(7).
		Add(
			header(5, "Nazwa"),
			header(2, "Cena netto"),
			header(2, "J.M."),
			header(1, "VAT"),
			header(2, "Cena brutto"),
		).
		WithStyle(&props.Cell{BackgroundColor: &headerRed})
}

func (g *Generator) itemRow(item *models.OfferItem, prices pricing.Breakdown) core.Row {
	cell := func(size int, value string, a align.Type) core.Col {
		return text.NewCol(size, value, props.Text{Size: 8, Align: a, Top: 1.5})
	}
	unit := item.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}
	return row.New(6).
		Add(
			cell(5, item.Name, align.Left),
			cell(2, fmt.Sprintf("%.2f", prices.NetUnit), align.Right),
			cell(2, "zł/"+unit, align.Right),
			cell(1, fmt.Sprintf("%.0f%%", item.VATRate), align.Right),
			cell(2, fmt.Sprintf("%.2f zł", prices.GrossUnit), align.Right),
		).
		WithStyle(&props.Cell{
			BorderType:      border.Full,
			BorderColor:     &gridGray,
			BorderThickness: 0.2,
		})
}

// groupItems buckets lines by category name. Nil lines are skipped
// silently; that mirrors how historic documents tolerated holes in the
// selection.
func groupItems(items []*models.OfferItem) map[string][]*models.OfferItem {
	groups := map[string][]*models.OfferItem{}
	for _, item := range items {
		if item == nil {
			continue
		}
		name := item.CategoryOr(models.FallbackCategoryName)
		groups[name] = append(groups[name], item)
	}
	return groups
}

// sortedCategories orders group keys by (explicit rank, name). Unranked
// categories land after all ranked ones, alphabetically.
func sortedCategories(groups map[string][]*models.OfferItem, ranks map[string]int) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	rankOf := func(name string) int {
		if r, ok := ranks[name]; ok {
			return r
		}
		return unrankedSentinel
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rankOf(names[i]), rankOf(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
	return names
}

// writeAtomic saves into a uniquely named sibling first and renames into
// place, so outPath only ever holds a complete document.
func writeAtomic(outPath string, doc core.Document) error {
	dir := filepath.Dir(outPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("katalog wyjściowy: %w", err)
		}
	}
	tmp := outPath + ".tmp-" + uuid.NewString()
	if err := doc.Save(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("zapis PDF: %w", err)
	}
	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("zapis PDF: %w", err)
	}
	return nil
}

func imageExtension(path string) extension.Type {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return extension.Jpg
	default:
		return extension.Png
	}
}
