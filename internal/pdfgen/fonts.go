package pdfgen

import "os"

// FontResolver locates a TTF face able to render Polish diacritics.
// The renderer falls back to the builtin PDF fonts when nothing resolves,
// which keeps rendering working at the cost of diacritic fidelity.
type FontResolver interface {
	Regular() (string, bool)
	Bold() (string, bool)
}

// FileFontResolver points at explicitly configured font files.
type FileFontResolver struct {
	RegularPath string
	BoldPath    string
}

func (r FileFontResolver) Regular() (string, bool) { return existing(r.RegularPath) }
func (r FileFontResolver) Bold() (string, bool)    { return existing(r.BoldPath) }

// SystemFontResolver probes well-known font locations across platforms.
type SystemFontResolver struct{}

var regularCandidates = []string{
	"fonts/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
}

var boldCandidates = []string{
	"fonts/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"C:\\Windows\\Fonts\\arialbd.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
}

func (SystemFontResolver) Regular() (string, bool) { return firstExisting(regularCandidates) }
func (SystemFontResolver) Bold() (string, bool)    { return firstExisting(boldCandidates) }

// ResolverFor picks the configured files when both are set, otherwise the
// system probe.
func ResolverFor(regularPath, boldPath string) FontResolver {
	if regularPath != "" {
		return FileFontResolver{RegularPath: regularPath, BoldPath: boldPath}
	}
	return SystemFontResolver{}
}

func existing(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func firstExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		if path, ok := existing(c); ok {
			return path, true
		}
	}
	return "", false
}
