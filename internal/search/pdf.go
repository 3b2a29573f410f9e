package search

import "strings"

// DefaultPDFTitleMarkers are title substrings that mark a hit as a document
// download rather than a discussion page. "논문" means thesis/paper.
var DefaultPDFTitleMarkers = []string{"[pdf]", "(pdf)", "논문"}

// PDFDetector recognizes hits that point at PDF documents.
type PDFDetector struct {
	titleMarkers []string
}

// NewPDFDetector creates a detector using DefaultPDFTitleMarkers plus extra
// title markers. Markers are matched case-insensitively.
func NewPDFDetector(extra ...string) *PDFDetector {
	seen := make(map[string]struct{})
	var markers []string
	for _, m := range append(append([]string(nil), DefaultPDFTitleMarkers...), extra...) {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		markers = append(markers, m)
	}
	return &PDFDetector{titleMarkers: markers}
}

// IsPDF reports whether the URL or title indicates a PDF document.
func (d *PDFDetector) IsPDF(rawURL, title string) bool {
	u := strings.ToLower(rawURL)
	if strings.HasSuffix(u, ".pdf") || strings.Contains(u, ".pdf?") || strings.Contains(u, "/pdf/") {
		return true
	}

	t := strings.ToLower(title)
	for _, marker := range d.titleMarkers {
		if strings.Contains(t, marker) {
			return true
		}
	}
	return false
}
