// internal/scraper/textpattern.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MeasurementField identifies one of the four measurement strings of a product.
type MeasurementField int

const (
	DimensionsCm MeasurementField = iota
	DimensionsIn
	WeightKg
	WeightLb
)

// measurementFields lists every field in resolution order.
var measurementFields = []MeasurementField{DimensionsCm, DimensionsIn, WeightKg, WeightLb}

func (f MeasurementField) String() string {
	switch f {
	case DimensionsCm:
		return "dimensions_cm"
	case DimensionsIn:
		return "dimensions_in"
	case WeightKg:
		return "weight_kg"
	case WeightLb:
		return "weight_lb"
	default:
		return "unknown"
	}
}

const dimensionTriple = `([\d.,]+\s*x\s*[\d.,]+\s*x\s*[\d.,]+)`

var (
	combinedDimensionsRe = regexp.MustCompile(`(?i)(?:dimension|measurement|size)[:\s]*` + dimensionTriple + `\s*cm[^(]*\(` + dimensionTriple + `\s*inch`)
	centimetreTripleRe   = regexp.MustCompile(`(?i)` + dimensionTriple + `\s*cm`)
	inchTripleRe         = regexp.MustCompile(`(?i)` + dimensionTriple + `\s*(?:inch|in|")`)

	combinedWeightRe = regexp.MustCompile(`(?i)weight[:\s]*([\d.,]+)\s*kg[^(]*\(([\d.,]+)\s*(?:lb|lbs)`)
	labeledKgRe      = regexp.MustCompile(`(?i)weight[:\s]*([\d.,]+)\s*kg`)
	labeledLbRe      = regexp.MustCompile(`(?i)weight[:\s]*([\d.,]+)\s*(?:lb|lbs)`)
	bareKgRe         = regexp.MustCompile(`(?i)([\d.,]+)\s*kg`)
	bareLbRe         = regexp.MustCompile(`(?i)([\d.,]+)\s*(?:lb|lbs)`)

	specContainerClassRe = regexp.MustCompile(`(?i)spec|detail|feature|attribute`)
)

const (
	suffixCm   = " cm"
	suffixInch = " inch"
	suffixKg   = " kg"
	suffixLbs  = " lbs"
)

type textPattern struct {
	re     *regexp.Regexp
	group  int
	suffix string
}

// containerPatterns apply to spec/detail/feature/attribute containers, where
// weight values must carry a "weight" label.
var containerPatterns = map[MeasurementField][]textPattern{
	DimensionsCm: {{combinedDimensionsRe, 1, suffixCm}, {centimetreTripleRe, 1, suffixCm}},
	DimensionsIn: {{combinedDimensionsRe, 2, suffixInch}, {inchTripleRe, 1, suffixInch}},
	WeightKg:     {{combinedWeightRe, 1, suffixKg}, {labeledKgRe, 1, suffixKg}},
	WeightLb:     {{combinedWeightRe, 2, suffixLbs}, {labeledLbRe, 1, suffixLbs}},
}

// itemPatterns apply to list items already gated by keyword.
var itemPatterns = map[MeasurementField][]textPattern{
	DimensionsCm: {{combinedDimensionsRe, 1, suffixCm}, {centimetreTripleRe, 1, suffixCm}},
	DimensionsIn: {{combinedDimensionsRe, 2, suffixInch}, {inchTripleRe, 1, suffixInch}},
	WeightKg:     {{combinedWeightRe, 1, suffixKg}, {bareKgRe, 1, suffixKg}},
	WeightLb:     {{combinedWeightRe, 2, suffixLbs}, {bareLbRe, 1, suffixLbs}},
}

var itemKeywords = map[MeasurementField][]string{
	DimensionsCm: {"measurement", "dimension"},
	DimensionsIn: {"measurement", "dimension"},
	WeightKg:     {"weight"},
	WeightLb:     {"weight"},
}

// TextPatternResolver recovers measurement strings from the visible text of
// specification containers, then of list items.
type TextPatternResolver struct {
	doc        *goquery.Document
	loaded     bool
	containers []string
	items      []string
}

// NewTextPatternResolver prepares a resolver; page text is flattened on first use.
func NewTextPatternResolver(doc *goquery.Document) *TextPatternResolver {
	return &TextPatternResolver{doc: doc}
}

func (r *TextPatternResolver) load() {
	if r.loaded {
		return
	}
	r.loaded = true
	r.doc.Find("ul, div").Each(func(_ int, s *goquery.Selection) {
		if class, ok := s.Attr("class"); ok && specContainerClassRe.MatchString(class) {
			if text := flattenText(s); text != "" {
				r.containers = append(r.containers, text)
			}
		}
	})
	r.doc.Find("li").Each(func(_ int, s *goquery.Selection) {
		if text := flattenText(s); text != "" {
			r.items = append(r.items, text)
		}
	})
}

// Resolve returns the first match for field. Containers are swept before list
// items, and each sweep stops at the first text that yields a value.
func (r *TextPatternResolver) Resolve(field MeasurementField) (string, bool) {
	r.load()
	for _, text := range r.containers {
		if v, ok := matchPatterns(text, containerPatterns[field]); ok {
			return v, true
		}
	}
	for _, text := range r.items {
		if !containsKeyword(text, itemKeywords[field]) {
			continue
		}
		if v, ok := matchPatterns(text, itemPatterns[field]); ok {
			return v, true
		}
	}
	return "", false
}

func matchPatterns(text string, patterns []textPattern) (string, bool) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v := clean(m[p.group]); v != "" {
			return v + p.suffix, true
		}
	}
	return "", false
}

func containsKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
