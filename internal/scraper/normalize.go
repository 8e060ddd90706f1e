// internal/scraper/normalize.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/valpere/ProductScrapexter/internal/product"
)

// DefaultMaterialVocabulary is matched in order against product name and page text.
var DefaultMaterialVocabulary = []string{"Aluminum", "Aluminium", "Polycarbonate", "Leather"}

var outsideMaterialRe = regexp.MustCompile(`Outside\s*:\s*([A-Za-z ]+)`)

// Measurements holds the four resolved measurement strings.
type Measurements struct {
	DimensionsCm string
	DimensionsIn string
	WeightKg     string
	WeightLb     string
}

// Get returns the value currently held for field.
func (m *Measurements) Get(field MeasurementField) string {
	switch field {
	case DimensionsCm:
		return m.DimensionsCm
	case DimensionsIn:
		return m.DimensionsIn
	case WeightKg:
		return m.WeightKg
	case WeightLb:
		return m.WeightLb
	}
	return ""
}

// setIfEmpty keeps the first value written for each field.
func (m *Measurements) setIfEmpty(field MeasurementField, v string) {
	if v == "" || m.Get(field) != "" {
		return
	}
	switch field {
	case DimensionsCm:
		m.DimensionsCm = v
	case DimensionsIn:
		m.DimensionsIn = v
	case WeightKg:
		m.WeightKg = v
	case WeightLb:
		m.WeightLb = v
	}
}

// MeasurementSource resolves a single field, reporting whether it produced a value.
type MeasurementSource func(field MeasurementField) (string, bool)

// ResolveMeasurements queries sources in precedence order for each field and
// keeps the first non-empty answer. Later sources are never consulted for a
// field an earlier source has filled.
func ResolveMeasurements(sources ...MeasurementSource) Measurements {
	var m Measurements
	for _, field := range measurementFields {
		for _, source := range sources {
			if v, ok := source(field); ok && v != "" {
				m.setIfEmpty(field, v)
				break
			}
		}
	}
	return m
}

// Normalizer maps a product block plus its page into a ProductDescription.
type Normalizer struct {
	vocabulary []string
}

// NewNormalizer returns a Normalizer using vocabulary for material fallback.
// An empty vocabulary selects DefaultMaterialVocabulary.
func NewNormalizer(vocabulary []string) *Normalizer {
	if len(vocabulary) == 0 {
		vocabulary = DefaultMaterialVocabulary
	}
	return &Normalizer{vocabulary: vocabulary}
}

// Normalize builds the description. Missing or malformed attributes yield
// empty values; nothing here fails.
func (n *Normalizer) Normalize(block ProductBlock, doc *goquery.Document) *product.ProductDescription {
	pageText := flattenText(doc.Selection)
	name := clean(block.String("name"))

	measurements := ResolveMeasurements(
		additionalPropertySource(block["additionalProperty"]),
		discretePropertySource(block),
		NewTextPatternResolver(doc).Resolve,
	)

	return &product.ProductDescription{
		SKU:          strings.TrimSpace(block.String("sku")),
		Name:         name,
		Image:        mainImage(block["image"]),
		Colors:       normalizeColors(block["color"]),
		Material:     n.material(name, pageText),
		DimensionsCm: measurements.DimensionsCm,
		DimensionsIn: measurements.DimensionsIn,
		WeightKg:     measurements.WeightKg,
		WeightLb:     measurements.WeightLb,
		Offers:       collectOffers(block["offers"]),
	}
}

func (n *Normalizer) material(name, pageText string) string {
	if m := outsideMaterialRe.FindStringSubmatch(pageText); m != nil {
		if v := clean(m[1]); v != "" {
			return v
		}
	}
	haystack := strings.ToLower(name + " " + pageText)
	for _, term := range n.vocabulary {
		if term != "" && strings.Contains(haystack, strings.ToLower(term)) {
			return term
		}
	}
	return ""
}

func mainImage(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return mainImage(t[0])
	case map[string]interface{}:
		return strings.TrimSpace(firstNonEmpty(stringOf(t["url"]), stringOf(t["contentUrl"])))
	default:
		return strings.TrimSpace(stringOf(v))
	}
}

func normalizeColors(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []interface{}:
		for _, item := range t {
			raw = append(raw, stringOf(item))
		}
	}

	seen := make(map[string]bool, len(raw))
	var colors []string
	for _, c := range raw {
		c = clean(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		colors = append(colors, c)
	}
	return colors
}

// additionalPropertySource reads the "dimensions" and "weight" entries of a
// PropertyValue list. A value carrying both units is split at "(".
func additionalPropertySource(v interface{}) MeasurementSource {
	var m Measurements
	for _, prop := range objectList(v) {
		name := strings.ToLower(strings.TrimSpace(stringOf(prop["name"])))
		value := clean(stringOf(prop["value"]))
		if value == "" {
			continue
		}
		lower := strings.ToLower(value)
		switch name {
		case "dimensions":
			hasCm, hasInch := strings.Contains(lower, "cm"), strings.Contains(lower, "inch")
			switch {
			case hasCm && hasInch:
				if cm, in, ok := splitUnits(value); ok {
					m.setIfEmpty(DimensionsCm, cm)
					m.setIfEmpty(DimensionsIn, in)
				}
			case hasInch:
				m.setIfEmpty(DimensionsIn, value)
			case hasCm:
				m.setIfEmpty(DimensionsCm, value)
			}
		case "weight":
			hasKg, hasLb := strings.Contains(lower, "kg"), strings.Contains(lower, "lb")
			switch {
			case hasKg && hasLb:
				if kg, lb, ok := splitUnits(value); ok {
					m.setIfEmpty(WeightKg, kg)
					m.setIfEmpty(WeightLb, lb)
				}
			case hasKg:
				m.setIfEmpty(WeightKg, value)
			case hasLb:
				m.setIfEmpty(WeightLb, value)
			}
		}
	}
	return fromMeasurements(m)
}

// splitUnits splits "55 x 40 x 20 cm (21.6 x 15.7 x 7.9 inch)" into its two halves.
func splitUnits(value string) (string, string, bool) {
	parts := strings.Split(value, "(")
	if len(parts) != 2 {
		return "", "", false
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(strings.ReplaceAll(parts[1], ")", ""))
	return first, second, first != "" && second != ""
}

// discretePropertySource reads width/height/depth and weight quantities.
// Dimensions render as "W x H x D"; all three must be present. A missing unit
// means cm or kg; an unrecognised unit leaves the field for later sources.
func discretePropertySource(block ProductBlock) MeasurementSource {
	var m Measurements

	w, wUnit := quantity(block["width"])
	h, hUnit := quantity(block["height"])
	d, dUnit := quantity(block["depth"])
	if w != "" && h != "" && d != "" {
		dims := w + " x " + h + " x " + d
		switch unit := firstNonEmpty(wUnit, hUnit, dUnit); {
		case isInchUnit(unit):
			m.setIfEmpty(DimensionsIn, dims+suffixInch)
		case isCentimetreUnit(unit):
			m.setIfEmpty(DimensionsCm, dims+suffixCm)
		}
	}

	if weight, ok := block["weight"].(map[string]interface{}); ok {
		value, unit := quantity(weight)
		if value != "" {
			switch {
			case isKilogramUnit(unit):
				m.setIfEmpty(WeightKg, value+suffixKg)
			case isPoundUnit(unit):
				m.setIfEmpty(WeightLb, value+suffixLbs)
			}
		}
	}
	return fromMeasurements(m)
}

// quantity returns the value and unit of a QuantitativeValue or a bare scalar.
func quantity(v interface{}) (string, string) {
	if obj, ok := v.(map[string]interface{}); ok {
		unit := firstNonEmpty(stringOf(obj["unitText"]), stringOf(obj["unitCode"]))
		return strings.TrimSpace(stringOf(obj["value"])), strings.TrimSpace(unit)
	}
	return strings.TrimSpace(stringOf(v)), ""
}

// Unit codes follow UN/CEFACT (CMT, INH, KGM, LBR).
func isCentimetreUnit(unit string) bool {
	u := strings.ToLower(unit)
	return u == "" || u == "cmt" || strings.Contains(u, "cm") || strings.HasPrefix(u, "centimet")
}

func isInchUnit(unit string) bool {
	switch u := strings.ToLower(unit); u {
	case "in", "in.", "inh":
		return true
	default:
		return strings.Contains(u, "inch")
	}
}

func isKilogramUnit(unit string) bool {
	u := strings.ToLower(unit)
	return u == "" || u == "kgm" || strings.Contains(u, "kg") || strings.HasPrefix(u, "kilogram")
}

func isPoundUnit(unit string) bool {
	u := strings.ToLower(unit)
	return u == "lbr" || strings.Contains(u, "lb") || strings.HasPrefix(u, "pound")
}

func fromMeasurements(m Measurements) MeasurementSource {
	return func(field MeasurementField) (string, bool) {
		v := m.Get(field)
		return v, v != ""
	}
}

// collectOffers flattens a single offer, an offer list, or an AggregateOffer.
func collectOffers(v interface{}) []product.OfferDescription {
	var offers []product.OfferDescription
	for _, off := range objectList(v) {
		if nested, ok := off["offers"]; ok && stringOf(off["@type"]) == "AggregateOffer" {
			offers = append(offers, collectOffers(nested)...)
			continue
		}
		offers = append(offers, product.OfferDescription{
			RawPrice:     strings.TrimSpace(stringOf(off["price"])),
			VariantLabel: offerLabel(off),
			OfferSKU:     strings.TrimSpace(stringOf(off["sku"])),
		})
	}
	return offers
}

// offerLabel prefers variant over name. A whitespace-only variant is still
// taken and cleans to an empty size.
func offerLabel(off map[string]interface{}) string {
	if v := stringOf(off["variant"]); v != "" {
		return v
	}
	return stringOf(off["name"])
}

// objectList accepts one object or a list and returns the objects it holds.
func objectList(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(t))
		for _, item := range t {
			if obj, ok := item.(map[string]interface{}); ok {
				out = append(out, obj)
			}
		}
		return out
	}
	return nil
}
