// internal/pipeline/dedup.go
package pipeline

import "github.com/valpere/ProductScrapexter/internal/product"

// IdentityKey is the offer SKU when present, otherwise the product URL joined
// with the variant label.
func IdentityKey(r product.VariantRecord) string {
	if r.SKU != "" {
		return r.SKU
	}
	return r.ProductURL + r.VariantSize
}

// RecordSet accumulates every record in arrival order alongside an
// insert-or-replace index keyed by IdentityKey.
type RecordSet struct {
	all        []product.VariantRecord
	order      []string
	unique     map[string]product.VariantRecord
	duplicates int
}

// NewRecordSet returns an empty set.
func NewRecordSet() *RecordSet {
	return &RecordSet{unique: make(map[string]product.VariantRecord)}
}

// Add appends records. A record whose key was already seen replaces the
// earlier one in the unique view but keeps the key's original position.
func (s *RecordSet) Add(records ...product.VariantRecord) {
	for _, r := range records {
		s.all = append(s.all, r)
		key := IdentityKey(r)
		if _, ok := s.unique[key]; ok {
			s.duplicates++
		} else {
			s.order = append(s.order, key)
		}
		s.unique[key] = r
	}
}

// All returns every record, duplicates included.
func (s *RecordSet) All() []product.VariantRecord {
	out := make([]product.VariantRecord, len(s.all))
	copy(out, s.all)
	return out
}

// Unique returns one record per identity key: the last one added, in
// first-seen key order.
func (s *RecordSet) Unique() []product.VariantRecord {
	out := make([]product.VariantRecord, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.unique[key])
	}
	return out
}

// Duplicates counts records that replaced an earlier record with the same key.
func (s *RecordSet) Duplicates() int {
	return s.duplicates
}

// Len is the size of the all collection.
func (s *RecordSet) Len() int {
	return len(s.all)
}
