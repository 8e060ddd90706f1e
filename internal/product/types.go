// internal/product/types.go

// Package product defines the records produced by the extraction pipeline:
// the per-page ProductDescription, its offers, and the flat VariantRecord
// that is exported and persisted.
package product

import "fmt"

// Column names of the tabular export, in output order.
const (
	ColumnProductURL   = "Product URL"
	ColumnProductName  = "Product Name"
	ColumnVariantSize  = "Variant Size"
	ColumnPrice        = "Price"
	ColumnDimensionsCm = "Dimensions (cm)"
	ColumnDimensionsIn = "Dimensions (in)"
	ColumnWeightKg     = "Weight (kg)"
	ColumnWeightLbs    = "Weight (lbs)"
	ColumnColors       = "Colors"
	ColumnMaterial     = "Material"
	ColumnSKU          = "SKU"
	ColumnCategory     = "Category"
	ColumnSubcategory  = "Subcategory"
	ColumnMainImageURL = "Main Image URL"
)

// Columns is the fixed 14-column schema.
var Columns = []string{
	ColumnProductURL,
	ColumnProductName,
	ColumnVariantSize,
	ColumnPrice,
	ColumnDimensionsCm,
	ColumnDimensionsIn,
	ColumnWeightKg,
	ColumnWeightLbs,
	ColumnColors,
	ColumnMaterial,
	ColumnSKU,
	ColumnCategory,
	ColumnSubcategory,
	ColumnMainImageURL,
}

// OfferDescription is one commercial offer nested in a product block.
type OfferDescription struct {
	// RawPrice is the price as found in the block; it may be empty or non-numeric.
	RawPrice     string
	VariantLabel string
	OfferSKU     string
}

// ProductDescription is the normalized view of one product page.
type ProductDescription struct {
	SKU          string
	Name         string
	Image        string
	Colors       []string
	Material     string
	DimensionsCm string
	DimensionsIn string
	WeightKg     string
	WeightLb     string
	Offers       []OfferDescription
}

// VariantRecord is one priced variant row.
type VariantRecord struct {
	ProductURL   string `json:"Product URL" bson:"Product URL"`
	ProductName  string `json:"Product Name" bson:"Product Name"`
	VariantSize  string `json:"Variant Size" bson:"Variant Size"`
	Price        string `json:"Price" bson:"Price"`
	DimensionsCm string `json:"Dimensions (cm)" bson:"Dimensions (cm)"`
	DimensionsIn string `json:"Dimensions (in)" bson:"Dimensions (in)"`
	WeightKg     string `json:"Weight (kg)" bson:"Weight (kg)"`
	WeightLbs    string `json:"Weight (lbs)" bson:"Weight (lbs)"`
	Colors       string `json:"Colors" bson:"Colors"`
	Material     string `json:"Material" bson:"Material"`
	SKU          string `json:"SKU" bson:"SKU"`
	Category     string `json:"Category" bson:"Category"`
	Subcategory  string `json:"Subcategory" bson:"Subcategory"`
	MainImageURL string `json:"Main Image URL" bson:"Main Image URL"`
}

// Values returns the record's fields in Columns order.
func (r VariantRecord) Values() []string {
	return []string{
		r.ProductURL,
		r.ProductName,
		r.VariantSize,
		r.Price,
		r.DimensionsCm,
		r.DimensionsIn,
		r.WeightKg,
		r.WeightLbs,
		r.Colors,
		r.Material,
		r.SKU,
		r.Category,
		r.Subcategory,
		r.MainImageURL,
	}
}

// Fields returns the record as a column-name keyed map.
func (r VariantRecord) Fields() map[string]string {
	values := r.Values()
	fields := make(map[string]string, len(Columns))
	for i, col := range Columns {
		fields[col] = values[i]
	}
	return fields
}

// RecordFromValues builds a record from a row in Columns order.
func RecordFromValues(values []string) (VariantRecord, error) {
	if len(values) != len(Columns) {
		return VariantRecord{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(values))
	}
	return VariantRecord{
		ProductURL:   values[0],
		ProductName:  values[1],
		VariantSize:  values[2],
		Price:        values[3],
		DimensionsCm: values[4],
		DimensionsIn: values[5],
		WeightKg:     values[6],
		WeightLbs:    values[7],
		Colors:       values[8],
		Material:     values[9],
		SKU:          values[10],
		Category:     values[11],
		Subcategory:  values[12],
		MainImageURL: values[13],
	}, nil
}
