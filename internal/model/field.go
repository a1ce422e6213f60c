package model

// Canonical product field keys. Every SourceRecord and ConsolidatedRecord
// fields map is keyed by these and nothing else.
const (
	FieldName           = "name"
	FieldDescription    = "description"
	FieldPrice          = "price"
	FieldCost           = "cost"
	FieldStockQuantity  = "stock_quantity"
	FieldManufacturer   = "manufacturer"
	FieldSpecifications = "specifications"
	FieldCategory       = "category"
)

// FieldSpec describes one canonical product field: its scoring weight class,
// value kind, and the source priority used to break cross-source conflicts.
type FieldSpec struct {
	Key      string    `json:"key"`
	Required bool      `json:"required"`
	Numeric  bool      `json:"numeric"`
	Priority [3]Source `json:"priority"` // highest priority first
}

// Weight returns the completeness weight for the field: required fields count
// double.
func (f FieldSpec) Weight() float64 {
	if f.Required {
		return 2.0
	}
	return 1.0
}

// Source priority groups. Editorial content trusts the catalogue, commercial
// figures trust the manually maintained price sheet, everything else trusts
// the product database.
var (
	editorialPriority  = [3]Source{SourceCatalogue, SourceDatabase, SourceSpreadsheet}
	commercialPriority = [3]Source{SourceSpreadsheet, SourceDatabase, SourceCatalogue}
	defaultPriority    = [3]Source{SourceDatabase, SourceCatalogue, SourceSpreadsheet}
)

// schema is the fixed canonical field schema, in resolution order. Order
// matters: the resolver iterates it to keep conflict lists deterministic.
var schema = []FieldSpec{
	{Key: FieldName, Required: true, Priority: editorialPriority},
	{Key: FieldDescription, Required: true, Priority: editorialPriority},
	{Key: FieldPrice, Required: true, Numeric: true, Priority: commercialPriority},
	{Key: FieldCost, Numeric: true, Priority: commercialPriority},
	{Key: FieldStockQuantity, Numeric: true, Priority: commercialPriority},
	{Key: FieldManufacturer, Priority: defaultPriority},
	{Key: FieldSpecifications, Priority: editorialPriority},
	{Key: FieldCategory, Priority: defaultPriority},
}

var schemaByKey = func() map[string]*FieldSpec {
	m := make(map[string]*FieldSpec, len(schema))
	for i := range schema {
		m[schema[i].Key] = &schema[i]
	}
	return m
}()

// Schema returns the canonical field schema in resolution order.
func Schema() []FieldSpec {
	return schema
}

// SpecFor returns the spec for a field key, or nil for unknown fields.
func SpecFor(key string) *FieldSpec {
	return schemaByKey[key]
}

// KnownField reports whether key belongs to the canonical schema.
func KnownField(key string) bool {
	_, ok := schemaByKey[key]
	return ok
}

// SKUWeight is the completeness weight carried by the SKU itself. The SKU is
// required, so it weighs the same as the other required fields.
const SKUWeight = 2.0

// TotalFieldWeight is the denominator of the completeness score: all schema
// field weights plus the SKU weight.
func TotalFieldWeight() float64 {
	total := SKUWeight
	for _, f := range schema {
		total += f.Weight()
	}
	return total
}
