package payload

import "github.com/goliatone/go-assetform/pkg/form"

// ValueKind selects how a state value is converted.
type ValueKind string

const (
	KindString   ValueKind = "string"
	KindInt      ValueKind = "int"
	KindLocation ValueKind = "location"
)

// Mapping binds a record property to state. Location mappings read Key as
// latitude and PairKey as longitude and require both to be present.
type Mapping struct {
	Property string
	Key      string
	PairKey  string
	Kind     ValueKind
	Always   bool
}

// DefaultMappings is the record property table in emission order.
func DefaultMappings() []Mapping {
	return []Mapping{
		{Property: "type", Key: form.FieldType, Kind: KindString, Always: true},
		{Property: "subtype", Key: form.FieldSubtype, Kind: KindString},
		{Property: "supplier", Key: form.FieldSupplier, Kind: KindString},
		{Property: "ranch", Key: form.FieldRanch, Kind: KindString},
		{Property: "coo", Key: form.FieldCOO, Kind: KindString},
		{Property: "nodeType", Key: form.FieldNodeType, Kind: KindString},
		{Property: "itemId", Key: form.FieldItemID, Kind: KindString},
		{Property: "quantity", Key: form.FieldQuantity, Kind: KindInt},
		{Property: "uom", Key: form.FieldUOM, Kind: KindString},
		{Property: "description", Key: form.FieldDescription, Kind: KindString},
		{Property: "qualityInfo", Key: form.FieldQualityInfo, Kind: KindString},
		{Property: "inventDimensions", Key: form.FieldInventDimensions, Kind: KindString},
		{Property: "lot", Key: form.FieldLot, Kind: KindString},
		{Property: "lotBatch", Key: form.FieldLotBatch, Kind: KindString},
		{Property: "referenceId", Key: form.FieldReferenceID, Kind: KindString},
		{Property: "actionDate", Key: form.FieldActionDate, Kind: KindString},
		{Property: "weight", Key: form.FieldWeight, Kind: KindInt},
		{Property: "location", Key: form.FieldLatitude, PairKey: form.FieldLongitude, Kind: KindLocation},
		{Property: "attachments", Key: form.FieldAttachments, Kind: KindString},
		{Property: "refBlocks", Key: form.FieldRefBlocks, Kind: KindString},
	}
}
