package form

// Field names bound by the asset form.
const (
	FieldSerialNumber     = "serialNumber"
	FieldType             = "type"
	FieldSubtype          = "subtype"
	FieldSupplier         = "supplier"
	FieldRanch            = "ranch"
	FieldCOO              = "coo"
	FieldNodeType         = "nodeType"
	FieldItemID           = "itemId"
	FieldQuantity         = "quantity"
	FieldUOM              = "uom"
	FieldDescription      = "description"
	FieldQualityInfo      = "qualityInfo"
	FieldInventDimensions = "inventDimensions"
	FieldLot              = "lot"
	FieldLotBatch         = "lotBatch"
	FieldReferenceID      = "referenceId"
	FieldActionDate       = "actionDate"
	FieldWeight           = "weight"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldAttachments      = "attachments"
	FieldRefBlocks        = "refBlocks"
)

// InputKind selects the control a renderer draws.
type InputKind string

const (
	InputText     InputKind = "text"
	InputNumber   InputKind = "number"
	InputDate     InputKind = "date"
	InputTextArea InputKind = "textarea"
)

// Field describes one bound input.
type Field struct {
	Name     string
	Label    string
	Kind     InputKind
	Required bool
	Step     string
	Min      string
	Max      string
	Help     string
}

// Row groups fields drawn side by side.
type Row struct {
	Fields []Field
}

// Section is a titled block of rows.
type Section struct {
	Title string
	Rows  []Row
}

// Layout is the full form definition in drawing order.
type Layout struct {
	Legend   string
	Sections []Section
}

// Fields flattens the layout in drawing order.
func (l Layout) Fields() []Field {
	var out []Field
	for _, section := range l.Sections {
		for _, row := range section.Rows {
			out = append(out, row.Fields...)
		}
	}
	return out
}

// Field returns the named field definition.
func (l Layout) Field(name string) (Field, bool) {
	for _, field := range l.Fields() {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// WithOverrides returns a copy of the layout with the legend, labels and help
// text replaced where the maps name a field.
func (l Layout) WithOverrides(legend string, labels, help map[string]string) Layout {
	out := Layout{Legend: l.Legend, Sections: make([]Section, len(l.Sections))}
	if legend != "" {
		out.Legend = legend
	}
	for si, section := range l.Sections {
		rows := make([]Row, len(section.Rows))
		for ri, row := range section.Rows {
			fields := make([]Field, len(row.Fields))
			for fi, field := range row.Fields {
				if label, ok := labels[field.Name]; ok && label != "" {
					field.Label = label
				}
				if text, ok := help[field.Name]; ok {
					field.Help = text
				}
				fields[fi] = field
			}
			rows[ri] = Row{Fields: fields}
		}
		out.Sections[si] = Section{Title: section.Title, Rows: rows}
	}
	return out
}

// DefaultLayout is the asset tracking form.
func DefaultLayout() Layout {
	return Layout{
		Legend: "Track New Asset",
		Sections: []Section{
			{
				Rows: []Row{
					{Fields: []Field{{Name: FieldSerialNumber, Label: "Tracking Number", Kind: InputText, Required: true}}},
					{Fields: []Field{
						{Name: FieldType, Label: "Type", Kind: InputText, Required: true},
						{Name: FieldSubtype, Label: "Subtype", Kind: InputText},
					}},
					{Fields: []Field{{Name: FieldSupplier, Label: "Supplier", Kind: InputText, Required: true}}},
					{Fields: []Field{{Name: FieldWeight, Label: "Weight (kg)", Kind: InputNumber, Step: "any", Min: "0"}}},
					{Fields: []Field{
						{Name: FieldLatitude, Label: "Latitude", Kind: InputNumber, Step: "any", Min: "-90", Max: "90"},
						{Name: FieldLongitude, Label: "Longitude", Kind: InputNumber, Step: "any", Min: "-180", Max: "180"},
					}},
				},
			},
			{
				Title: "Additional Details",
				Rows: []Row{
					{Fields: []Field{
						{Name: FieldRanch, Label: "Ranch", Kind: InputText},
						{Name: FieldCOO, Label: "Country of Origin", Kind: InputText},
						{Name: FieldNodeType, Label: "Node Type", Kind: InputText},
					}},
					{Fields: []Field{
						{Name: FieldItemID, Label: "Item ID", Kind: InputText},
						{Name: FieldQuantity, Label: "Quantity", Kind: InputNumber, Step: "1", Min: "0"},
						{Name: FieldUOM, Label: "Unit of Measure", Kind: InputText},
					}},
					{Fields: []Field{{Name: FieldDescription, Label: "Description", Kind: InputTextArea}}},
					{Fields: []Field{{Name: FieldQualityInfo, Label: "Quality Info", Kind: InputTextArea}}},
					{Fields: []Field{
						{Name: FieldInventDimensions, Label: "Inventory Dimensions", Kind: InputText},
						{Name: FieldLot, Label: "Lot", Kind: InputText},
						{Name: FieldLotBatch, Label: "Lot Batch", Kind: InputText},
					}},
					{Fields: []Field{
						{Name: FieldReferenceID, Label: "Reference ID", Kind: InputText},
						{Name: FieldActionDate, Label: "Action Date", Kind: InputDate},
					}},
					{Fields: []Field{
						{Name: FieldAttachments, Label: "Attachments", Kind: InputText},
						{Name: FieldRefBlocks, Label: "Referenced Blocks", Kind: InputText},
					}},
				},
			},
		},
	}
}

// PropertyOption is an authorizable property offered to reporters.
type PropertyOption struct {
	Value string
	Label string
}

// AuthorizableProperties lists the properties a reporter can be granted.
func AuthorizableProperties() []PropertyOption {
	return []PropertyOption{
		{Value: "weight", Label: "Weight"},
		{Value: "location", Label: "Location"},
		{Value: "temperature", Label: "Temperature"},
		{Value: "shock", Label: "Shock"},
		{Value: "supplier", Label: "Supplier"},
	}
}
