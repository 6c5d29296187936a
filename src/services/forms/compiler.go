package forms

import (
	"fmt"

	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/utils"
)

// FieldKind is the storage value kind a designed field compiles to.
type FieldKind string

const (
	KindString       FieldKind = "string"
	KindNumber       FieldKind = "number"
	KindBool         FieldKind = "boolean"
	KindDate         FieldKind = "date"
	KindStringList   FieldKind = "stringList"
	KindMixed        FieldKind = "mixed"
	KindGeo          FieldKind = "geo"
	KindObjectID     FieldKind = "objectId"
	KindObjectIDList FieldKind = "objectIdList"
	KindStepList     FieldKind = "workflowSteps"
)

// CompiledField is the metadata validation and serialization consult. The
// record itself stays a generic key→value document.
type CompiledField struct {
	Key      string
	Kind     FieldKind
	Required bool
	Default  interface{}
}

// SerialSpec describes a serial-number field: the counter key plus how the
// minted value is rendered.
type SerialSpec struct {
	FieldKey string
	Prefix   string
	Suffix   string
	PadZeros bool
	Length   int
}

// HistorySpec describes a repeatable sub-record field and the auxiliary
// collection its entries live in.
type HistorySpec struct {
	FieldKey   string
	Collection string
	Elements   []models.FieldDescriptor
}

// VirtualSpec is a computed field and its formula.
type VirtualSpec struct {
	FieldKey string
	Formula  string
}

// RecordShape is the runtime shape of one entry collection: ordered field
// metadata plus the derived behaviors (serial, history, virtuals).
type RecordShape struct {
	Collection string
	Fields     []CompiledField
	index      map[string]int
	Serial     *SerialSpec
	Histories  []HistorySpec
	Virtuals   []VirtualSpec
	Warnings   []string
}

// FieldByKey returns the compiled field for a derived key, if any.
func (s *RecordShape) FieldByKey(key string) (CompiledField, bool) {
	i, ok := s.index[key]
	if !ok {
		return CompiledField{}, false
	}
	return s.Fields[i], true
}

// System fields every entry document carries.
var systemFields = []CompiledField{
	{Key: "createdAt", Kind: KindDate},
	{Key: "updatedAt", Kind: KindDate},
	{Key: "createdBy", Kind: KindObjectID},
	{Key: "isDraft", Kind: KindBool},
	{Key: "workFlowSteps", Kind: KindStepList},
}

// Compile turns the paged field list into a record shape bound to the given
// collection. Pure and repeatable: compiling the same pages twice yields an
// identical shape and never errors on re-registration. Duplicate derived
// keys keep the first occurrence; later ones are skipped with a warning.
func Compile(pages []models.FormPage, collection string) *RecordShape {
	shape := &RecordShape{
		Collection: collection,
		index:      map[string]int{},
	}

	for _, el := range flattenPages(pages) {
		if el.Properties == nil {
			continue
		}
		label := el.Properties.Label
		if label == "" {
			continue
		}

		switch el.Type {
		case models.FieldTitle, models.FieldSpacer, models.FieldBox,
			"title", "spacer", "box":
			// layout only, stores no value
			continue
		}

		key := utils.Sanitize(label)
		if key == "" {
			continue
		}
		if _, seen := shape.index[key]; seen {
			shape.Warnings = append(shape.Warnings,
				fmt.Sprintf("duplicate field key %q (label %q) skipped, first occurrence wins", key, label))
			continue
		}

		switch el.Type {
		case models.FieldSerialNumber, "serial-number":
			spec := &SerialSpec{FieldKey: key}
			if cfg := el.Properties.SerialConfig; cfg != nil {
				spec.Prefix = cfg.Prefix
				spec.Suffix = cfg.Suffix
				spec.PadZeros = cfg.PadZeros
				spec.Length = cfg.Length
			}
			shape.Serial = spec
			shape.addField(CompiledField{Key: key, Kind: KindString, Default: ""})

		case models.FieldHistory, "history":
			shape.Histories = append(shape.Histories, HistorySpec{
				FieldKey:   key,
				Collection: collection + "_" + key,
				Elements:   el.Elements,
			})
			shape.addField(CompiledField{Key: key, Kind: KindObjectIDList})

		case models.FieldVirtual, "virtual-formula":
			shape.Virtuals = append(shape.Virtuals, VirtualSpec{
				FieldKey: key,
				Formula:  el.Properties.Formula,
			})
			shape.addField(CompiledField{Key: key, Kind: KindNumber})

		default:
			shape.addField(CompiledField{
				Key:      key,
				Kind:     kindOf(el.Type),
				Required: el.Required || el.Properties.Required,
				Default:  el.Properties.DefaultValue,
			})
		}
	}

	for _, f := range systemFields {
		shape.addField(f)
	}

	return shape
}

func (s *RecordShape) addField(f CompiledField) {
	s.index[f.Key] = len(s.Fields)
	s.Fields = append(s.Fields, f)
}

// flattenPages collapses the paged layout into one ordered element list,
// expanding Box containers in place.
func flattenPages(pages []models.FormPage) []models.FieldDescriptor {
	var out []models.FieldDescriptor
	for _, page := range pages {
		out = append(out, flattenElements(page.Elements)...)
	}
	return out
}

func flattenElements(elements []models.FieldDescriptor) []models.FieldDescriptor {
	var out []models.FieldDescriptor
	for _, el := range elements {
		out = append(out, el)
		if (el.Type == models.FieldBox || el.Type == "box") && el.Properties != nil {
			out = append(out, flattenElements(el.Properties.Children)...)
		}
	}
	return out
}

func kindOf(fieldType string) FieldKind {
	switch fieldType {
	case models.FieldNumber, "number":
		return KindNumber
	case models.FieldCheckbox, "checkbox":
		return KindBool
	case models.FieldMultiSelect, "multi-select":
		return KindStringList
	case models.FieldCheckboxGroup:
		return KindMixed
	case models.FieldGeoTag, "geoTag", "geo-tag":
		return KindGeo
	case models.FieldDatePicker, "date":
		return KindDate
	default:
		// text, textarea, email, select, radio, file uploads and anything
		// unknown store plain strings
		return KindString
	}
}
