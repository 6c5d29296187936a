package forms

import (
	"testing"

	"Backend-Relific-Core/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(id, fieldType, label string) models.FieldDescriptor {
	return models.FieldDescriptor{
		ID:         id,
		Type:       fieldType,
		Properties: &models.FieldProperties{Label: label},
	}
}

func pagesOf(elements ...models.FieldDescriptor) []models.FormPage {
	return []models.FormPage{{ID: "p1", Elements: elements}}
}

func TestCompileKindMapping(t *testing.T) {
	shape := Compile(pagesOf(
		field("1", models.FieldInput, "Full Name"),
		field("2", models.FieldNumber, "Amount"),
		field("3", models.FieldCheckbox, "Agreed"),
		field("4", models.FieldMultiSelect, "Tags"),
		field("5", models.FieldCheckboxGroup, "Options"),
		field("6", models.FieldGeoTag, "Location"),
		field("7", models.FieldDatePicker, "Due Date"),
		field("8", models.FieldFileUpload, "Attachment"),
	), "intake")

	expect := map[string]FieldKind{
		"full_name":  KindString,
		"amount":     KindNumber,
		"agreed":     KindBool,
		"tags":       KindStringList,
		"options":    KindMixed,
		"location":   KindGeo,
		"due_date":   KindDate,
		"attachment": KindString,
	}
	for key, kind := range expect {
		f, ok := shape.FieldByKey(key)
		require.True(t, ok, "missing field %s", key)
		assert.Equal(t, kind, f.Kind, key)
	}
}

func TestCompileSystemFields(t *testing.T) {
	shape := Compile(pagesOf(field("1", models.FieldInput, "Name")), "intake")

	for _, key := range []string{"createdAt", "updatedAt", "createdBy", "isDraft", "workFlowSteps"} {
		_, ok := shape.FieldByKey(key)
		assert.True(t, ok, "system field %s missing", key)
	}
}

func TestCompileIsPure(t *testing.T) {
	pages := pagesOf(
		field("1", models.FieldInput, "Name"),
		field("2", models.FieldNumber, "Amount"),
	)

	a := Compile(pages, "intake")
	b := Compile(pages, "intake")

	assert.Equal(t, a.Fields, b.Fields)
	assert.Equal(t, a.Warnings, b.Warnings)
	assert.Equal(t, a.Collection, b.Collection)
}

func TestCompileDuplicateKeyFirstWins(t *testing.T) {
	first := field("1", models.FieldInput, "Amount")
	second := field("2", models.FieldNumber, "Amount")

	shape := Compile(pagesOf(first, second), "intake")

	f, ok := shape.FieldByKey("amount")
	require.True(t, ok)
	assert.Equal(t, KindString, f.Kind) // first occurrence wins
	require.Len(t, shape.Warnings, 1)
	assert.Contains(t, shape.Warnings[0], "amount")
}

func TestCompileLayoutFieldsStoreNothing(t *testing.T) {
	shape := Compile(pagesOf(
		field("1", models.FieldTitle, "Section Header"),
		field("2", models.FieldSpacer, "Gap"),
		field("3", models.FieldInput, "Name"),
	), "intake")

	_, ok := shape.FieldByKey("section_header")
	assert.False(t, ok)
	_, ok = shape.FieldByKey("gap")
	assert.False(t, ok)
	_, ok = shape.FieldByKey("name")
	assert.True(t, ok)
}

func TestCompileBoxChildrenFlattened(t *testing.T) {
	box := models.FieldDescriptor{
		ID:   "b1",
		Type: models.FieldBox,
		Properties: &models.FieldProperties{
			Label: "Address Block",
			Children: []models.FieldDescriptor{
				field("c1", models.FieldInput, "Street"),
				field("c2", models.FieldInput, "City"),
			},
		},
	}

	shape := Compile(pagesOf(box), "intake")

	// the box itself is layout; its children become fields
	_, ok := shape.FieldByKey("address_block")
	assert.False(t, ok)
	_, ok = shape.FieldByKey("street")
	assert.True(t, ok)
	_, ok = shape.FieldByKey("city")
	assert.True(t, ok)
}

func TestCompileSerialField(t *testing.T) {
	serial := models.FieldDescriptor{
		ID:   "s1",
		Type: models.FieldSerialNumber,
		Properties: &models.FieldProperties{
			Label: "Order No",
			SerialConfig: &models.SerialConfig{
				Prefix:   "ORD-",
				PadZeros: true,
				Length:   5,
			},
		},
	}

	shape := Compile(pagesOf(serial), "orders")

	require.NotNil(t, shape.Serial)
	assert.Equal(t, "order_no", shape.Serial.FieldKey)
	assert.Equal(t, "ORD-", shape.Serial.Prefix)
	assert.True(t, shape.Serial.PadZeros)
	assert.Equal(t, 5, shape.Serial.Length)

	f, ok := shape.FieldByKey("order_no")
	require.True(t, ok)
	assert.Equal(t, KindString, f.Kind)
}

func TestCompileHistoryField(t *testing.T) {
	history := models.FieldDescriptor{
		ID:   "h1",
		Type: models.FieldHistory,
		Properties: &models.FieldProperties{
			Label: "Visit Log",
		},
		Elements: []models.FieldDescriptor{
			field("e1", models.FieldInput, "Note"),
		},
	}

	shape := Compile(pagesOf(history), "patients")

	require.Len(t, shape.Histories, 1)
	h := shape.Histories[0]
	assert.Equal(t, "visit_log", h.FieldKey)
	assert.Equal(t, "patients_visit_log", h.Collection)
	assert.Len(t, h.Elements, 1)

	f, ok := shape.FieldByKey("visit_log")
	require.True(t, ok)
	assert.Equal(t, KindObjectIDList, f.Kind)
}

func TestCompileVirtualField(t *testing.T) {
	virtual := models.FieldDescriptor{
		ID:   "v1",
		Type: models.FieldVirtual,
		Properties: &models.FieldProperties{
			Label:   "Total",
			Formula: "price*qty",
		},
	}

	shape := Compile(pagesOf(virtual), "orders")

	require.Len(t, shape.Virtuals, 1)
	assert.Equal(t, "total", shape.Virtuals[0].FieldKey)
	assert.Equal(t, "price*qty", shape.Virtuals[0].Formula)

	f, ok := shape.FieldByKey("total")
	require.True(t, ok)
	assert.Equal(t, KindNumber, f.Kind)
}

func TestCompileLowercaseAliases(t *testing.T) {
	shape := Compile(pagesOf(
		field("1", "number", "Amount"),
		field("2", "checkbox", "Agreed"),
		field("3", "date", "When"),
	), "intake")

	f, _ := shape.FieldByKey("amount")
	assert.Equal(t, KindNumber, f.Kind)
	f, _ = shape.FieldByKey("agreed")
	assert.Equal(t, KindBool, f.Kind)
	f, _ = shape.FieldByKey("when")
	assert.Equal(t, KindDate, f.Kind)
}

func TestCompileRequiredFlag(t *testing.T) {
	el := field("1", models.FieldInput, "Name")
	el.Properties.Required = true

	shape := Compile(pagesOf(el), "intake")

	f, ok := shape.FieldByKey("name")
	require.True(t, ok)
	assert.True(t, f.Required)
}
