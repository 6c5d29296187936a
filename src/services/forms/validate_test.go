package forms

import (
	"testing"
	"time"

	"Backend-Relific-Core/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intakeShape() *RecordShape {
	el := func(id, fieldType, label string, required bool) models.FieldDescriptor {
		return models.FieldDescriptor{
			ID:   id,
			Type: fieldType,
			Properties: &models.FieldProperties{
				Label:    label,
				Required: required,
			},
		}
	}
	return Compile(pagesOf(
		el("1", models.FieldInput, "Name", true),
		el("2", models.FieldNumber, "Amount", false),
		el("3", models.FieldCheckbox, "Agreed", false),
		el("4", models.FieldMultiSelect, "Tags", false),
		el("5", models.FieldGeoTag, "Location", false),
		el("6", models.FieldDatePicker, "Due Date", false),
	), "intake")
}

func TestValidateDocumentOK(t *testing.T) {
	doc := bson.M{
		"name":     "Somchai",
		"amount":   12.5,
		"agreed":   true,
		"tags":     []interface{}{"a", "b"},
		"location": bson.M{"latitude": 13.75, "longitude": 100.5},
		"due_date": "2026-08-28",
	}
	assert.Nil(t, ValidateDocument(intakeShape(), doc))
}

func TestValidateDocumentRequiredMissing(t *testing.T) {
	err := ValidateDocument(intakeShape(), bson.M{"amount": 1})
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "name")
	assert.Contains(t, err.Fields["name"], "required")
}

func TestValidateDocumentEmptyCountsAsMissing(t *testing.T) {
	for _, v := range []interface{}{nil, "", []interface{}{}, primitive.A{}} {
		err := ValidateDocument(intakeShape(), bson.M{"name": v})
		require.NotNil(t, err, "value %v should count as missing", v)
		assert.Contains(t, err.Fields, "name")
	}
}

func TestValidateDocumentOptionalMissingIsFine(t *testing.T) {
	assert.Nil(t, ValidateDocument(intakeShape(), bson.M{"name": "x"}))
}

func TestValidateDocumentKindErrors(t *testing.T) {
	cases := []struct {
		field string
		value interface{}
	}{
		{"amount", "not a number"},
		{"agreed", "yes"},
		{"tags", []interface{}{"a", 2}},
		{"location", "13.75,100.5"},
		{"due_date", 42},
		{"name", bson.M{"nested": true}},
	}

	for _, tc := range cases {
		doc := bson.M{"name": "x"}
		doc[tc.field] = tc.value
		err := ValidateDocument(intakeShape(), doc)
		require.NotNil(t, err, "field %s value %v", tc.field, tc.value)
		assert.Contains(t, err.Fields, tc.field)
	}
}

func TestValidateDocumentNumericStrings(t *testing.T) {
	// whole-string numerics pass; a numeric prefix does not
	assert.Nil(t, ValidateDocument(intakeShape(), bson.M{"name": "x", "amount": "12.5"}))

	err := ValidateDocument(intakeShape(), bson.M{"name": "x", "amount": "12kg"})
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "amount")
}

func TestValidateDocumentDateForms(t *testing.T) {
	shape := intakeShape()
	assert.Nil(t, ValidateDocument(shape, bson.M{"name": "x", "due_date": time.Now()}))
	assert.Nil(t, ValidateDocument(shape, bson.M{"name": "x", "due_date": primitive.NewDateTimeFromTime(time.Now())}))
}

func TestValidateDocumentGeoPartial(t *testing.T) {
	shape := intakeShape()

	// missing coordinates are tolerated, non-numeric ones are not
	assert.Nil(t, ValidateDocument(shape, bson.M{"name": "x", "location": bson.M{"latitude": 13.75}}))

	err := ValidateDocument(shape, bson.M{"name": "x", "location": bson.M{"latitude": "north"}})
	require.NotNil(t, err)
	assert.Contains(t, err.Fields, "location")
}

func TestValidateDocumentSystemFieldsIgnored(t *testing.T) {
	doc := bson.M{
		"name":          "x",
		"workFlowSteps": "garbage",
		"isDraft":       "also garbage",
	}
	assert.Nil(t, ValidateDocument(intakeShape(), doc))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"b": "b is required",
		"a": "a must be a number",
	}}
	// deterministic, sorted by field key
	assert.Equal(t, "validation failed: a, b", err.Error())
}
