package forms

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidateDocument checks an assembled document against the compiled shape:
// required fields present, values coercible to the field kind. Pure; returns
// nil or a *ValidationError with one message per offending field.
func ValidateDocument(shape *RecordShape, doc bson.M) *ValidationError {
	fields := map[string]string{}

	for _, f := range shape.Fields {
		if isSystemKey(f.Key) {
			continue
		}

		v, ok := doc[f.Key]
		if !ok || isEmptyValue(v) {
			if f.Required {
				fields[f.Key] = fmt.Sprintf("%s is required", f.Key)
			}
			continue
		}

		if msg := checkKind(f, v); msg != "" {
			fields[f.Key] = msg
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func isSystemKey(key string) bool {
	switch key {
	case "createdAt", "updatedAt", "createdBy", "isDraft", "workFlowSteps":
		return true
	}
	return false
}

func isEmptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case primitive.A:
		return len(t) == 0
	}
	return false
}

func checkKind(f CompiledField, v interface{}) string {
	switch f.Kind {
	case KindNumber:
		if !isNumeric(v) {
			return fmt.Sprintf("%s must be a number", f.Key)
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("%s must be a boolean", f.Key)
		}
	case KindStringList:
		if !isStringList(v) {
			return fmt.Sprintf("%s must be a list of strings", f.Key)
		}
	case KindGeo:
		if !isGeoValue(v) {
			return fmt.Sprintf("%s must be an object with latitude and longitude", f.Key)
		}
	case KindDate:
		switch v.(type) {
		case string, time.Time, primitive.DateTime:
		default:
			return fmt.Sprintf("%s must be a date", f.Key)
		}
	case KindString:
		// scalars cast to string the way the store does; only structured
		// values are rejected
		switch v.(type) {
		case map[string]interface{}, bson.M, bson.D, []interface{}, primitive.A:
			return fmt.Sprintf("%s must be a string", f.Key)
		}
	case KindMixed, KindObjectID, KindObjectIDList, KindStepList:
		// mixed groups and reference fields accept whatever processing
		// produced
	}
	return ""
}

func isNumeric(v interface{}) bool {
	switch t := v.(type) {
	case float64, float32, int, int32, int64:
		return true
	case string:
		return leadingNumberRe.FindString(t) == t && t != ""
	}
	return false
}

func isStringList(v interface{}) bool {
	check := func(items []interface{}) bool {
		for _, it := range items {
			if _, ok := it.(string); !ok {
				return false
			}
		}
		return true
	}
	switch t := v.(type) {
	case []string:
		return true
	case []interface{}:
		return check(t)
	case primitive.A:
		return check(t)
	}
	return false
}

func isGeoValue(v interface{}) bool {
	var m map[string]interface{}
	switch t := v.(type) {
	case map[string]interface{}:
		m = t
	case bson.M:
		m = t
	default:
		return false
	}
	for _, k := range []string{"latitude", "longitude"} {
		if val, ok := m[k]; ok && val != nil && !isNumeric(val) {
			return false
		}
	}
	return true
}
