package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field types a form designer can place on a page. Older forms still carry
// the lowercase aliases, so the compiler accepts both spellings.
const (
	FieldInput         = "Input"
	FieldTextArea      = "TextArea"
	FieldNumber        = "Number"
	FieldEmail         = "Email"
	FieldSelect        = "Select"
	FieldMultiSelect   = "MultiSelect"
	FieldRadioGroup    = "RadioGroup"
	FieldCheckbox      = "Checkbox"
	FieldCheckboxGroup = "CheckboxGroup"
	FieldDatePicker    = "DatePicker"
	FieldGeoTag        = "GeoTag"
	FieldFileUpload    = "FileUpload"
	FieldSerialNumber  = "SerialNumber"
	FieldHistory       = "History"
	FieldVirtual       = "Virtual"
	FieldTitle         = "Title"
	FieldSpacer        = "Spacer"
	FieldBox           = "Box"
)

// SerialConfig controls how a minted sequence number is rendered.
type SerialConfig struct {
	Prefix   string `bson:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix   string `bson:"suffix,omitempty" json:"suffix,omitempty"`
	PadZeros bool   `bson:"padZeros,omitempty" json:"padZeros,omitempty"`
	Length   int    `bson:"length,omitempty" json:"length,omitempty"`
}

type FieldProperties struct {
	Label         string            `bson:"label,omitempty" json:"label,omitempty"`
	Required      bool              `bson:"required,omitempty" json:"required,omitempty"`
	DefaultValue  interface{}       `bson:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	Formula       string            `bson:"formula,omitempty" json:"formula,omitempty"`
	SerialConfig  *SerialConfig     `bson:"serialConfig,omitempty" json:"serialConfig,omitempty"`
	OptionsSource string            `bson:"optionsSource,omitempty" json:"optionsSource,omitempty"`
	Options       []string          `bson:"options,omitempty" json:"options,omitempty"`
	Children      []FieldDescriptor `bson:"children,omitempty" json:"children,omitempty"` // Box / group nesting
}

// FieldDescriptor is one designed element. History fields carry their
// sub-record schema in Elements.
type FieldDescriptor struct {
	ID         string            `bson:"id" json:"id"`
	Type       string            `bson:"type" json:"type"`
	Required   bool              `bson:"required,omitempty" json:"required,omitempty"`
	Properties *FieldProperties  `bson:"properties,omitempty" json:"properties,omitempty"`
	Elements   []FieldDescriptor `bson:"elements,omitempty" json:"elements,omitempty"`
}

type FormPage struct {
	ID       string            `bson:"id,omitempty" json:"id,omitempty"`
	Title    string            `bson:"title,omitempty" json:"title,omitempty"`
	Elements []FieldDescriptor `bson:"elements,omitempty" json:"elements,omitempty"`
}

// Condition is one trigger clause of a workflow or step.
type Condition struct {
	Field     string      `bson:"field" json:"field"`
	Operation string      `bson:"operation" json:"operation"` // = != > < >= <=
	Value     interface{} `bson:"value" json:"value"`
}

type NotifyChannels struct {
	Email    bool `bson:"email" json:"email"`
	Whatsapp bool `bson:"whatsapp" json:"whatsapp"`
}

type Step struct {
	Action         string               `bson:"action" json:"action"` // email | whatsapp | notification
	Users          []primitive.ObjectID `bson:"users,omitempty" json:"users,omitempty"`
	Message        string               `bson:"message" json:"message"`
	NotifyCreator  bool                 `bson:"notifyCreator,omitempty" json:"notifyCreator,omitempty"`
	NotifyManager  bool                 `bson:"notifyManager,omitempty" json:"notifyManager,omitempty"`
	NotifyChannels NotifyChannels       `bson:"notifyChannels,omitempty" json:"notifyChannels,omitempty"`
	Triggers       []Condition          `bson:"triggers,omitempty" json:"triggers,omitempty"`
	CreatorMessage string               `bson:"creatorMessage,omitempty" json:"creatorMessage,omitempty"`
	SelectedFields []string             `bson:"selectedFields,omitempty" json:"selectedFields,omitempty"`
}

type Workflow struct {
	Name          string      `bson:"name" json:"name"`
	Triggers      []Condition `bson:"triggers,omitempty" json:"triggers,omitempty"`
	LogicOperator string      `bson:"logicOperator,omitempty" json:"logicOperator,omitempty"` // AND | OR
	Steps         []Step      `bson:"steps,omitempty" json:"steps,omitempty"`
}

type LayoutSelection struct {
	Layout string        `bson:"layout" json:"layout"` // vertical | horizontal
	Fields []interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

type SharedWith struct {
	User      primitive.ObjectID `bson:"user" json:"user"`
	CanCreate bool               `bson:"canCreate" json:"canCreate"`
	CanEdit   bool               `bson:"canEdit" json:"canEdit"`
}

// Form is the user-authored schema every submission is processed against.
type Form struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Slug             string               `bson:"slug" json:"slug"`
	Title            string               `bson:"title" json:"title"`
	FormSchema       []FormPage           `bson:"formSchema,omitempty" json:"formSchema,omitempty"`
	ColumnsPerPage   bson.M               `bson:"columnsPerPage,omitempty" json:"columnsPerPage,omitempty"`
	Status           string               `bson:"status,omitempty" json:"status,omitempty"`
	Favorite         []primitive.ObjectID `bson:"favorite,omitempty" json:"favorite,omitempty"`
	SharedWith       []SharedWith         `bson:"sharedWith,omitempty" json:"sharedWith,omitempty"`
	LayoutSelections []LayoutSelection    `bson:"layoutSelections,omitempty" json:"layoutSelections,omitempty"`
	Published        bool                 `bson:"published" json:"published"`
	IsDraft          bool                 `bson:"isDraft" json:"isDraft"`
	Workflows        []Workflow           `bson:"workflows,omitempty" json:"workflows,omitempty"`
	Projects         []primitive.ObjectID `bson:"projects,omitempty" json:"projects,omitempty"`
	CreatedBy        primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt        time.Time            `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt        time.Time            `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
