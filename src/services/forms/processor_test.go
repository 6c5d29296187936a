package forms

import (
	"fmt"
	"testing"

	"Backend-Relific-Core/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func twoStepForm() *models.Form {
	return &models.Form{Workflows: []models.Workflow{{Name: "review"}, {Name: "signoff"}}}
}

func TestBuildEntryUpdatePlain(t *testing.T) {
	doc := bson.M{
		"name":          "Somchai",
		"amount":        250.0,
		"_id":           primitive.NewObjectID(),
		"createdAt":     "frozen",
		"createdBy":     primitive.NewObjectID(),
		"workFlowSteps": models.NewWorkflowSteps(2),
	}

	update, err := buildEntryUpdate(twoStepForm(), doc, ProcessParams{IsDraft: true})
	require.NoError(t, err)

	set, ok := update["$set"].(bson.M)
	require.True(t, ok)

	assert.Equal(t, "Somchai", set["name"])
	assert.Equal(t, 250.0, set["amount"])
	assert.Equal(t, true, set["isDraft"])
	assert.Contains(t, set, "updatedAt")

	// immutable keys never enter the $set
	for _, k := range []string{"_id", "createdAt", "createdBy", "workFlowSteps"} {
		assert.NotContains(t, set, k)
	}
	assert.NotContains(t, update, "$push")
}

func TestBuildEntryUpdateApproval(t *testing.T) {
	approver := primitive.NewObjectID()
	p := ProcessParams{
		UserID:         approver,
		StepNo:         1,
		ApprovalStatus: models.ApprovalApproved,
	}

	update, err := buildEntryUpdate(twoStepForm(), bson.M{"name": "x"}, p)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.Equal(t, models.ApprovalApproved, set["workFlowSteps.1.approvalStatus"])
	assert.Contains(t, set, "workFlowSteps.1.approvedAt")
	assert.Equal(t, approver, set["workFlowSteps.1.approvedBy"])

	// only the targeted index is touched
	for key := range set {
		assert.NotContains(t, key, "workFlowSteps.0.")
	}
	assert.NotContains(t, update, "$push")
}

func TestBuildEntryUpdateRejection(t *testing.T) {
	rejector := primitive.NewObjectID()
	p := ProcessParams{
		UserID:         rejector,
		StepNo:         0,
		ApprovalStatus: models.ApprovalRejected,
		Reason:         "missing receipt",
	}

	update, err := buildEntryUpdate(twoStepForm(), bson.M{}, p)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.Equal(t, models.ApprovalRejected, set["workFlowSteps.0.approvalStatus"])
	assert.NotContains(t, set, "workFlowSteps.0.approvedAt")

	push, ok := update["$push"].(bson.M)
	require.True(t, ok)
	rejection, ok := push["workFlowSteps.0.rejections"].(models.Rejection)
	require.True(t, ok)
	assert.Equal(t, rejector, rejection.RejectedBy)
	assert.Equal(t, "missing receipt", rejection.Reason)
	assert.Equal(t, 0, rejection.StepIndex)
	assert.False(t, rejection.RejectedAt.IsZero())
}

func TestBuildEntryUpdateStepOutOfRange(t *testing.T) {
	for _, stepNo := range []int{-1, 2, 99} {
		p := ProcessParams{StepNo: stepNo, ApprovalStatus: models.ApprovalApproved}
		_, err := buildEntryUpdate(twoStepForm(), bson.M{}, p)
		assert.ErrorIs(t, err, ErrWorkflowStepOutOfRange, "stepNo %d", stepNo)
	}

	// bounds only apply to approval writes
	_, err := buildEntryUpdate(twoStepForm(), bson.M{}, ProcessParams{StepNo: 99})
	assert.NoError(t, err)
}

func TestStampHistoryEntries(t *testing.T) {
	userID := primitive.NewObjectID()

	entries := make([]bson.M, 5)
	for i := range entries {
		entries[i] = bson.M{"note": fmt.Sprintf("visit %d", i)}
	}

	stamped := stampHistoryEntries(entries, nil, userID, nil)
	require.Len(t, stamped, 5)

	// submission order is preserved and every entry carries the stamps
	for i, it := range stamped {
		m, ok := it.(bson.M)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("visit %d", i), m["note"])
		assert.Equal(t, userID, m["createdBy"])
		assert.Contains(t, m, "createdAt")
		assert.NotContains(t, m, "parentId")
	}

	// originals stay untouched
	assert.NotContains(t, entries[0], "createdBy")
}

func TestStampHistoryEntriesParentReference(t *testing.T) {
	parent := primitive.NewObjectID()

	stamped := stampHistoryEntries([]bson.M{{"note": "a"}}, nil, primitive.NewObjectID(), &parent)
	require.Len(t, stamped, 1)
	assert.Equal(t, parent, stamped[0].(bson.M)["parentId"])
}

func TestStampHistoryEntriesVirtuals(t *testing.T) {
	virtuals := []VirtualSpec{{FieldKey: "total", Formula: "price*qty"}}

	stamped := stampHistoryEntries([]bson.M{
		{"price": 3.0, "qty": 4.0},
		{"price": 2.0, "qty": 5.0},
	}, virtuals, primitive.NewObjectID(), nil)

	require.Len(t, stamped, 2)
	assert.InDelta(t, 12, stamped[0].(bson.M)["total"], 1e-9)
	assert.InDelta(t, 10, stamped[1].(bson.M)["total"], 1e-9)
}

func TestToEntryList(t *testing.T) {
	t.Run("ListOfMaps", func(t *testing.T) {
		got := toEntryList([]interface{}{
			map[string]interface{}{"a": 1},
			bson.M{"b": 2},
		})
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0]["a"])
		assert.Equal(t, 2, got[1]["b"])
	})

	t.Run("DecodedArray", func(t *testing.T) {
		got := toEntryList(primitive.A{bson.M{"a": 1}})
		require.Len(t, got, 1)
	})

	t.Run("ReferenceIDsPassThrough", func(t *testing.T) {
		// an update resending stored reference ids is not a new batch
		assert.Nil(t, toEntryList(primitive.A{primitive.NewObjectID()}))
		assert.Nil(t, toEntryList("not a list"))
		assert.Nil(t, toEntryList(nil))
	})
}

func TestApplyVirtuals(t *testing.T) {
	doc := bson.M{"price": 3.0, "qty": 4.0, "label": "keep"}

	applyVirtuals([]VirtualSpec{
		{FieldKey: "total", Formula: "price*qty"},
		{FieldKey: "noop", Formula: "just text"}, // no arithmetic, left inactive
		{FieldKey: "empty", Formula: ""},
	}, doc)

	assert.InDelta(t, 12, doc["total"], 1e-9)
	assert.NotContains(t, doc, "noop")
	assert.NotContains(t, doc, "empty")
	assert.Equal(t, "keep", doc["label"])
}
