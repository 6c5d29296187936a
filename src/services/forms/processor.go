package forms

import (
	"context"
	"fmt"
	"log"
	"time"

	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProcessParams describes one submission against a form's compiled shape.
type ProcessParams struct {
	Tenant         string
	Slug           string
	ProjectName    string
	RawData        bson.M
	IsDraft        bool
	UserID         primitive.ObjectID
	EntryID        *primitive.ObjectID
	StepNo         int
	ApprovalStatus string
	Reason         string // rejection reason, when ApprovalStatus is Rejected
}

// ProcessFormData runs one submission end to end: form lookup, shape
// compilation, formula and history processing, validation, then the insert
// or targeted update. Returns the written document (with _id) and the form,
// so the caller can evaluate workflows against both.
//
// Ordering: history sub-records are inserted before the parent write;
// workflow evaluation is the caller's job and happens after.
func ProcessFormData(ctx context.Context, db *mongo.Database, p ProcessParams) (bson.M, *models.Form, error) {
	form, err := GetFormBySlug(ctx, db, p.Tenant, p.Slug)
	if err != nil {
		return nil, nil, err
	}

	collection := utils.CollectionName(p.Slug, p.ProjectName)

	shape := Shapes.Get(p.Tenant, collection, func() *RecordShape {
		s := Compile(form.FormSchema, collection)
		for _, w := range s.Warnings {
			log.Printf("⚠️ [%s/%s] schema: %s", p.Tenant, p.Slug, w)
		}
		return s
	})

	doc := bson.M{}
	for k, v := range p.RawData {
		doc[k] = v
	}

	applyVirtuals(shape.Virtuals, doc)

	if err := processHistoryFields(ctx, db, shape, doc, p.UserID, p.EntryID); err != nil {
		return nil, nil, err
	}

	// workFlowSteps is sized once, at creation; workflow edits never resize
	// existing records.
	if p.EntryID == nil && len(form.Workflows) > 0 {
		doc["workFlowSteps"] = models.NewWorkflowSteps(len(form.Workflows))
	}

	if verr := ValidateDocument(shape, doc); verr != nil {
		return nil, nil, verr
	}

	coll := db.Collection(collection)

	if p.EntryID != nil {
		written, err := updateEntry(ctx, coll, form, shape, doc, p)
		if err != nil {
			return nil, nil, err
		}
		return written, form, nil
	}

	written, err := insertEntry(ctx, db, coll, shape, doc, p)
	if err != nil {
		return nil, nil, err
	}
	return written, form, nil
}

func insertEntry(ctx context.Context, db *mongo.Database, coll *mongo.Collection, shape *RecordShape, doc bson.M, p ProcessParams) (bson.M, error) {
	now := time.Now()
	doc["createdAt"] = now
	doc["updatedAt"] = now
	doc["createdBy"] = p.UserID
	doc["isDraft"] = p.IsDraft

	// Serial numbers are minted just-in-time inside the write path, exactly
	// one counter increment per new record.
	if s := shape.Serial; s != nil && isEmptyValue(doc[s.FieldKey]) {
		seq, err := NextSequence(ctx, db, utils.Sanitize(p.Slug), s.FieldKey)
		if err != nil {
			return nil, err
		}
		doc[s.FieldKey] = FormatSerial(s, seq)
	}

	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &DuplicateKeyError{Field: duplicateKeyField(err)}
		}
		return nil, err
	}
	doc["_id"] = res.InsertedID

	log.Printf("[entry] inserted id=%v coll=%s tenant=%s", res.InsertedID, coll.Name(), p.Tenant)
	return doc, nil
}

// buildEntryUpdate assembles the update document for an existing entry.
// Immutable keys never enter the $set; approval decisions target one array
// index's sub-fields, never the whole document, so concurrent approvals on
// different steps do not clobber each other. Same-step writes remain
// last-write-wins.
func buildEntryUpdate(form *models.Form, doc bson.M, p ProcessParams) (bson.M, error) {
	set := bson.M{}
	for k, v := range doc {
		if k == "workFlowSteps" || k == "createdAt" || k == "createdBy" || k == "_id" {
			continue
		}
		set[k] = v
	}
	set["updatedAt"] = time.Now()
	set["isDraft"] = p.IsDraft

	update := bson.M{"$set": set}

	if p.ApprovalStatus != "" {
		if p.StepNo < 0 || p.StepNo >= len(form.Workflows) {
			return nil, ErrWorkflowStepOutOfRange
		}

		set[fmt.Sprintf("workFlowSteps.%d.approvalStatus", p.StepNo)] = p.ApprovalStatus
		switch p.ApprovalStatus {
		case models.ApprovalApproved:
			set[fmt.Sprintf("workFlowSteps.%d.approvedAt", p.StepNo)] = time.Now()
			set[fmt.Sprintf("workFlowSteps.%d.approvedBy", p.StepNo)] = p.UserID
		case models.ApprovalRejected:
			update["$push"] = bson.M{
				fmt.Sprintf("workFlowSteps.%d.rejections", p.StepNo): models.Rejection{
					RejectedBy: p.UserID,
					RejectedAt: time.Now(),
					Reason:     p.Reason,
					StepIndex:  p.StepNo,
				},
			}
		}
	}

	return update, nil
}

func updateEntry(ctx context.Context, coll *mongo.Collection, form *models.Form, shape *RecordShape, doc bson.M, p ProcessParams) (bson.M, error) {
	update, err := buildEntryUpdate(form, doc, p)
	if err != nil {
		return nil, err
	}

	res := coll.FindOneAndUpdate(ctx,
		bson.M{"_id": *p.EntryID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var written bson.M
	if err := res.Decode(&written); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEntryNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &DuplicateKeyError{Field: duplicateKeyField(err)}
		}
		return nil, err
	}

	return written, nil
}

// applyVirtuals computes formula fields in place. Only formulas containing
// arithmetic are active; a failed formula leaves 0, never an error.
func applyVirtuals(virtuals []VirtualSpec, doc bson.M) {
	for _, v := range virtuals {
		if v.Formula == "" || !HasArithmetic(v.Formula) {
			continue
		}
		doc[v.FieldKey] = Evaluate(v.Formula, doc)
	}
}

// processHistoryFields inserts repeatable sub-records into their auxiliary
// collections and replaces each history field's value with the generated
// reference ids, in insertion order.
func processHistoryFields(ctx context.Context, db *mongo.Database, shape *RecordShape, doc bson.M, userID primitive.ObjectID, entryID *primitive.ObjectID) error {
	for _, h := range shape.Histories {
		entries := toEntryList(doc[h.FieldKey])
		if entries == nil {
			continue
		}

		toInsert := stampHistoryEntries(entries, historyVirtuals(h.Elements), userID, entryID)

		if len(toInsert) == 0 {
			continue
		}

		res, err := db.Collection(h.Collection).InsertMany(ctx, toInsert)
		if err != nil {
			return fmt.Errorf("history %s: %w", h.FieldKey, err)
		}
		doc[h.FieldKey] = res.InsertedIDs
	}
	return nil
}

// stampHistoryEntries applies sub-record formulas and the system stamps to
// each incoming history entry, preserving submission order. The parent
// reference is only set on updates, when the parent id is already known.
func stampHistoryEntries(entries []bson.M, virtuals []VirtualSpec, userID primitive.ObjectID, parentID *primitive.ObjectID) []interface{} {
	toInsert := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		processed := bson.M{}
		for k, v := range entry {
			processed[k] = v
		}
		applyVirtuals(virtuals, processed)

		processed["createdAt"] = time.Now()
		processed["createdBy"] = userID
		if parentID != nil {
			processed["parentId"] = *parentID
		}
		toInsert = append(toInsert, processed)
	}
	return toInsert
}

func historyVirtuals(elements []models.FieldDescriptor) []VirtualSpec {
	var out []VirtualSpec
	for _, el := range elements {
		if (el.Type == models.FieldVirtual || el.Type == "virtual-formula") &&
			el.Properties != nil && el.Properties.Formula != "" {
			out = append(out, VirtualSpec{
				FieldKey: utils.Sanitize(el.Properties.Label),
				Formula:  el.Properties.Formula,
			})
		}
	}
	return out
}

// toEntryList normalizes an incoming history value into a list of maps.
// Non-list values (already-stored reference ids on update) pass through
// untouched by returning nil.
func toEntryList(v interface{}) []bson.M {
	var items []interface{}
	switch t := v.(type) {
	case []interface{}:
		items = t
	case primitive.A:
		items = t
	default:
		return nil
	}

	out := make([]bson.M, 0, len(items))
	for _, it := range items {
		switch m := it.(type) {
		case map[string]interface{}:
			out = append(out, bson.M(m))
		case bson.M:
			out = append(out, m)
		default:
			return nil
		}
	}
	return out
}

// duplicateKeyField pulls the offending field name out of a Mongo duplicate
// key error message, best effort.
func duplicateKeyField(err error) string {
	var we mongo.WriteException
	msg := err.Error()
	if e, ok := err.(mongo.WriteException); ok {
		we = e
		for _, writeErr := range we.WriteErrors {
			msg = writeErr.Message
			break
		}
	}
	// messages look like: ... index: slug_1 dup key: { slug: "intake" }
	const marker = "index: "
	for i := 0; i+len(marker) < len(msg); i++ {
		if msg[i:i+len(marker)] == marker {
			rest := msg[i+len(marker):]
			for j := 0; j < len(rest); j++ {
				if rest[j] == ' ' {
					rest = rest[:j]
					break
				}
			}
			// strip the _1 / _-1 index suffix
			for j := len(rest) - 1; j > 0; j-- {
				if rest[j] == '_' {
					return rest[:j]
				}
			}
			return rest
		}
	}
	return ""
}
