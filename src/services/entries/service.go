package entries

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/services/forms"
	"Backend-Relific-Core/src/services/users"
	"Backend-Relific-Core/src/services/workflows"
	"Backend-Relific-Core/src/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Submit processes one submission (create or update) and then evaluates the
// form's workflows against the written record. Workflow evaluation runs
// strictly after the parent write; its failures never undo the submission.
func Submit(ctx context.Context, db *mongo.Database, p forms.ProcessParams) (bson.M, error) {
	doc, form, err := forms.ProcessFormData(ctx, db, p)
	if err != nil {
		return nil, err
	}

	runWorkflows(ctx, db, p.Tenant, doc, p.Slug, form, p.ProjectName, p.EntryID == nil)

	return doc, nil
}

func runWorkflows(ctx context.Context, db *mongo.Database, tenant string, doc bson.M, slug string, form *models.Form, project string, isNew bool) {
	if len(form.Workflows) == 0 {
		return
	}

	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname = "http://localhost:3000"
	}

	engine := &workflows.Engine{
		Users:    users.Resolver{DB: db},
		Mail:     &workflows.Dispatcher{},
		Hostname: hostname,
		Tenant:   tenant,
	}

	collection := utils.CollectionName(slug, project)

	for i := range form.Workflows {
		triggered := engine.TriggerSingleWorkflow(ctx, doc, slug, form, i, project, isNew)
		if !triggered {
			continue
		}
		markTriggered(ctx, db.Collection(collection), doc, i)
	}
}

// markTriggered records the transition to triggered with a targeted
// array-index update.
func markTriggered(ctx context.Context, coll *mongo.Collection, doc bson.M, stepNo int) {
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok {
		return
	}

	_, err := coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			fmt.Sprintf("workFlowSteps.%d.triggerStatus", stepNo): true,
			fmt.Sprintf("workFlowSteps.%d.triggeredAt", stepNo):   time.Now(),
		}},
	)
	if err != nil {
		log.Println("⚠️ mark workflow triggered:", err)
	}
}

// GetEntry fetches one submission from the form's collection.
func GetEntry(ctx context.Context, db *mongo.Database, slug, project string, id primitive.ObjectID) (bson.M, error) {
	coll := db.Collection(utils.CollectionName(slug, project))

	var doc bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, forms.ErrEntryNotFound
		}
		return nil, err
	}
	return doc, nil
}

// ListEntries pages through a form's submissions, newest first by default.
func ListEntries(ctx context.Context, db *mongo.Database, slug, project string, params models.PaginationParams) ([]bson.M, int64, error) {
	coll := db.Collection(utils.CollectionName(slug, project))

	filter := bson.M{}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort := bson.D{}
	for k, v := range params.GetSortOrder() {
		sort = append(sort, bson.E{Key: k, Value: v})
	}

	cursor, err := coll.Find(ctx, filter, options.Find().
		SetSkip(params.GetSkip()).
		SetLimit(int64(params.Limit)).
		SetSort(sort))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// DeleteEntry removes one submission. History sub-records keep their
// documents; they are only reachable through the parent's reference list.
func DeleteEntry(ctx context.Context, db *mongo.Database, slug, project string, id primitive.ObjectID) error {
	coll := db.Collection(utils.CollectionName(slug, project))

	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return forms.ErrEntryNotFound
	}
	return nil
}

// HistoryEntries loads the sub-records referenced by a history field.
func HistoryEntries(ctx context.Context, db *mongo.Database, slug, project, fieldKey string, ids []primitive.ObjectID) ([]bson.M, error) {
	collection := utils.CollectionName(slug, project) + "_" + fieldKey

	cursor, err := db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
