package forms

import (
	"context"
	"encoding/json"
	"log"
	"time"

	DB "Backend-Relific-Core/src/database"
	"Backend-Relific-Core/src/models"
	"Backend-Relific-Core/src/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const formCacheTTL = 10 * time.Minute

func formCacheKey(tenant, slug string) string {
	return "form:" + tenant + ":" + slug
}

// GetFormBySlug loads a form definition, through the Redis cache when
// available.
func GetFormBySlug(ctx context.Context, db *mongo.Database, tenant, slug string) (*models.Form, error) {
	if DB.RedisClient != nil {
		if raw, err := DB.RedisClient.Get(ctx, formCacheKey(tenant, slug)).Result(); err == nil {
			var form models.Form
			if err := json.Unmarshal([]byte(raw), &form); err == nil {
				return &form, nil
			}
		}
	}

	var form models.Form
	err := db.Collection("forms").FindOne(ctx, bson.M{"slug": slug}).Decode(&form)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	if DB.RedisClient != nil {
		if raw, err := json.Marshal(form); err == nil {
			if err := DB.RedisClient.Set(ctx, formCacheKey(tenant, slug), raw, formCacheTTL).Err(); err != nil {
				log.Println("⚠️ form cache set failed:", err)
			}
		}
	}

	return &form, nil
}

// invalidateForm drops the cached definition and every compiled shape
// derived from the slug.
func invalidateForm(ctx context.Context, tenant, slug string) {
	if DB.RedisClient != nil {
		if err := DB.RedisClient.Del(ctx, formCacheKey(tenant, slug)).Err(); err != nil {
			log.Println("⚠️ form cache invalidate failed:", err)
		}
	}
	Shapes.Invalidate(tenant, utils.Sanitize(slug))
}

// CreateForm mints a unique slug from the title and stores the definition.
func CreateForm(ctx context.Context, db *mongo.Database, form *models.Form) error {
	form.ID = primitive.NewObjectID()
	form.Slug = utils.Sanitize(form.Title) + "-" + uuid.NewString()[:8]
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt
	if form.Status == "" {
		form.Status = "active"
	}

	_, err := db.Collection("forms").InsertOne(ctx, form)
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{Field: "slug"}
	}
	return err
}

// ListForms returns forms the user created or that were shared with them,
// newest first, with optional title search.
func ListForms(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, params models.PaginationParams) ([]models.Form, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"createdBy": userID},
			{"sharedWith.user": userID},
		},
	}
	if params.Search != "" {
		filter["title"] = utils.SearchRegex(params.Search)
	}

	coll := db.Collection("forms")

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

	var forms []models.Form
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}

// UpdateForm applies the given fields and invalidates every cache derived
// from the definition.
func UpdateForm(ctx context.Context, db *mongo.Database, tenant, slug string, set bson.M) (*models.Form, error) {
	delete(set, "slug")
	delete(set, "_id")
	set["updatedAt"] = time.Now()

	res := db.Collection("forms").FindOneAndUpdate(ctx,
		bson.M{"slug": slug},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var form models.Form
	if err := res.Decode(&form); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrFormNotFound
		}
		return nil, err
	}

	invalidateForm(ctx, tenant, slug)
	return &form, nil
}

func DeleteForm(ctx context.Context, db *mongo.Database, tenant, slug string) error {
	res, err := db.Collection("forms").DeleteOne(ctx, bson.M{"slug": slug})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrFormNotFound
	}
	invalidateForm(ctx, tenant, slug)
	return nil
}

// ToggleFavorite adds or removes the user from the form's favorite list.
func ToggleFavorite(ctx context.Context, db *mongo.Database, slug string, userID primitive.ObjectID) (bool, error) {
	coll := db.Collection("forms")

	var form models.Form
	if err := coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&form); err != nil {
		if err == mongo.ErrNoDocuments {
			return false, ErrFormNotFound
		}
		return false, err
	}

	isFavorite := false
	for _, id := range form.Favorite {
		if id == userID {
			isFavorite = true
			break
		}
	}

	op := "$addToSet"
	if isFavorite {
		op = "$pull"
	}
	_, err := coll.UpdateOne(ctx, bson.M{"slug": slug}, bson.M{op: bson.M{"favorite": userID}})
	return !isFavorite, err
}

// ShareForm replaces the sharing list.
func ShareForm(ctx context.Context, db *mongo.Database, tenant, slug string, shared []models.SharedWith) error {
	res, err := db.Collection("forms").UpdateOne(ctx,
		bson.M{"slug": slug},
		bson.M{"$set": bson.M{"sharedWith": shared, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrFormNotFound
	}
	invalidateForm(ctx, tenant, slug)
	return nil
}

func SetPublished(ctx context.Context, db *mongo.Database, tenant, slug string, published bool) error {
	res, err := db.Collection("forms").UpdateOne(ctx,
		bson.M{"slug": slug},
		bson.M{"$set": bson.M{"published": published, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrFormNotFound
	}
	invalidateForm(ctx, tenant, slug)
	return nil
}
