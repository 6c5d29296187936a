package forms

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NextSequence atomically increments and reads the counter for
// (form, field). One findOneAndUpdate with $inc — never a read-then-write
// pair — so concurrent submissions can not mint duplicate serials.
func NextSequence(ctx context.Context, db *mongo.Database, slug, fieldKey string) (int64, error) {
	coll := db.Collection(slug + "_counters")

	res := coll.FindOneAndUpdate(ctx,
		bson.M{"_id": fieldKey},
		bson.M{"$inc": bson.M{"sequence_value": 1}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	)

	var counter struct {
		SequenceValue int64 `bson:"sequence_value"`
	}
	if err := res.Decode(&counter); err != nil {
		return 0, fmt.Errorf("sequence %s/%s: %w", slug, fieldKey, err)
	}
	return counter.SequenceValue, nil
}

// FormatSerial renders a raw sequence value. Formatting lives with the
// caller so stored counter values stay numeric and comparable.
func FormatSerial(spec *SerialSpec, n int64) string {
	s := strconv.FormatInt(n, 10)
	if spec.PadZeros && spec.Length > len(s) {
		s = strings.Repeat("0", spec.Length-len(s)) + s
	}
	return spec.Prefix + s + spec.Suffix
}
