package logstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

const (
	mongoCollection = "request_logs"
	mongoCounters   = "counters"
)

// mongoField maps a column to the document field used for sorting and search.
func mongoField(column string) string {
	switch column {
	case requestlog.ColumnID:
		return "_id"
	case requestlog.ColumnStatusCode:
		return "status_code"
	default:
		return column
	}
}

func mongoSearchField(column string) string {
	switch column {
	case requestlog.ColumnCapturedAt:
		return "captured_at_text"
	case requestlog.ColumnStatusCode:
		return "status_code_text"
	default:
		return column
	}
}

// Mongo stores records in a MongoDB collection. Integer IDs come from a
// counters collection so the admin API can address records the same way for
// every backend.
type Mongo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		coll:     db.Collection(mongoCollection),
		counters: db.Collection(mongoCounters),
	}
}

// EnsureIndexes creates the indexes used for default ordering and retention.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "captured_at", Value: -1}}},
		{Keys: bson.D{{Key: "client_ip", Value: 1}}},
	})
	return err
}

// nextIDs reserves n consecutive ids and returns the first one.
func (m *Mongo) nextIDs(ctx context.Context, n int64) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: mongoCollection}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: n}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq - n + 1, nil
}

func (m *Mongo) Insert(ctx context.Context, rec *requestlog.Record) error {
	id, err := m.nextIDs(ctx, 1)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	doc := toDocument(rec)
	doc.ID = id
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return errors.Join(ErrInsert, err)
	}
	rec.ID = id
	return nil
}

func (m *Mongo) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	if len(recs) == 0 {
		return nil
	}
	first, err := m.nextIDs(ctx, int64(len(recs)))
	if err != nil {
		return errors.Join(ErrInsert, err)
	}

	docs := make([]any, len(recs))
	for i, rec := range recs {
		doc := toDocument(rec)
		doc.ID = first + int64(i)
		docs[i] = doc
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return errors.Join(ErrInsert, err)
	}
	for i, rec := range recs {
		rec.ID = first + int64(i)
	}
	return nil
}

func mongoFilter(q requestlog.Query) bson.D {
	filter := bson.D{}
	if len(q.IDs) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: q.IDs}}})
	}
	if q.Search != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		or := bson.A{}
		for _, col := range requestlog.SearchColumns {
			or = append(or, bson.D{{Key: mongoSearchField(col), Value: pattern}})
		}
		filter = append(filter, bson.E{Key: "$or", Value: or})
	}
	return filter
}

func (m *Mongo) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	q = q.Normalize()
	filter := mongoFilter(q)

	total, err := m.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	if total == 0 {
		return []requestlog.Record{}, 0, nil
	}

	dir := 1
	if q.Desc {
		dir = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: mongoField(q.OrderBy), Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PerPage))

	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	defer cur.Close(ctx)

	out := make([]requestlog.Record, 0, q.PerPage)
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, errors.Join(ErrQuery, err)
		}
		out = append(out, doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	return out, total, nil
}

func (m *Mongo) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	var doc document
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	if err != nil {
		return requestlog.Record{}, errors.Join(ErrQuery, err)
	}
	return doc.record(), nil
}

func (m *Mongo) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return m.deleteMany(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
}

func (m *Mongo) DeleteAll(ctx context.Context) (int64, error) {
	return m.deleteMany(ctx, bson.D{})
}

func (m *Mongo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return m.deleteMany(ctx, bson.D{{Key: "captured_at", Value: bson.D{{Key: "$lt", Value: cutoff.UTC()}}}})
}

func (m *Mongo) deleteMany(ctx context.Context, filter bson.D) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	return res.DeletedCount, nil
}
