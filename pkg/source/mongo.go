package source

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
)

// FloorsCollection is the collection holding one document per floor.
const FloorsCollection = "floors"

// collection is the subset of *mongo.Collection used by Mongo.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Distinct(ctx context.Context, field string, filter any, opts ...*options.DistinctOptions) ([]any, error)
}

// Mongo reads floor documents keyed by _id.
//
//	{_id: "ground", name: "Ground", blocks: [{id, name, rect: {x, y, width, height}, lightOn}]}
type Mongo struct {
	coll   collection
	client *mongo.Client
}

// DialMongo connects to uri and uses database's floors collection.
func DialMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &Mongo{coll: client.Database(database).Collection(FloorsCollection), client: client}, nil
}

// NewMongo uses an existing collection. Close leaves its client alone.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

func (m *Mongo) Floor(ctx context.Context, id string) (*floorplan.Floor, error) {
	var f floorplan.Floor
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find floor %q", id)
	}
	return &f, nil
}

func (m *Mongo) Floors(ctx context.Context) ([]string, error) {
	vals, err := m.coll.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list floors")
	}
	ids := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

func (m *Mongo) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
