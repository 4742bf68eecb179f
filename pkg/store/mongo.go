package store

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
	"github.com/stormboard/stormboard/pkg/observability"
)

// mongoCollection is the collection holding one document per board.
const mongoCollection = "boards"

// MongoStore keeps each board as one document keyed by instanceName.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to mongo and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo ping failed")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// Get loads a board by instance name.
func (s *MongoStore) Get(ctx context.Context, name string) (*board.Board, error) {
	start := time.Now()
	if err := errors.ValidateInstanceName(name); err != nil {
		return nil, err
	}

	var b board.Board
	err := s.coll.FindOne(ctx, bson.M{"instanceName": name}).Decode(&b)
	observability.Store().OnGet(ctx, name, err == nil, time.Since(start))
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeBoardNotFound, "board %q does not exist", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to load board %q", name)
	}
	return &b, nil
}

// Put saves a board under its InstanceName, upserting the document.
func (s *MongoStore) Put(ctx context.Context, b *board.Board) error {
	start := time.Now()
	err := s.put(ctx, b)
	observability.Store().OnPut(ctx, b.InstanceName, time.Since(start), err)
	return err
}

func (s *MongoStore) put(ctx context.Context, b *board.Board) error {
	if err := errors.ValidateInstanceName(b.InstanceName); err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"instanceName": b.InstanceName},
		b,
		options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to save board %q", b.InstanceName)
	}
	return nil
}

// Delete removes a board by instance name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.delete(ctx, name)
	observability.Store().OnDelete(ctx, name, time.Since(start), err)
	return err
}

func (s *MongoStore) delete(ctx context.Context, name string) error {
	if err := errors.ValidateInstanceName(name); err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"instanceName": name})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "failed to delete board %q", name)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeBoardNotFound, "board %q does not exist", name)
	}
	return nil
}

// List returns all stored instance names, sorted.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "instanceName", bson.D{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "failed to list boards")
	}

	names := []string{}
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Close disconnects from mongo.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
