package database

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gmfsales/liffbackend/apperrors"
	"github.com/gmfsales/liffbackend/models"
)

// InquiryStore persists submitted inquiries.
type InquiryStore interface {
	Create(ctx context.Context, inquiry models.StoredInquiry) (string, error)
}

// inserter is the slice of *mongo.Collection the store needs.
type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

type mongoInquiryStore struct {
	collection inserter
	newID      func() bson.ObjectID
}

func NewInquiryStore(collection *mongo.Collection) InquiryStore {
	return newInquiryStore(collection)
}

func newInquiryStore(collection inserter) *mongoInquiryStore {
	return &mongoInquiryStore{collection: collection, newID: bson.NewObjectID}
}

// Create inserts the inquiry with a freshly generated _id and returns it as
// a hex string. Errors are *apperrors.PersistenceError.
func (s *mongoInquiryStore) Create(ctx context.Context, inquiry models.StoredInquiry) (string, error) {
	inquiry.ID = s.newID()

	if _, err := s.collection.InsertOne(ctx, inquiry); err != nil {
		return "", &apperrors.PersistenceError{Op: "insert inquiry", Err: err}
	}
	return inquiry.ID.Hex(), nil
}
