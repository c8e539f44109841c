package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// transactionDoc is the BSON shape of a transaction. The field names follow
// the JSON API, but user holds the owner's UUID string, so documents keyed
// by an ObjectId user reference are not matched.
type transactionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Amount      float64            `bson:"amount"`
	Type        string             `bson:"type"`
	Category    string             `bson:"category"`
	Date        time.Time          `bson:"date"`
	User        string             `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *transactionDoc) model() models.Transaction {
	return models.Transaction{
		ID:          d.ID.Hex(),
		Description: d.Description,
		Amount:      d.Amount,
		Type:        models.TransactionType(d.Type),
		Category:    d.Category,
		Date:        d.Date.UTC(),
		Owner:       d.User,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

type MongoTransactions struct {
	coll *mongo.Collection
}

func NewMongoTransactions(db *mongo.Database) *MongoTransactions {
	return &MongoTransactions{coll: db.Collection(database.TransactionsCollection)}
}

func (s *MongoTransactions) Insert(ctx context.Context, t *models.Transaction) error {
	doc := transactionDoc{
		ID:          primitive.NewObjectID(),
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    t.Category,
		Date:        t.Date,
		User:        t.Owner,
		CreatedAt:   t.CreatedAt,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = doc.ID.Hex()
	return nil
}

func (s *MongoTransactions) FindByOwner(ctx context.Context, owner string) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("find transactions: %w", err)
	}
	defer cur.Close(ctx)

	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	out := make([]models.Transaction, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (s *MongoTransactions) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc transactionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	t := doc.model()
	return &t, nil
}

func (s *MongoTransactions) UpdateByID(ctx context.Context, id string, f models.TransactionFields) (*models.Transaction, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"description": f.Description,
		"amount":      f.Amount,
		"type":        string(f.Type),
		"category":    f.Category,
		"date":        f.Date,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc transactionDoc
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	t := doc.model()
	return &t, nil
}

func (s *MongoTransactions) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoTransactions) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
