package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orderdesk/domain/order"
)

const orderCollection = "order"

// orderDocument is the MongoDB document structure for orders.
type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Number    string             `bson:"number"`
	UserID    string             `bson:"user_id"`
	Items     []itemDocument     `bson:"items"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// itemDocument is the MongoDB document structure for order lines.
type itemDocument struct {
	SKU            string `bson:"sku"`
	Quantity       int    `bson:"quantity"`
	UnitPriceCents int64  `bson:"unit_price_cents"`
}

// MongoOrderRepository implements order.Repository using MongoDB.
type MongoOrderRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoOrderRepository creates a new MongoDB-based order repository.
func NewMongoOrderRepository(db *MongoDB, logger *slog.Logger) *MongoOrderRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoOrderRepository{
		collection: db.Collection(orderCollection),
		logger:     logger,
	}
}

// FindByID retrieves an order by its unique identifier.
func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	// Ids that are not ObjectIDs cannot name a stored record.
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc orderDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	return documentToOrder(&doc), nil
}

// FindAll retrieves all orders, newest first.
func (r *MongoOrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.find(ctx, bson.D{})
}

// FindByUserID retrieves all orders placed by a user.
func (r *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter any) ([]*order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]*order.Order, len(docs))
	for i := range docs {
		orders[i] = documentToOrder(&docs[i])
	}
	return orders, nil
}

// Insert creates a new order.
func (r *MongoOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	result, err := r.collection.InsertOne(ctx, orderToDocument(o))
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		o.ID = oid.Hex()
	}

	r.logger.Info("Order inserted", "id", o.ID, "number", o.Number, "user_id", o.UserID)
	return nil
}

// Update updates an existing order.
func (r *MongoOrderRepository) Update(ctx context.Context, o *order.Order) error {
	objectID, err := primitive.ObjectIDFromHex(o.ID)
	if err != nil {
		return order.ErrOrderNotFound
	}

	doc := orderToDocument(o)
	doc.ID = objectID

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete removes an order by its identifier.
func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return order.ErrOrderNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return order.ErrOrderNotFound
	}

	r.logger.Info("Order deleted", "id", id)
	return nil
}

// documentToOrder converts a MongoDB document to a domain Order.
func documentToOrder(doc *orderDocument) *order.Order {
	o := &order.Order{
		ID:        doc.ID.Hex(),
		Number:    doc.Number,
		UserID:    doc.UserID,
		Status:    order.Status(doc.Status),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	if len(doc.Items) > 0 {
		o.Items = make([]order.Item, len(doc.Items))
		for i, it := range doc.Items {
			o.Items[i] = order.Item{
				SKU:            it.SKU,
				Quantity:       it.Quantity,
				UnitPriceCents: it.UnitPriceCents,
			}
		}
	}

	return o
}

// orderToDocument converts a domain Order to a MongoDB document.
func orderToDocument(o *order.Order) *orderDocument {
	doc := &orderDocument{
		Number:    o.Number,
		UserID:    o.UserID,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Items:     make([]itemDocument, len(o.Items)),
	}

	if o.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(o.ID); err == nil {
			doc.ID = oid
		}
	}

	for i, it := range o.Items {
		doc.Items[i] = itemDocument{
			SKU:            it.SKU,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
		}
	}

	return doc
}

// Ensure MongoOrderRepository implements order.Repository
var _ order.Repository = (*MongoOrderRepository)(nil)
