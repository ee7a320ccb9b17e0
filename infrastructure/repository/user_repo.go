package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"orderdesk/domain/user"
)

const userCollection = "user"

// userDocument is the MongoDB document structure for users.
type userDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Name    string             `bson:"name"`
	Email   string             `bson:"email,omitempty"`
	Role    string             `bson:"role"`
	Ranking int                `bson:"ranking"`
}

// MongoUserRepository implements user.Repository using MongoDB.
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoUserRepository creates a new MongoDB-based user repository.
func NewMongoUserRepository(db *MongoDB, logger *slog.Logger) *MongoUserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoUserRepository{
		collection: db.Collection(userCollection),
		logger:     logger,
	}
}

// FindByID retrieves a user by its unique identifier.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	// Ids that are not ObjectIDs cannot name a stored record.
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return documentToUser(&doc), nil
}

// FindAll retrieves all users.
func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*user.User, error) {
	cursor, err := r.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]*user.User, len(docs))
	for i := range docs {
		users[i] = documentToUser(&docs[i])
	}
	return users, nil
}

// Insert creates a new user.
func (r *MongoUserRepository) Insert(ctx context.Context, u *user.User) error {
	result, err := r.collection.InsertOne(ctx, userToDocument(u))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}

	r.logger.Info("User inserted", "id", u.ID, "name", u.Name)
	return nil
}

// Update updates an existing user.
func (r *MongoUserRepository) Update(ctx context.Context, u *user.User) error {
	objectID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return user.ErrUserNotFound
	}

	doc := userToDocument(u)
	doc.ID = objectID

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete removes a user by its identifier.
func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.ErrUserNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.DeletedCount == 0 {
		return user.ErrUserNotFound
	}

	r.logger.Info("User deleted", "id", id)
	return nil
}

func documentToUser(doc *userDocument) *user.User {
	return &user.User{
		ID:      doc.ID.Hex(),
		Name:    doc.Name,
		Email:   doc.Email,
		Role:    user.Role(doc.Role),
		Ranking: doc.Ranking,
	}
}

func userToDocument(u *user.User) *userDocument {
	doc := &userDocument{
		Name:    u.Name,
		Email:   u.Email,
		Role:    string(u.Role),
		Ranking: u.Ranking,
	}
	if u.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			doc.ID = oid
		}
	}
	return doc
}

// Ensure MongoUserRepository implements user.Repository
var _ user.Repository = (*MongoUserRepository)(nil)
