package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"orderdesk/domain/order"
	"orderdesk/domain/user"
)

func TestDefaultMongoDBConfig(t *testing.T) {
	config := DefaultMongoDBConfig()
	require.NotNil(t, config)

	assert.Equal(t, "mongodb://localhost:27017", config.URI)
	assert.Equal(t, "orderdesk", config.Database)
	assert.Equal(t, 10*time.Second, config.ConnectTimeout)
	assert.Equal(t, 5*time.Second, config.PingTimeout)
}

func TestRedactURI(t *testing.T) {
	tests := []struct {
		uri      string
		expected string
	}{
		{"mongodb://localhost:27017", "mongodb://localhost:27017"},
		{"mongodb://admin:secret@db:27017/orders", "mongodb://redacted@db:27017/orders"},
		{"::not a uri", "::not a uri"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got := redactURI(tt.uri)
			assert.Equal(t, tt.expected, got)
			assert.NotContains(t, got, "secret")
		})
	}
}

func TestOrderDocument_Conversion(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	doc := &orderDocument{
		ID:        oid,
		Number:    "ORD-00000001",
		UserID:    "u1",
		Status:    "paid",
		CreatedAt: created,
		UpdatedAt: created,
		Items: []itemDocument{
			{SKU: "A", Quantity: 2, UnitPriceCents: 150},
		},
	}

	o := documentToOrder(doc)
	assert.Equal(t, oid.Hex(), o.ID)
	assert.Equal(t, order.StatusPaid, o.Status)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(300), o.TotalCents())

	back := orderToDocument(o)
	assert.Equal(t, doc, back)
}

func TestOrderDocument_InvalidIDIgnored(t *testing.T) {
	doc := orderToDocument(&order.Order{ID: "not-hex"})
	assert.True(t, doc.ID.IsZero())
	assert.NotNil(t, doc.Items, "items are always stored as an array")
}

func TestOrderDocument_BSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(orderToDocument(&order.Order{
		UserID: "u1",
		Items:  []order.Item{{SKU: "A", Quantity: 1, UnitPriceCents: 5}},
	}))
	require.NoError(t, err)

	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.Contains(t, m, "user_id")
	assert.Contains(t, m, "created_at")
	assert.NotContains(t, m, "_id", "empty ObjectID must be omitted so MongoDB generates one")
}

func TestUserDocument_Conversion(t *testing.T) {
	oid := primitive.NewObjectID()
	u := &user.User{ID: oid.Hex(), Name: "Ada", Email: "ada@example.com", Role: user.RoleAdmin, Ranking: 3}

	doc := userToDocument(u)
	assert.Equal(t, oid, doc.ID)
	assert.Equal(t, "admin", doc.Role)

	assert.Equal(t, u, documentToUser(doc))
}
