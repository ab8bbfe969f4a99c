package hold

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// heldDocument keeps the same JSON the other backends store, keyed by the namespaced key.
type heldDocument struct {
	Key       string    `bson:"_id"`
	Namespace string    `bson:"namespace"`
	Payload   string    `bson:"payload"`
	HeldAt    time.Time `bson:"held_at"`
}

type MongoRepository struct {
	collection *mongo.Collection
	namespace  string
	now        func() time.Time
	log        *zap.Logger
}

func ConnectMongoDB(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

func NewMongoRepository(db *mongo.Database, namespace string, log *zap.Logger) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection("held_transactions"),
		namespace:  namespace,
		now:        time.Now,
		log:        logger.OrNop(log),
	}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "held_at", Value: -1}}},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) Hold(ctx context.Context, lines []domain.CartLine, tableRef string) (string, error) {
	held, err := newHeld(lines, tableRef, m.now())
	if err != nil {
		return "", err
	}
	data, err := encode(held)
	if err != nil {
		return "", err
	}

	doc := heldDocument{
		Key:       holdKey(m.namespace, held.ID),
		Namespace: m.namespace,
		Payload:   string(data),
		HeldAt:    held.Timestamp,
	}
	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert held transaction: %w", err)
	}
	return held.ID, nil
}

func (m *MongoRepository) List(ctx context.Context) ([]domain.HeldTransaction, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(keyPrefix(m.namespace))}}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list held transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var held []domain.HeldTransaction
	for cursor.Next(ctx) {
		h, err := m.decodeRaw(cursor.Current)
		if err != nil {
			m.log.Debug("skipping held document", zap.Error(err))
			continue
		}
		held = append(held, *h)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate held transactions: %w", err)
	}

	if held == nil {
		held = []domain.HeldTransaction{}
	}
	sortNewestFirst(held)
	return held, nil
}

func (m *MongoRepository) Retrieve(ctx context.Context, id string) (*domain.HeldTransaction, error) {
	raw, err := m.collection.FindOne(ctx, bson.M{"_id": holdKey(m.namespace, id)}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get held transaction: %w", err)
	}

	h, err := m.decodeRaw(raw)
	if err != nil {
		m.log.Debug("held document unreadable", zap.String("hold_id", id), zap.Error(err))
		return nil, nil
	}
	return h, nil
}

func (m *MongoRepository) Delete(ctx context.Context, id string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": holdKey(m.namespace, id)}); err != nil {
		return fmt.Errorf("failed to delete held transaction: %w", err)
	}
	return nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, nil)
}

// decodeRaw reads the payload field without trusting the rest of the document.
func (m *MongoRepository) decodeRaw(raw bson.Raw) (*domain.HeldTransaction, error) {
	val, err := raw.LookupErr("payload")
	if err != nil {
		return nil, fmt.Errorf("%w: no payload", ErrMalformedEntry)
	}
	payload, ok := val.StringValueOK()
	if !ok {
		return nil, fmt.Errorf("%w: payload is not a string", ErrMalformedEntry)
	}
	return decode([]byte(payload))
}
