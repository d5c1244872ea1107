package assets

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

// CollectionName is the Mongo collection holding asset records.
const CollectionName = "assets"

type assetDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	FileName     string             `bson:"filename"`
	URL          string             `bson:"url"`
	PublicID     string             `bson:"public_id"`
	ResourceType string             `bson:"resource_type"`
	CreatedAt    string             `bson:"created_at"`
}

func (d *assetDocument) toModel() (*models.Asset, error) {
	createdAt, err := timex.ParseStored(d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.Asset{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		FileName:     d.FileName,
		URL:          d.URL,
		PublicID:     d.PublicID,
		ResourceType: d.ResourceType,
		CreatedAt:    createdAt,
	}, nil
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the owner listing index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create assets index: %w", err)
	}
	return nil
}

func (r *MongoRepository) InsertMany(ctx context.Context, assets []*models.Asset) ([]string, error) {
	if len(assets) == 0 {
		return []string{}, nil
	}

	docs := make([]any, 0, len(assets))
	ids := make([]primitive.ObjectID, 0, len(assets))
	for _, a := range assets {
		id := primitive.NewObjectID()
		ids = append(ids, id)
		docs = append(docs, assetDocument{
			ID:           id,
			Email:        a.Email,
			FileName:     a.FileName,
			URL:          a.URL,
			PublicID:     a.PublicID,
			ResourceType: a.ResourceType,
			CreatedAt:    timex.FormatStored(a.CreatedAt),
		})
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]string, len(ids))
	for i, id := range ids {
		result[i] = id.Hex()
		assets[i].ID = result[i]
	}
	return result, nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, owner string, skip, limit int64) ([]*models.Asset, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(skip)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, bson.M{"email": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []assetDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.Asset, 0, len(docs))
	for i := range docs {
		a, err := docs[i].toModel()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

// DeleteByID reports zero for ids that are not ObjectIDs, since no document
// can match.
func (r *MongoRepository) DeleteByID(ctx context.Context, owner, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}, {Key: "email", Value: owner}})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount, nil
}
