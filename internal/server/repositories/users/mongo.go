package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

// CollectionName is the Mongo collection holding user accounts.
const CollectionName = "users"

type userDocument struct {
	ID              primitive.ObjectID `bson:"_id"`
	Username        string             `bson:"username"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	IsEmailVerified bool               `bson:"is_email_verified"`
	CreatedAt       string             `bson:"created_at"`
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	doc := userDocument{
		ID:              primitive.NewObjectID(),
		Username:        user.Username,
		Email:           user.Email,
		Password:        user.Password,
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       timex.FormatStored(user.CreatedAt),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.ID = doc.ID.Hex()
	return user, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	createdAt, err := timex.ParseStored(doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:              doc.ID.Hex(),
		Username:        doc.Username,
		Email:           doc.Email,
		Password:        doc.Password,
		IsEmailVerified: doc.IsEmailVerified,
		CreatedAt:       createdAt,
	}, nil
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.setField(ctx, email, "password", passwordHash)
}

func (r *MongoRepository) SetEmailVerified(ctx context.Context, email string, verified bool) error {
	return r.setField(ctx, email, "is_email_verified", verified)
}

func (r *MongoRepository) setField(ctx context.Context, email, field string, value any) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.DeletedCount, nil
}
