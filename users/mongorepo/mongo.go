// Package mongorepo implements users.UserRepo on a MongoDB collection.
package mongorepo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
	"github.com/vidstream/go-video-backend/users"
)

const collectionName = "users"

var _ users.UserRepo = (*MongoUserRepo)(nil)

type MongoUserRepo struct {
	coll *mongo.Collection
}

// New returns a repo backed by the users collection of the given database and
// ensures the unique identifier indexes exist.
func New(ctx context.Context, db *mongo.Database) (*MongoUserRepo, error) {
	coll := db.Collection(collectionName)

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "[mongorepo.New] CreateMany indexes")
	}

	return &MongoUserRepo{coll: coll}, nil
}

func (r *MongoUserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	if err := user.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrValidation, "%v", err)
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.Wrapf(apperrors.ErrPersistence, "insert user: %v", err)
	}
	return user, nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	var u users.User
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrapf(apperrors.ErrPersistence, "find user by id: %v", err)
	}
	return &u, nil
}

func (r *MongoUserRepo) GetByIdentifier(ctx context.Context, userName, email string) (*users.User, error) {
	or := bson.A{}
	if userName != "" {
		or = append(or, bson.M{"userName": users.NormalizeIdentifier(userName)})
	}
	if email != "" {
		or = append(or, bson.M{"email": users.NormalizeIdentifier(email)})
	}
	if len(or) == 0 {
		return nil, apperrors.ErrUserNotFound
	}

	var u users.User
	err := r.coll.FindOne(ctx, bson.M{"$or": or}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrapf(apperrors.ErrPersistence, "find user by identifier: %v", err)
	}
	return &u, nil
}

func (r *MongoUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) (*users.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	var u users.User
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.Wrapf(apperrors.ErrPersistence, "update user fields: %v", err)
	}
	return &u, nil
}

func (r *MongoUserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrPersistence, "clear refresh token: %v", err)
	}
	return nil
}
