package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"pricewatch/internal/model"
	"time"
)

func (db Database) UserInsert(ctx context.Context, u model.User) (id string, err error) {
	u.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	u.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionUsers).InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", errors.Wrapf(ErrDuplicate, "User with email: %s already exists", u.Email)
		}
		return "", errors.Wrapf(err, "error inserting User with email: %s", u.Email)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) UserFindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := db.Collection(CollectionUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return u, errors.Wrapf(ErrNotFound, "no User with email: %s", email)
	}
	return u, errors.Wrapf(err, "error finding User with email: %s", email)
}

func (db Database) UserTelegramCredentialUpdate(ctx context.Context, email string, botToken string, chatID string) error {
	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"telegram_token":   botToken,
			"telegram_chat_id": chatID,
			"updated_at":       primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating Telegram credential on User with email: %s", email)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "no User with email: %s to update Telegram credential on", email)
	}
	return nil
}
