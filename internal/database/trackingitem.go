package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricewatch/internal/model"
	"time"
)

func (db Database) TrackingItemInsert(ctx context.Context, ti model.TrackingItem) (id string, err error) {
	ti.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	ti.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionTrackingItems).InsertOne(ctx, ti)
	if err != nil {
		return "", errors.Wrapf(err, "error inserting TrackingItem for owner: %s, url: %s", ti.OwnerEmail, ti.URL)
	}
	return r.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (db Database) TrackingItemFindOne(ctx context.Context, id string) (model.TrackingItem, error) {
	var ti model.TrackingItem
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ti, errors.Wrapf(ErrNotFound, "invalid TrackingItem ID: %s", id)
	}
	err = db.Collection(CollectionTrackingItems).FindOne(ctx, bson.M{"_id": objID}).Decode(&ti)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ti, errors.Wrapf(ErrNotFound, "no TrackingItem with ID: %s", id)
	}
	return ti, errors.Wrapf(err, "error finding TrackingItem with ID: %s", id)
}

func (db Database) TrackingItemsFindByOwner(ctx context.Context, ownerEmail string, limit int64) ([]model.TrackingItem, error) {
	var tis []model.TrackingItem
	opts := options.Find().SetLimit(limit)
	cur, err := db.Collection(CollectionTrackingItems).Find(ctx, bson.M{"owner_email": ownerEmail}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find TrackingItems for owner: %s", ownerEmail)
	}
	if err = cur.All(ctx, &tis); err != nil {
		return nil, errors.Wrapf(err, "error getting TrackingItems from cursor for owner: %s", ownerEmail)
	}
	return tis, nil
}

func (db Database) TrackingItemCountByOwner(ctx context.Context, ownerEmail string) (int64, error) {
	count, err := db.Collection(CollectionTrackingItems).CountDocuments(ctx, bson.M{"owner_email": ownerEmail})
	return count, errors.Wrapf(err, "error counting TrackingItems for owner: %s", ownerEmail)
}

func (db Database) TrackingItemsFindAll(ctx context.Context) ([]model.TrackingItem, error) {
	var tis []model.TrackingItem
	cur, err := db.Collection(CollectionTrackingItems).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all TrackingItems")
	}
	if err = cur.All(ctx, &tis); err != nil {
		return nil, errors.Wrap(err, "error getting all TrackingItems from cursor")
	}
	return tis, nil
}

func (db Database) TrackingItemCheckResultUpdate(
	ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus, price float64,
) error {
	res, err := db.Collection(CollectionTrackingItems).UpdateOne(
		ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": bson.M{
			"status":        status,
			"current_price": price,
			"updated_at":    primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating check result on TrackingItem with ID: %s, status: %s, price: %f",
			itemID.Hex(), status, price)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "no TrackingItem with ID: %s to update check result on", itemID.Hex())
	}
	return nil
}

func (db Database) TrackingItemStatusUpdate(ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus) error {
	res, err := db.Collection(CollectionTrackingItems).UpdateOne(
		ctx,
		bson.M{"_id": itemID},
		bson.M{"$set": bson.M{
			"status":     status,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	if err != nil {
		return errors.Wrapf(err, "error updating status on TrackingItem with ID: %s, status: %s", itemID.Hex(), status)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified, "no TrackingItem with ID: %s to update status on", itemID.Hex())
	}
	return nil
}
