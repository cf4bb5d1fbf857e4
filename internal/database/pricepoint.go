package database

import (
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"pricewatch/internal/model"
)

func (db Database) PricePointInsert(ctx context.Context, pp model.PricePoint) error {
	_, err := db.Collection(CollectionPricePoints).InsertOne(ctx, pp)
	return errors.Wrapf(err, "error inserting PricePoint: %+v", pp)
}

// PricePointsFindLatest returns the most recent limit PricePoints for an item,
// ordered oldest first.
func (db Database) PricePointsFindLatest(
	ctx context.Context, itemID primitive.ObjectID, limit int64,
) ([]model.PricePoint, error) {
	var pps []model.PricePoint
	opts := options.Find().SetSort(bson.M{"ts": -1}).SetLimit(limit)
	cur, err := db.Collection(CollectionPricePoints).Find(ctx, bson.M{"trackitem_id": itemID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find PricePoints for TrackingItemID: %s", itemID.Hex())
	}
	if err = cur.All(ctx, &pps); err != nil {
		return nil, errors.Wrapf(err, "error getting PricePoints from cursor for TrackingItemID: %s", itemID.Hex())
	}
	for i, j := 0, len(pps)-1; i < j; i, j = i+1, j-1 {
		pps[i], pps[j] = pps[j], pps[i]
	}
	return pps, nil
}
