package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// PricePoint is an immutable observation in the pricepoints collection,
// appended once per successful check.
type PricePoint struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TrackingItemID primitive.ObjectID `bson:"trackitem_id" json:"-"`
	Price          float64            `bson:"pr" json:"price"`
	RecordedAt     primitive.DateTime `bson:"ts" json:"recorded_at"`
}
