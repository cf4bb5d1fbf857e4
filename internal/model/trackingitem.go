package model

import "go.mongodb.org/mongo-driver/bson/primitive"

type ItemStatus string

const (
	StatusTracking ItemStatus = "tracking"
	StatusDeal     ItemStatus = "deal"
	StatusPending  ItemStatus = "pending"
	StatusError    ItemStatus = "error"
)

// NextStatus is the status an item moves to after a successful price
// observation. An item already in deal whose price rises back above target
// returns to tracking, so a later drop notifies again.
func NextStatus(observedPrice float64, targetPrice float64) ItemStatus {
	if observedPrice <= targetPrice {
		return StatusDeal
	}
	return StatusTracking
}

// TrackingItem is a document in the trackingitems collection. Status and
// CurrentPrice are written only by the price checker; owners cannot modify an
// item after creating it.
type TrackingItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerEmail   string             `bson:"owner_email" json:"-"`
	URL          string             `bson:"url" json:"url"`
	TargetPrice  float64            `bson:"target_price" json:"target_price"`
	Status       ItemStatus         `bson:"status" json:"status"`
	CurrentPrice float64            `bson:"current_price,omitempty" json:"current_price"`
	CreatedAt    primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt    primitive.DateTime `bson:"updated_at" json:"-"`
}
