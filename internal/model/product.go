package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Product is a document in the products collection, kept for the catalog
// viewer. None of the tracking flows read or write it yet.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Retailer     string             `bson:"retailer" json:"retailer"`
	ProductID    string             `bson:"product_id,omitempty" json:"product_id"`
	Title        string             `bson:"title" json:"title"`
	URL          string             `bson:"url" json:"url"`
	ImageURL     string             `bson:"image_url,omitempty" json:"image_url"`
	CurrentPrice float64            `bson:"current_price,omitempty" json:"current_price"`
}
