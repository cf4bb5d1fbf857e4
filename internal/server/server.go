package server

import (
	"context"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricewatch/internal/model"
)

type Server struct {
	DB            database
	PriceSource   priceSource
	Notifier      notifier
	Logger        logger
	AuthSecretKey jwk.Key
}

// database is the repository contract the HTTP surface and the price checker
// run against. database.Database implements it backed by Mongo; the tests use
// an in-memory fake.
type database interface {
	UserInsert(ctx context.Context, u model.User) (string, error)
	UserFindByEmail(ctx context.Context, email string) (model.User, error)
	UserTelegramCredentialUpdate(ctx context.Context, email string, botToken string, chatID string) error
	TrackingItemInsert(ctx context.Context, ti model.TrackingItem) (string, error)
	TrackingItemFindOne(ctx context.Context, id string) (model.TrackingItem, error)
	TrackingItemsFindByOwner(ctx context.Context, ownerEmail string, limit int64) ([]model.TrackingItem, error)
	TrackingItemCountByOwner(ctx context.Context, ownerEmail string) (int64, error)
	TrackingItemsFindAll(ctx context.Context) ([]model.TrackingItem, error)
	TrackingItemCheckResultUpdate(ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus, price float64) error
	TrackingItemStatusUpdate(ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus) error
	PricePointInsert(ctx context.Context, pp model.PricePoint) error
	PricePointsFindLatest(ctx context.Context, itemID primitive.ObjectID, limit int64) ([]model.PricePoint, error)
}

type priceSource interface {
	FetchPrice(ctx context.Context, productURL string) (float64, error)
}

type notifier interface {
	SendMessage(ctx context.Context, botToken string, chatID string, text string) error
}

type logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Error(v ...any)
	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Errorf(format string, v ...any)
}
