package server

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	dbase "pricewatch/internal/database"
	"pricewatch/internal/model"
)

// memDB is an in-memory stand-in for database.Database, satisfying the same
// repository contract and sentinel errors.
type memDB struct {
	mu     sync.Mutex
	users  map[string]model.User
	items  []model.TrackingItem
	points []model.PricePoint
}

func newMemDB() *memDB {
	return &memDB{users: map[string]model.User{}}
}

func (db *memDB) UserInsert(ctx context.Context, u model.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[u.Email]; ok {
		return "", errors.Wrapf(dbase.ErrDuplicate, "User with email: %s already exists", u.Email)
	}
	u.ID = primitive.NewObjectID()
	db.users[u.Email] = u
	return u.ID.Hex(), nil
}

func (db *memDB) UserFindByEmail(ctx context.Context, email string) (model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[email]
	if !ok {
		return u, errors.Wrapf(dbase.ErrNotFound, "no User with email: %s", email)
	}
	return u, nil
}

func (db *memDB) UserTelegramCredentialUpdate(ctx context.Context, email string, botToken string, chatID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[email]
	if !ok {
		return errors.Wrapf(dbase.ErrNotFound, "no User with email: %s", email)
	}
	u.TelegramToken = botToken
	u.TelegramChatID = chatID
	db.users[email] = u
	return nil
}

func (db *memDB) TrackingItemInsert(ctx context.Context, ti model.TrackingItem) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	ti.ID = primitive.NewObjectID()
	db.items = append(db.items, ti)
	return ti.ID.Hex(), nil
}

func (db *memDB) TrackingItemFindOne(ctx context.Context, id string) (model.TrackingItem, error) {
	var ti model.TrackingItem
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ti, errors.Wrapf(dbase.ErrNotFound, "invalid TrackingItem ID: %s", id)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, it := range db.items {
		if it.ID == objID {
			return it, nil
		}
	}
	return ti, errors.Wrapf(dbase.ErrNotFound, "no TrackingItem with ID: %s", id)
}

func (db *memDB) TrackingItemsFindByOwner(ctx context.Context, ownerEmail string, limit int64) ([]model.TrackingItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var tis []model.TrackingItem
	for _, it := range db.items {
		if it.OwnerEmail == ownerEmail && int64(len(tis)) < limit {
			tis = append(tis, it)
		}
	}
	return tis, nil
}

func (db *memDB) TrackingItemCountByOwner(ctx context.Context, ownerEmail string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var count int64
	for _, it := range db.items {
		if it.OwnerEmail == ownerEmail {
			count++
		}
	}
	return count, nil
}

func (db *memDB) TrackingItemsFindAll(ctx context.Context) ([]model.TrackingItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	tis := make([]model.TrackingItem, len(db.items))
	copy(tis, db.items)
	return tis, nil
}

func (db *memDB) TrackingItemCheckResultUpdate(
	ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus, price float64,
) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.items {
		if db.items[i].ID == itemID {
			db.items[i].Status = status
			db.items[i].CurrentPrice = price
			return nil
		}
	}
	return errors.Wrapf(dbase.ErrNoDocumentsModified, "no TrackingItem with ID: %s", itemID.Hex())
}

func (db *memDB) TrackingItemStatusUpdate(ctx context.Context, itemID primitive.ObjectID, status model.ItemStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.items {
		if db.items[i].ID == itemID {
			db.items[i].Status = status
			return nil
		}
	}
	return errors.Wrapf(dbase.ErrNoDocumentsModified, "no TrackingItem with ID: %s", itemID.Hex())
}

func (db *memDB) PricePointInsert(ctx context.Context, pp model.PricePoint) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	pp.ID = primitive.NewObjectID()
	db.points = append(db.points, pp)
	return nil
}

func (db *memDB) PricePointsFindLatest(
	ctx context.Context, itemID primitive.ObjectID, limit int64,
) ([]model.PricePoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var pps []model.PricePoint
	for _, pp := range db.points {
		if pp.TrackingItemID == itemID {
			pps = append(pps, pp)
		}
	}
	if int64(len(pps)) > limit {
		pps = pps[int64(len(pps))-limit:]
	}
	return pps, nil
}

func (db *memDB) itemByID(t *testing.T, id primitive.ObjectID) model.TrackingItem {
	t.Helper()
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, it := range db.items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("no TrackingItem with ID: %s", id.Hex())
	return model.TrackingItem{}
}

func (db *memDB) pointCount(itemID primitive.ObjectID) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	count := 0
	for _, pp := range db.points {
		if pp.TrackingItemID == itemID {
			count++
		}
	}
	return count
}

type fakePriceSource struct {
	mu     sync.Mutex
	prices map[string]float64
	fail   map[string]bool
}

func newFakePriceSource() *fakePriceSource {
	return &fakePriceSource{prices: map[string]float64{}, fail: map[string]bool{}}
}

func (f *fakePriceSource) FetchPrice(ctx context.Context, productURL string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[productURL] {
		return 0, errors.New("price source unavailable")
	}
	price, ok := f.prices[productURL]
	if !ok {
		return 0, errors.Errorf("no price configured for url: %s", productURL)
	}
	return price, nil
}

func (f *fakePriceSource) setPrice(productURL string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[productURL] = price
}

func (f *fakePriceSource) setFail(productURL string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[productURL] = fail
}

type sentMessage struct {
	botToken string
	chatID   string
	text     string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (f *fakeNotifier) SendMessage(ctx context.Context, botToken string, chatID string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{botToken: botToken, chatID: chatID, text: text})
	return nil
}

func (f *fakeNotifier) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := make([]sentMessage, len(f.sent))
	copy(msgs, f.sent)
	return msgs
}

// testLogger keeps error output so tests can assert on what was (not) logged
// as an error.
type testLogger struct {
	mu       sync.Mutex
	errorLog []string
}

func (l *testLogger) Trace(v ...any)                 {}
func (l *testLogger) Debug(v ...any)                 {}
func (l *testLogger) Info(v ...any)                  {}
func (l *testLogger) Tracef(format string, v ...any) {}
func (l *testLogger) Debugf(format string, v ...any) {}
func (l *testLogger) Infof(format string, v ...any)  {}

func (l *testLogger) Error(v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog = append(l.errorLog, fmt.Sprintln(v...))
}

func (l *testLogger) Errorf(format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog = append(l.errorLog, fmt.Sprintf(format, v...))
}

func (l *testLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errorLog)
}

func newTestServer(t *testing.T) (Server, *memDB, *fakePriceSource, *fakeNotifier, *testLogger) {
	t.Helper()
	key, err := jwk.FromRaw([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("failed to create test key: %v", err)
	}
	db := newMemDB()
	ps := newFakePriceSource()
	n := &fakeNotifier{}
	lg := &testLogger{}
	return Server{
		DB:            db,
		PriceSource:   ps,
		Notifier:      n,
		Logger:        lg,
		AuthSecretKey: key,
	}, db, ps, n, lg
}
