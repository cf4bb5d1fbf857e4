package server

import (
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"pricewatch/internal/misc"
	"pricewatch/internal/model"
	"time"
)

const fetchPriceTimeout = 15 * time.Second

// CheckPricesInInterval runs one check cycle per tick until ctx is cancelled.
// Ticks are consumed by a single goroutine and a cycle finishes before the
// next tick is read, so cycles never overlap.
func (s Server) CheckPricesInInterval(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			s.Logger.Info("CheckPricesInInterval: Stopping price checks:", ctx.Err())
			return
		case <-tick:
			s.checkPrices(ctx)
		}
	}
}

// checkPrices is one cycle: every TrackingItem is checked, including items
// already in deal so they can fall back to tracking when the price recovers.
func (s Server) checkPrices(ctx context.Context) {
	s.Logger.Info("checkPrices: Starting check cycle over all TrackingItems")
	tis, err := s.DB.TrackingItemsFindAll(ctx)
	if err != nil {
		s.Logger.Errorf("checkPrices: Error getting all TrackingItems from DB, err: %v", err)
		return
	}
	s.Logger.Infof("checkPrices: Retrieved %d TrackingItem(s) from DB", len(tis))

	for _, ti := range tis {
		s.checkItem(ctx, ti)
	}
	s.Logger.Info("checkPrices: Finished check cycle")
}

// checkItem never returns an error: whatever goes wrong with one item is
// logged here and must not disturb the rest of the cycle.
func (s Server) checkItem(ctx context.Context, ti model.TrackingItem) {
	itemURL := misc.StringLimit(ti.URL, 60)
	s.Logger.Debugf("checkItem: Checking price for TrackingItem: %s, ID: %s", itemURL, ti.ID.Hex())

	fetchCtx, cancel := context.WithTimeout(ctx, fetchPriceTimeout)
	defer cancel()
	observedPrice, err := s.PriceSource.FetchPrice(fetchCtx, ti.URL)
	if err != nil {
		s.Logger.Errorf("checkItem: Error fetching price for TrackingItem: %s, ID: %s, err: %v", itemURL, ti.ID.Hex(), err)
		if err = s.DB.TrackingItemStatusUpdate(ctx, ti.ID, model.StatusError); err != nil {
			s.Logger.Errorf("checkItem: Error updating status to error on TrackingItem with ID: %s, err: %v", ti.ID.Hex(), err)
		}
		return
	}

	pp := model.PricePoint{
		TrackingItemID: ti.ID,
		Price:          observedPrice,
		RecordedAt:     primitive.NewDateTimeFromTime(time.Now().UTC()),
	}
	if err = s.DB.PricePointInsert(ctx, pp); err != nil {
		s.Logger.Errorf("checkItem: Error inserting PricePoint for TrackingItem with ID: %s, err: %v", ti.ID.Hex(), err)
	}

	newStatus := model.NextStatus(observedPrice, ti.TargetPrice)
	if newStatus == model.StatusDeal && ti.Status != model.StatusDeal {
		s.Logger.Infof("checkItem: Deal entered for TrackingItem: %s, ID: %s, price: %.2f, target: %.2f",
			itemURL, ti.ID.Hex(), observedPrice, ti.TargetPrice)
		s.notifyDeal(ctx, ti.OwnerEmail, ti.URL, observedPrice, ti.TargetPrice)
	}

	if err = s.DB.TrackingItemCheckResultUpdate(ctx, ti.ID, newStatus, observedPrice); err != nil {
		s.Logger.Errorf("checkItem: Error updating check result on TrackingItem with ID: %s, err: %v", ti.ID.Hex(), err)
	}
}
