package server

import (
	"encoding/json"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"net/http"
	"net/url"
	db "pricewatch/internal/database"
	"pricewatch/internal/model"
)

const (
	// Free tier quota: 5 tracked products per user.
	trackedItemLimit  = 5
	trackListLimit    = 100
	priceHistoryLimit = 50
)

func quotaExceeded(count int64) bool {
	return count >= trackedItemLimit
}

func (s Server) trackAdd() http.HandlerFunc {
	type request struct {
		URL         string  `json:"url"`
		TargetPrice float64 `json:"target_price"`
	}
	type response struct {
		TrackItemID string           `json:"track_item_id"`
		Status      model.ItemStatus `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackAdd: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		req := request{}
		if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("trackAdd: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if parsedURL, err := url.Parse(req.URL); err != nil || !parsedURL.IsAbs() || parsedURL.Host == "" {
			s.Logger.Debugf("trackAdd: Bad url: %s, err: %v", req.URL, err)
			http.Error(w, "Invalid url", http.StatusBadRequest)
			return
		}
		if req.TargetPrice < 0 {
			s.Logger.Debugf("trackAdd: Negative target price: %f", req.TargetPrice)
			http.Error(w, "target_price must not be negative", http.StatusBadRequest)
			return
		}

		// The count and the insert are separate operations, so two concurrent
		// creates for one owner can land both and briefly exceed the limit.
		count, err := s.DB.TrackingItemCountByOwner(r.Context(), uc.user.Email)
		if err != nil {
			s.Logger.Errorf("trackAdd: Error counting TrackingItems for owner: %s, err: %v", uc.user.Email, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if quotaExceeded(count) {
			s.Logger.Debugf("trackAdd: Quota exceeded for owner: %s, count: %d", uc.user.Email, count)
			http.Error(w, "Free tier allows up to 5 tracked products", http.StatusForbidden)
			return
		}

		ti := model.TrackingItem{
			OwnerEmail:  uc.user.Email,
			URL:         req.URL,
			TargetPrice: req.TargetPrice,
			Status:      model.StatusTracking,
		}
		id, err := s.DB.TrackingItemInsert(r.Context(), ti)
		if err != nil {
			s.Logger.Errorf("trackAdd: Error inserting TrackingItem, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{
			TrackItemID: id,
			Status:      model.StatusTracking,
		}, http.StatusCreated)
	}
}

func (s Server) trackList() http.HandlerFunc {
	type response []model.TrackingItem
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackList: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		tis, err := s.DB.TrackingItemsFindByOwner(r.Context(), uc.user.Email, trackListLimit)
		if err != nil {
			s.Logger.Errorf("trackList: Error getting TrackingItems for owner: %s, err: %v", uc.user.Email, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp := response{}
		resp = append(resp, tis...)
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

// trackHistory hides ownership mismatches behind the same 404 as missing
// items, so callers can't probe other users' item IDs.
func (s Server) trackHistory() http.HandlerFunc {
	type response []model.PricePoint
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("trackHistory: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		trackItemID := mux.Vars(r)["trackItemID"]
		ti, err := s.DB.TrackingItemFindOne(r.Context(), trackItemID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				s.Logger.Debugf("trackHistory: No TrackingItem with ID: %s, err: %v", trackItemID, err)
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("trackHistory: Error finding TrackingItem with ID: %s, err: %v", trackItemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if ti.OwnerEmail != uc.user.Email {
			s.Logger.Debugf("trackHistory: TrackingItem with ID: %s not owned by: %s", trackItemID, uc.user.Email)
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		pps, err := s.DB.PricePointsFindLatest(r.Context(), ti.ID, priceHistoryLimit)
		if err != nil {
			s.Logger.Errorf("trackHistory: Error getting PricePoints for TrackingItemID: %s, err: %v", trackItemID, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp := response{}
		resp = append(resp, pps...)
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
