package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v9"
	"io"
	"net/http"
	"net/url"
	"pricewatch/internal/misc"
	"strconv"
	"time"
)

var ErrPriceSource = errors.New("price source error")
var ErrPriceNotFound = errors.New("price not found")

const priceCacheTTL = 5 * time.Minute

type priceAPIResponse struct {
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`
}

// FetchPrice asks the configured price API for the current price of the
// product at productURL. Results are cached in Redis for a few minutes so
// multiple items tracking the same URL don't hammer the API within one cycle.
func (c Client) FetchPrice(ctx context.Context, productURL string) (float64, error) {
	cacheKey := "PRC-" + productURL
	if c.Redis != nil {
		cached, err := c.Redis.Get(ctx, cacheKey).Result()
		if err == nil {
			price, err := strconv.ParseFloat(cached, 64)
			if err == nil {
				c.Logger.Debugf("FetchPrice: Cache found, key: %s, price: %s", cacheKey, cached)
				return price, nil
			}
			c.Logger.Errorf("FetchPrice: Error parsing cached price, key: %s, value: %s, err: %v", cacheKey, cached, err)
		} else if err != redis.Nil {
			c.Logger.Errorf("FetchPrice: Error getting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}

	apiURL := c.PriceAPIURL + "?url=" + url.QueryEscape(productURL)
	req, err := newRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: error creating request to URL: %s, err: %v", ErrPriceSource, apiURL, err)
	}

	c.Logger.Debugf("FetchPrice: Sending request to %s", apiURL)
	resp, err := c.Do(req.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("%w: error doing request to URL: %s, err: %v", ErrPriceSource, apiURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(http.MaxBytesReader(nil, resp.Body, 300*1024))
	if err != nil {
		return 0, fmt.Errorf("%w: error reading price API response body, status: %s, err: %v",
			ErrPriceSource, resp.Status, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return 0, fmt.Errorf("%w: status: %s, body:\n%s",
			ErrPriceNotFound, resp.Status, misc.BytesLimit(body, 2000))
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status: %s, body:\n%s",
			ErrPriceSource, resp.Status, misc.BytesLimit(body, 2000))
	}

	priceResp := priceAPIResponse{}
	if err = json.Unmarshal(body, &priceResp); err != nil {
		return 0, fmt.Errorf("%w: error unmarshalling price API response body, status: %s, body:\n%s,\nerr: %v",
			ErrPriceSource, resp.Status, misc.BytesLimit(body, 2000), err)
	}
	if priceResp.Price < 0 {
		return 0, fmt.Errorf("%w: negative price %f for URL: %s", ErrPriceSource, priceResp.Price, productURL)
	}

	if c.Redis != nil {
		if err = c.Redis.Set(ctx, cacheKey, strconv.FormatFloat(priceResp.Price, 'f', -1, 64), priceCacheTTL).Err(); err != nil {
			c.Logger.Errorf("FetchPrice: Error setting Redis cache with key: %s, err: %v", cacheKey, err)
		}
	}
	return priceResp.Price, nil
}
