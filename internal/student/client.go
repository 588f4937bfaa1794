// Package student talks to the external student-group service. The service
// is strictly best-effort from the booking engine's point of view: every
// failure mode (timeout, non-200, malformed body, unknown group) degrades to
// "no size information" and is logged, never propagated. Booking creation
// must not fail because a directory service is down.
package student

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// lookupTimeout bounds a single upstream call so a slow group service can
// never stall the booking path.
const lookupTimeout = 2 * time.Second

// cacheTTL controls how long resolved group sizes are reused. Group sizes
// change rarely; a short TTL keeps the worst-case staleness small.
const cacheTTL = 10 * time.Minute

// groupResponse mirrors the upstream payload.
type groupResponse struct {
	Name         string `json:"name"`
	StudentCount int    `json:"studentCount"`
}

// Client resolves student-group sizes by name, with an optional Redis cache
// in front of the HTTP call.
type Client struct {
	baseURL string
	httpc   *http.Client
	rdb     *redis.Client // nil disables caching
	log     *logrus.Entry
}

// NewClient builds a Client. An empty baseURL yields a client whose lookups
// always miss, which keeps the engine's fail-open path uniform when no group
// service is configured. rdb may be nil.
func NewClient(baseURL string, rdb *redis.Client, log *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: lookupTimeout},
		rdb:     rdb,
		log:     log.WithField("component", "student-group-client"),
	}
}

// GroupSize returns the number of students in the named group. The second
// return value is false whenever the size could not be determined; callers
// treat that as zero occupants per the fail-open policy.
func (c *Client) GroupSize(ctx context.Context, name string) (int, bool) {
	if c.baseURL == "" || name == "" {
		return 0, false
	}

	cacheKey := "student-group:" + name
	if c.rdb != nil {
		if v, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if n, convErr := strconv.Atoi(v); convErr == nil {
				return n, true
			}
		}
	}

	reqURL := fmt.Sprintf("%s/group/%s?withDetails=false", c.baseURL, url.PathEscape(name))
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.warn(name, reqURL, err)
		return 0, false
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.warn(name, reqURL, err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.warn(name, reqURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
		return 0, false
	}
	var group groupResponse
	if err := json.NewDecoder(resp.Body).Decode(&group); err != nil {
		c.warn(name, reqURL, err)
		return 0, false
	}

	if c.rdb != nil {
		// Cache write failures are as non-fatal as everything else here.
		_ = c.rdb.Set(ctx, cacheKey, strconv.Itoa(group.StudentCount), cacheTTL).Err()
	}
	return group.StudentCount, true
}

func (c *Client) warn(name, reqURL string, err error) {
	c.log.WithFields(logrus.Fields{
		"group": name,
		"url":   reqURL,
	}).WithError(err).Warn("failed to fetch student group")
}
