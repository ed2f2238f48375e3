package presence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const fetchConcurrency = 4

type fetchResponse struct {
	Success bool    `json:"success"`
	Data    *Record `json:"data"`
}

// FetchPresence reads a single user's presence over REST.
//
// Failures are logged and reported as (nil, false). A successful result for a
// tracked user is written to the store unless a newer record for the same user
// arrived from the gateway while the request was in flight. Results for users
// that are not tracked are only returned, the gateway never refreshes them.
func (c *Client) FetchPresence(ctx context.Context, id string) (*Record, bool) {
	rev := c.store.Revision()

	rec, err := c.fetch(ctx, id)
	if err != nil {
		c.metrics.PresenceFetched(false)
		c.log.Warnw("failed to fetch presence",
			"user_id", id,
			"error", err,
		)

		return nil, false
	}

	c.metrics.PresenceFetched(true)

	if !c.tracked(id) {
		return rec, true
	}

	if !c.store.PutIfUnchanged(*rec, rev) {
		c.log.Debugw("discarding stale fetched presence",
			"user_id", id,
		)
	}

	return rec, true
}

// FetchAll fetches the given users concurrently and returns the ones that succeeded
func (c *Client) FetchAll(ctx context.Context, ids []string) map[string]Record {
	var (
		mx  sync.Mutex
		out = make(map[string]Record, len(ids))
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)

	for _, id := range ids {
		id := id

		eg.Go(func() error {
			rec, ok := c.FetchPresence(egCtx, id)
			if !ok {
				return nil
			}

			mx.Lock()
			out[id] = *rec
			mx.Unlock()

			return nil
		})
	}

	_ = eg.Wait()

	return out
}

func (c *Client) fetch(ctx context.Context, id string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opt.FetchTimeout)
	defer cancel()

	uri := fmt.Sprintf("%s/users/%s", strings.TrimSuffix(c.opt.RestURL, "/"), url.PathEscape(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.opt.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var result fetchResponse
	if err := readResponse(resp, &result); err != nil {
		return nil, err
	}

	if !result.Success || result.Data == nil {
		return nil, fmt.Errorf("presence service reported no data for %s", id)
	}

	if result.Data.UserID() == "" {
		result.Data.DiscordUser.ID = id
	}

	return result.Data, nil
}

func readResponse(resp *http.Response, out interface{}) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, out)
}
