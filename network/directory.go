package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/automoto/bouncerz-mp/shared/directory"
)

var ErrNoServers = errors.New("no servers listed")

var directoryClient = &http.Client{Timeout: 5 * time.Second}

// ListServers fetches the server directory from the master. query may be nil.
func ListServers(ctx context.Context, masterURL string, query url.Values) ([]directory.ServerInfo, error) {
	target := masterURL + directory.PathList
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := directoryClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("master server query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("master server returned status %d", resp.StatusCode)
	}

	var servers []directory.ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&servers); err != nil {
		return nil, fmt.Errorf("decode server list: %w", err)
	}
	return servers, nil
}

// PickServer returns the listed server running the fewest rooms, optionally
// restricted to a region.
func PickServer(ctx context.Context, masterURL, region string) (directory.ServerInfo, error) {
	query := url.Values{directory.QuerySort: {directory.SortRooms}}
	if region != "" {
		query.Set(directory.QueryRegion, region)
	}
	servers, err := ListServers(ctx, masterURL, query)
	if err != nil {
		return directory.ServerInfo{}, err
	}
	for _, s := range servers {
		if region == "" || s.Region == region {
			return s, nil
		}
	}
	return directory.ServerInfo{}, ErrNoServers
}
