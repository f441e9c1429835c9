// Package fetchrpc carries the cache fetch boundary over Connect. Keys travel
// as google.protobuf.StringValue and content as google.protobuf.Struct, so no
// generated code is needed on either side.
package fetchrpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/odvcencio/dereference/cache"
)

const (
	// ServiceName is the fully-qualified name of the cache service.
	ServiceName = "dereference.cache.v1.CacheService"
	// FetchProcedure is the path of the Fetch RPC.
	FetchProcedure = "/" + ServiceName + "/Fetch"
	// RequestIDHeader carries the id of the fetch attempt.
	RequestIDHeader = "Dereference-Request-Id"
)

// Client is a cache.Fetcher backed by a remote CacheService.
type Client struct {
	fetch *connect.Client[wrapperspb.StringValue, structpb.Struct]
}

// NewClient creates a client for the service at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	url := strings.TrimRight(baseURL, "/") + FetchProcedure
	return &Client{
		fetch: connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, url, opts...),
	}
}

// Fetch resolves key remotely. Server failures come back as ServerError
// entries, malformed content as Invalid, and transport failures as errors.
func (c *Client) Fetch(ctx context.Context, key string) (cache.Entry, error) {
	req := connect.NewRequest(wrapperspb.String(key))
	if id, ok := cache.RequestID(ctx); ok {
		req.Header().Set(RequestIDHeader, id)
	}
	res, err := c.fetch.CallUnary(ctx, req)
	if err != nil {
		return fromError(key, err)
	}
	return Decode(key, res.Msg), nil
}

func fromError(key string, err error) (cache.Entry, error) {
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return nil, fmt.Errorf("fetch %q: %w", key, cache.ErrNotFound)
	case connect.CodeDataLoss:
		return cache.Unavailable{ID: key, Reason: cache.Invalid{}}, nil
	case connect.CodeInternal:
		var ce *connect.Error
		if errors.As(err, &ce) {
			return cache.Unavailable{ID: key, Reason: cache.ServerError{Message: ce.Message()}}, nil
		}
	}
	return nil, fmt.Errorf("fetch %q: %w", key, err)
}
