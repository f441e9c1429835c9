package fetchrpc

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/odvcencio/dereference/cache"
	"github.com/odvcencio/dereference/observability"
)

const eventSource = "fetchrpc"

type handler struct {
	fetcher  cache.Fetcher
	observer observability.Observer
}

// NewHandler exposes fetcher as a CacheService. It returns the path to mount
// the handler on, the way generated Connect constructors do.
func NewHandler(fetcher cache.Fetcher, obs observability.Observer, opts ...connect.HandlerOption) (string, http.Handler) {
	h := &handler{fetcher: fetcher, observer: obs}
	return FetchProcedure, connect.NewUnaryHandler(FetchProcedure, h.fetch, opts...)
}

func (h *handler) fetch(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[structpb.Struct], error) {
	key := strings.TrimSpace(req.Msg.GetValue())
	requestID := req.Header().Get(RequestIDHeader)
	if key == "" {
		return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeInvalidArgument, errors.New("key is required")))
	}
	if h.fetcher == nil {
		return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeUnimplemented, errors.New("no fetcher configured")))
	}
	if requestID != "" {
		ctx = cache.WithRequestID(ctx, requestID)
	}

	entry, err := h.fetcher.Fetch(ctx, key)
	if err != nil {
		code := connect.CodeInternal
		switch {
		case errors.Is(err, cache.ErrNotFound):
			code = connect.CodeNotFound
		case errors.Is(err, context.DeadlineExceeded):
			code = connect.CodeDeadlineExceeded
		case errors.Is(err, context.Canceled):
			code = connect.CodeCanceled
		}
		return nil, h.fail(ctx, key, requestID, connect.NewError(code, err))
	}

	switch e := entry.(type) {
	case cache.Available:
		msg, err := Encode(e)
		if err != nil {
			return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeDataLoss, err))
		}
		observability.Emit(ctx, h.observer, eventSource, observability.EventRPCFetchServed, observability.LevelVerbose, map[string]any{
			"key":        key,
			"request_id": requestID,
		})
		return connect.NewResponse(msg), nil
	case cache.Unavailable:
		switch r := e.Reason.(type) {
		case cache.ServerError:
			return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeInternal, errors.New(r.Message)))
		case cache.NotRequested:
			return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeNotFound, cache.ErrNotFound))
		}
	}
	return nil, h.fail(ctx, key, requestID, connect.NewError(connect.CodeDataLoss, errors.New("invalid entry")))
}

func (h *handler) fail(ctx context.Context, key, requestID string, err *connect.Error) error {
	observability.Emit(ctx, h.observer, eventSource, observability.EventRPCFetchFailed, observability.LevelWarning, map[string]any{
		"key":        key,
		"request_id": requestID,
		"code":       err.Code().String(),
		"error":      err.Message(),
	})
	return err
}
