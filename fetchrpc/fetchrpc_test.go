package fetchrpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/odvcencio/dereference/cache"
	"github.com/odvcencio/dereference/observability"
	"github.com/odvcencio/dereference/state"
)

func serve(t *testing.T, fetch cache.FetchFunc, obs observability.Observer) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(NewHandler(fetch, obs))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return NewClient(server.Client(), server.URL+"/")
}

func TestFetch_Available(t *testing.T) {
	want := cache.Available{ID: "1", Name: "Luke", Payload: []string{"a new hope", "empire"}}
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		if key != "1" {
			t.Fatalf("expected key 1, got %q", key)
		}
		return want, nil
	}, nil)

	got, err := client.Fetch(context.Background(), "1")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if diff := cmp.Diff(cache.Entry(want), got); diff != "" {
		t.Fatalf("unexpected entry (-want +got):\n%s", diff)
	}
}

func TestFetch_ServerErrors(t *testing.T) {
	tests := map[string]cache.FetchFunc{
		"error": func(ctx context.Context, key string) (cache.Entry, error) {
			return nil, errors.New("Explosion")
		},
		"server error entry": func(ctx context.Context, key string) (cache.Entry, error) {
			return cache.Unavailable{ID: key, Reason: cache.ServerError{Message: "Explosion"}}, nil
		},
	}
	for name, fetch := range tests {
		t.Run(name, func(t *testing.T) {
			client := serve(t, fetch, nil)
			got, err := client.Fetch(context.Background(), "1")
			if err != nil {
				t.Fatalf("Fetch returned error: %v", err)
			}
			want := cache.Entry(cache.Unavailable{ID: "1", Reason: cache.ServerError{Message: "Explosion"}})
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("unexpected entry (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetch_NotFound(t *testing.T) {
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		return nil, cache.ErrNotFound
	}, nil)
	_, err := client.Fetch(context.Background(), "missing")
	if !errors.Is(err, cache.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetch_InvalidEntry(t *testing.T) {
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		return cache.Unavailable{ID: key, Reason: cache.Invalid{}}, nil
	}, nil)
	got, err := client.Fetch(context.Background(), "1")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if diff := cmp.Diff(cache.Entry(cache.Unavailable{ID: "1", Reason: cache.Invalid{}}), got); diff != "" {
		t.Fatalf("unexpected entry (-want +got):\n%s", diff)
	}
}

func TestFetch_EmptyKeyRejected(t *testing.T) {
	called := false
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		called = true
		return nil, nil
	}, nil)
	if _, err := client.Fetch(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if called {
		t.Fatalf("expected fetcher not to be called")
	}
}

func TestFetch_PropagatesRequestID(t *testing.T) {
	var seen string
	rec := &observability.Recorder{}
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		seen, _ = cache.RequestID(ctx)
		return cache.Available{ID: key, Name: key}, nil
	}, rec)

	ctx := cache.WithRequestID(context.Background(), "req-42")
	if _, err := client.Fetch(ctx, "1"); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if seen != "req-42" {
		t.Fatalf("expected request id req-42, got %q", seen)
	}
	events := rec.Events()
	if len(events) != 1 || events[0].Type != observability.EventRPCFetchServed || events[0].Data["request_id"] != "req-42" {
		t.Fatalf("unexpected events: %#v", events)
	}
}

func TestMachineOverConnect(t *testing.T) {
	client := serve(t, func(ctx context.Context, key string) (cache.Entry, error) {
		switch key {
		case "good":
			return cache.Available{ID: key, Name: "Good"}, nil
		case "liar":
			return cache.Available{ID: "someone-else", Name: "Liar"}, nil
		default:
			return nil, errors.New("Explosion")
		}
	}, nil)

	entries := state.NewHolder(cache.NewMap("good", "liar", "broken"))
	filter := state.NewHolder("")
	stop := cache.HandleFilterChange(client, entries, filter, cache.WithRunner(func(fn func()) { fn() }))
	defer stop()

	filter.Push("good")
	filter.Push("liar")
	filter.Push("broken")

	m := entries.Get()
	if !cache.IsAvailable(m.Lookup("good")) {
		t.Fatalf("expected good to be available, got %#v", m.Lookup("good"))
	}
	if diff := cmp.Diff(cache.Entry(cache.Unavailable{ID: "liar", Reason: cache.Invalid{}}), m.Lookup("liar")); diff != "" {
		t.Fatalf("unexpected liar entry (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(cache.Entry(cache.Unavailable{ID: "broken", Reason: cache.ServerError{Message: "Explosion"}}), m.Lookup("broken")); diff != "" {
		t.Fatalf("unexpected broken entry (-want +got):\n%s", diff)
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := map[string]map[string]any{
		"missing id":      {"name": "x"},
		"numeric name":    {"id": "k", "name": 3.0},
		"payload object":  {"id": "k", "name": "x", "payload": map[string]any{}},
		"numeric payload": {"id": "k", "name": "x", "payload": []any{"ok", 1.0}},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			msg, err := structpb.NewStruct(fields)
			if err != nil {
				t.Fatalf("NewStruct: %v", err)
			}
			got := Decode("k", msg)
			if diff := cmp.Diff(cache.Entry(cache.Unavailable{ID: "k", Reason: cache.Invalid{}}), got); diff != "" {
				t.Fatalf("unexpected entry (-want +got):\n%s", diff)
			}
		})
	}
	if _, ok := Decode("k", nil).(cache.Unavailable); !ok {
		t.Fatalf("expected nil message to decode as unavailable")
	}
}

func TestEncodeDecode(t *testing.T) {
	in := cache.Available{ID: "k", Name: "Name", Payload: []string{"p"}}
	msg, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if diff := cmp.Diff(cache.Entry(in), Decode("k", msg)); diff != "" {
		t.Fatalf("unexpected entry (-want +got):\n%s", diff)
	}
}
