package fetchrpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/odvcencio/dereference/cache"
)

// Encode converts available content into its wire form.
func Encode(a cache.Available) (*structpb.Struct, error) {
	payload := make([]any, len(a.Payload))
	for i, p := range a.Payload {
		payload[i] = p
	}
	msg, err := structpb.NewStruct(map[string]any{
		"id":      a.ID,
		"name":    a.Name,
		"payload": payload,
	})
	if err != nil {
		return nil, fmt.Errorf("encode entry %q: %w", a.ID, err)
	}
	return msg, nil
}

// Decode converts a wire message for key back into an entry. Messages that
// do not have the expected shape decode as Invalid.
func Decode(key string, msg *structpb.Struct) cache.Entry {
	invalid := cache.Unavailable{ID: key, Reason: cache.Invalid{}}
	if msg == nil {
		return invalid
	}
	fields := msg.GetFields()
	id, ok := stringField(fields, "id")
	if !ok {
		return invalid
	}
	name, ok := stringField(fields, "name")
	if !ok {
		return invalid
	}
	entry := cache.Available{ID: id, Name: name, Payload: []string{}}
	if v, present := fields["payload"]; present {
		list, ok := v.GetKind().(*structpb.Value_ListValue)
		if !ok {
			return invalid
		}
		for _, item := range list.ListValue.GetValues() {
			s, ok := item.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return invalid
			}
			entry.Payload = append(entry.Payload, s.StringValue)
		}
	}
	return entry
}

func stringField(fields map[string]*structpb.Value, name string) (string, bool) {
	v, ok := fields[name]
	if !ok {
		return "", false
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}
	return s.StringValue, true
}
