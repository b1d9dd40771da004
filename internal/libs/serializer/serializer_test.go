package serializer

import (
	"errors"
	"testing"

	"github.com/hyp3rd/storefront/internal/sentinel"
)

type payload struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

func TestRegistry_RoundTrip(t *testing.T) {
	for _, name := range []string{"default", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			ser, err := New(name)
			if err != nil {
				t.Fatalf("New(%q) error: %v", name, err)
			}

			in := payload{Token: "tok-1", Count: 3}

			data, err := ser.Marshal(&in)
			if err != nil {
				t.Fatalf("Marshal error: %v", err)
			}

			var out payload

			err = ser.Unmarshal(data, &out)
			if err != nil {
				t.Fatalf("Unmarshal error: %v", err)
			}

			if out != in {
				t.Fatalf("round trip mismatch: %+v != %+v", out, in)
			}
		})
	}
}

func TestRegistry_UnknownSerializer(t *testing.T) {
	_, err := New("carrier-pigeon")
	if !errors.Is(err, sentinel.ErrSerializerNotFound) {
		t.Fatalf("expected ErrSerializerNotFound, got %v", err)
	}
}

func TestRegistry_EmptyName(t *testing.T) {
	_, err := New("")
	if !errors.Is(err, sentinel.ErrParamCannotBeEmpty) {
		t.Fatalf("expected ErrParamCannotBeEmpty, got %v", err)
	}
}

func TestRegistry_CustomRegistration(t *testing.T) {
	registry := NewSerializerRegistry()
	registry.Register("json2", func() ISerializer { return &DefaultJSONSerializer{} })

	ser, err := registry.New("json2")
	if err != nil || ser == nil {
		t.Fatalf("expected custom serializer, got %v err=%v", ser, err)
	}
}
