package token

import (
	"errors"
	"testing"

	"github.com/hyp3rd/storefront/internal/sentinel"
)

func TestNewRedisClient_RequiresAddress(t *testing.T) {
	_, err := NewRedisClient("   ", "", 0)
	if !errors.Is(err, sentinel.ErrParamCannotBeEmpty) {
		t.Fatalf("expected ErrParamCannotBeEmpty, got %v", err)
	}
}

func TestNewRedisClient_BuildsClient(t *testing.T) {
	client, err := NewRedisClient("localhost:6379", "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient error: %v", err)
	}

	if client == nil {
		t.Fatal("expected a client")
	}

	_ = client.Close()
}

func TestNewRedis_Validation(t *testing.T) {
	// Missing client.
	if _, err := NewRedis(WithSessionID("sess-1")); !errors.Is(err, sentinel.ErrNilClient) {
		t.Fatalf("expected ErrNilClient, got %v", err)
	}

	// Missing session id.
	client, err := NewRedisClient("localhost:6379", "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient error: %v", err)
	}

	defer func() { _ = client.Close() }()

	if _, err := NewRedis(WithRedisClient(client)); !errors.Is(err, sentinel.ErrParamCannotBeEmpty) {
		t.Fatalf("expected ErrParamCannotBeEmpty, got %v", err)
	}
}

func TestRedis_KeyScoping(t *testing.T) {
	client, err := NewRedisClient("localhost:6379", "", 0)
	if err != nil {
		t.Fatalf("NewRedisClient error: %v", err)
	}

	defer func() { _ = client.Close() }()

	store, err := NewRedis(WithRedisClient(client), WithSessionID("sess-1"))
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}

	if got := store.key(KindCart); got != "storefront:token:sess-1:cart" {
		t.Fatalf("unexpected key: %q", got)
	}
}
