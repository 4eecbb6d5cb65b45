package room

import (
	"context"
	"testing"
	"time"
)

func newTestService() *Service {
	return New(Config{
		URL:       "https://lk.example",
		APIKey:    "test-api-key",
		APISecret: "test-api-secret-test-api-secret!",
		TokenTTL:  5 * time.Minute,
	}, nil, nil)
}

func TestCreateToken(t *testing.T) {
	s := newTestService()

	token, err := s.CreateToken("user-1", "Alice", "standup")
	if err != nil {
		t.Fatalf("create token failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	// JWTs are three dot-separated segments.
	segments := 1
	for _, ch := range token {
		if ch == '.' {
			segments++
		}
	}
	if segments != 3 {
		t.Errorf("expected a JWT with 3 segments, got %d", segments)
	}
}

func TestCreateToken_DistinctPerIdentity(t *testing.T) {
	s := newTestService()

	t1, err := s.CreateToken("user-1", "Alice", "standup")
	if err != nil {
		t.Fatalf("create token failed: %v", err)
	}
	t2, err := s.CreateToken("user-2", "Bob", "standup")
	if err != nil {
		t.Fatalf("create token failed: %v", err)
	}
	if t1 == t2 {
		t.Error("expected distinct tokens for distinct identities")
	}
}

func TestDefaultTokenTTL(t *testing.T) {
	s := New(Config{URL: "https://lk.example", APIKey: "k", APISecret: "s"}, nil, nil)
	if s.cfg.TokenTTL != 5*time.Minute {
		t.Errorf("expected default token TTL 5m, got %v", s.cfg.TokenTTL)
	}
}

func TestEndCall_WithoutStoreReturnsEmptySummary(t *testing.T) {
	s := newTestService()
	sum := s.EndCall(context.Background(), "standup")
	if sum.Text != "" || len(sum.KeyPoints) != 0 {
		t.Errorf("expected empty summary without store, got %+v", sum)
	}
}
