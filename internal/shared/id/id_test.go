package id

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{SessionPrefix, RequestPrefix, SpanPrefix} {
		id := gen.GenerateWithPrefix(prefix)

		if !strings.HasPrefix(id, prefix+"_") {
			t.Errorf("ID should start with '%s_', got: %s", prefix, id)
		}
		if len(id) != len(prefix)+1+26 {
			t.Errorf("Unexpected ID length %d for %s", len(id), id)
		}
	}
}

func TestSessionToken(t *testing.T) {
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	if !IsSessionToken(token.String()) {
		t.Errorf("Generated token should be valid, got: %s", token)
	}

	invalid := []string{
		"",
		"abc123",
		"sess_01ARZ3NDEKTSV4RRFFQ69G5FAV",
		"req_01ARZ3NDEKTSV4RRFFQ69G5FAV.00112233445566778899",
		"sess_01ARZ3NDEKTSV4RRFFQ69G5FAV.zz112233445566778899",
	}
	for _, s := range invalid {
		if IsSessionToken(s) {
			t.Errorf("Token %q should be invalid", s)
		}
	}
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	token, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken failed: %v", err)
	}

	ts, err := Timestamp(token.String())
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if ts.Before(before) || ts.After(time.Now().Add(time.Second)) {
		t.Errorf("Timestamp %v out of range", ts)
	}
}

func TestConcurrentTokens(t *testing.T) {
	const n = 200
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[SessionToken]bool, n)
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := NewSessionToken()
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[token] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("Expected %d unique tokens, got %d", n, len(seen))
	}
}
