// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestSecretRedactionAndJSON(t *testing.T) {
	s := FromString("hunter2")
	for _, verb := range []string{"%v", "%s", "%#v", "%q"} {
		if got := fmt.Sprintf(verb, s); got != "[SECRET]" {
			t.Fatalf("verb %s leaked: %q", verb, got)
		}
	}
	b, err := json.Marshal(struct{ Password Secret }{s})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	if string(b) != `{"Password":"[SECRET]"}` {
		t.Fatalf("unexpected json marshal: %s", string(b))
	}
}

func TestSecretRevealAndZero(t *testing.T) {
	s := FromString("abc123")
	if s.Reveal() != "abc123" {
		t.Fatalf("Reveal returned %q", s.Reveal())
	}
	(&s).Zero()
	for i, b := range s.Bytes() {
		if b != 0 {
			t.Fatalf("expected zeroed byte at index %d, got %d", i, b)
		}
	}
	var empty Secret
	if !empty.IsEmpty() {
		t.Fatalf("nil secret should be empty")
	}
	(&empty).Zero()
}

func TestFromBytesCopies(t *testing.T) {
	src := []byte("pw")
	s := FromBytes(src)
	src[0] = 'X'
	if s.Reveal() != "pw" {
		t.Fatalf("FromBytes did not copy input, got %q", s.Reveal())
	}
}
