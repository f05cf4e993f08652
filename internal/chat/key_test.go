package chat

import (
	"errors"
	"testing"
)

func TestResolveShared(t *testing.T) {
	if ResolveShared() != "global" {
		t.Fatalf("unexpected shared key %q", ResolveShared())
	}
}

func TestResolveDirectSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"alice@local", "bob@local"},
		{"bob@local", "alice@local"},
		{"z@x.com", "a@x.com"},
		{"a@x.com", "a@y.com"},
	}
	for _, p := range pairs {
		ab, err := ResolveDirect(p[0], p[1])
		if err != nil {
			t.Fatal(err)
		}
		ba, err := ResolveDirect(p[1], p[0])
		if err != nil {
			t.Fatal(err)
		}
		if ab != ba {
			t.Fatalf("ResolveDirect(%q,%q)=%q != ResolveDirect(%q,%q)=%q", p[0], p[1], ab, p[1], p[0], ba)
		}
	}
}

func TestResolveDirectDistinctPairsDistinctKeys(t *testing.T) {
	k1, _ := ResolveDirect("alice@local", "bob@local")
	k2, _ := ResolveDirect("alice@local", "carol@local")
	if k1 == k2 {
		t.Fatalf("distinct pairs mapped to the same key %q", k1)
	}
	if k1 == ResolveShared() || k2 == ResolveShared() {
		t.Fatal("direct key collides with the shared room")
	}
}

func TestResolveDirectEmptyParticipant(t *testing.T) {
	for _, p := range [][2]string{{"", "bob@local"}, {"alice@local", ""}, {"", ""}} {
		_, err := ResolveDirect(p[0], p[1])
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("ResolveDirect(%q,%q): expected validation error, got %v", p[0], p[1], err)
		}
	}
}
