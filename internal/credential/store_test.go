package credential

import (
	"errors"
	"testing"
)

func TestMapLookup(t *testing.T) {
	store := Map{"28169178": "buvid3=abc; SESSDATA=xyz"}

	cookie, err := store.Lookup("28169178")
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if cookie != "buvid3=abc; SESSDATA=xyz" {
		t.Errorf("cookie = %q", cookie)
	}
}

func TestMapLookupMissing(t *testing.T) {
	store := Map{"1": ""}

	if _, err := store.Lookup("2"); !errors.Is(err, ErrMissing) {
		t.Errorf("expected ErrMissing for absent uid, got %v", err)
	}
	// an empty cookie is as unusable as an absent one
	if _, err := store.Lookup("1"); !errors.Is(err, ErrMissing) {
		t.Errorf("expected ErrMissing for empty cookie, got %v", err)
	}
}
