package platform

import (
	"errors"
	"testing"
)

func TestNewProvider_UsesRegisteredFunc(t *testing.T) {
	orig := NewProviderFunc
	defer func() { NewProviderFunc = orig }()

	var gotSource string
	NewProviderFunc = func(source string) (Automation, error) {
		gotSource = source
		return nil, nil
	}

	if _, err := NewProvider("apps.yaml"); err != nil {
		t.Fatal(err)
	}
	if gotSource != "apps.yaml" {
		t.Errorf("source: got %q, want %q", gotSource, "apps.yaml")
	}
}

func TestNewProvider_Unregistered(t *testing.T) {
	// Temporarily clear the provider func to simulate a missing backend
	orig := NewProviderFunc
	NewProviderFunc = nil
	defer func() { NewProviderFunc = orig }()

	_, err := NewProvider("")
	if err == nil {
		t.Fatal("expected error without a registered backend")
	}
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got: %v", err)
	}
}
