package provider

import "testing"

func TestNew(t *testing.T) {
	for _, name := range []string{"itunes", "Deezer", " ITUNES ", "musicbrainz"} {
		p, err := New(name, nil)
		if err != nil {
			t.Fatalf("New(%q): unexpected error: %v", name, err)
		}
		if p.Name() == "" {
			t.Errorf("New(%q): empty provider name", name)
		}
	}

	if _, err := New("spotify", nil); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewAll(t *testing.T) {
	providers, err := NewAll(Names, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(providers) != 3 || providers[0].Name() != "itunes" || providers[1].Name() != "deezer" || providers[2].Name() != "musicbrainz" {
		t.Errorf("unexpected providers: %v", providers)
	}

	if _, err := NewAll(nil, nil); err == nil {
		t.Error("expected error for empty provider list")
	}
	if _, err := NewAll([]string{"itunes", "bogus"}, nil); err == nil {
		t.Error("expected error for unknown provider in list")
	}
}
