package textutil

import "testing"

func TestCanonicalLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Maggi 2-Minute Noodles", "maggi 2-minute noodles"},
		{"  Sting  ", "sting"},
		{"", ""},
		{"   ", ""},
		{"ＣＯＣＡ Cola", "coca cola"},
		{"Crème Brûlée", "crème brûlée"},
		{"two  spaces", "two  spaces"},
	}
	for _, tc := range tests {
		if got := CanonicalLabel(tc.in); got != tc.want {
			t.Fatalf("CanonicalLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalLabelIdempotent(t *testing.T) {
	for _, in := range []string{"Sting Energy Drink", "ÄPFEL", "ﬁzzy pop"} {
		once := CanonicalLabel(in)
		if twice := CanonicalLabel(once); twice != once {
			t.Fatalf("CanonicalLabel not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestImageStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Maggi 2-Minute Noodles", "maggi_2-minute_noodles"},
		{"sting", "sting"},
		{"AC/DC cola", "ac-dc_cola"},
		{"what?", "what"},
		{"", "unknown"},
		{"../", "-"},
	}
	for _, tc := range tests {
		if got := ImageStem(tc.in); got != tc.want {
			t.Fatalf("ImageStem(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", "sting", "other"); got != "sting" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FirstNonEmpty("", " "); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
