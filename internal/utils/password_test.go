package utils

import (
	"strings"
	"testing"
)

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		p := GeneratePassword(10)
		if len(p) != 10 {
			t.Fatalf("expected length 10, got %d", len(p))
		}
		if seen[p] {
			t.Fatal("generated passwords should not repeat")
		}
		seen[p] = true
	}

	if len(GeneratePassword(3)) != 8 {
		t.Error("lengths under 8 are raised to 8")
	}
}

func TestCheckPasswordStrength(t *testing.T) {
	cases := map[string]bool{
		"Adm1nPass":               true,
		"short1A":                 false,
		"alllowercase1":           false,
		"ALLUPPERCASE1":           false,
		"NoDigitsHere":            false,
		strings.Repeat("Aa1", 30): false,
	}
	for password, ok := range cases {
		msg := CheckPasswordStrength(password)
		if ok && msg != "" {
			t.Errorf("%q should pass, got %q", password, msg)
		}
		if !ok && msg == "" {
			t.Errorf("%q should fail", password)
		}
	}
}

func TestNameInitials(t *testing.T) {
	cases := map[string]string{
		"Jordan Tester":     "JT",
		"cher":              "C",
		"Mary Jane Watson":  "MW",
		"  padded   name  ": "PN",
		"":                  "",
	}
	for name, want := range cases {
		if got := NameInitials(name); got != want {
			t.Errorf("NameInitials(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Spring Campaign!":    "spring-campaign",
		"  Hello   World  ":   "hello-world",
		"Already-Slugged":     "already-slugged",
		"100% Legit (Promo)":  "100-legit-promo",
		"---":                 "",
		"Ünïcode Überraschen": "n-code-berraschen",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
