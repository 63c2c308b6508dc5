package extract

import (
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json {\"a\":1} ```  ", `{"a":1}`},
		{"no fences here", "no fences here"},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Fatalf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseObjectRescue(t *testing.T) {
	obj, ok := parseObject(`prefix {"k":"v"} suffix`)
	if !ok || obj["k"] != "v" {
		t.Fatalf("rescue parse failed: %v %v", obj, ok)
	}
	if _, ok := parseObject(`no braces at all`); ok {
		t.Fatal("expected parse failure without braces")
	}
	if _, ok := parseObject(`{"unterminated": `); ok {
		t.Fatal("expected parse failure for broken object")
	}
	if _, ok := parseObject(`[1,2,3]`); ok {
		t.Fatal("a JSON array is not an object")
	}
}

func TestNormalizePriority(t *testing.T) {
	cases := map[string]string{
		"Low": "Low", "low": "Low", "LOW": "Low",
		"Medium": "Medium", "medium": "Medium",
		"High": "High", "hIgH": "High",
		"  high  ": "High", "urgent": "Medium", "": "Medium",
	}
	for in, want := range cases {
		if got := NormalizePriority(in); got != want {
			t.Fatalf("NormalizePriority(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunePrefixMultibyte(t *testing.T) {
	s := strings.Repeat("ü", 600)
	got := runePrefix(s, 500)
	if len([]rune(got)) != 500 {
		t.Fatalf("expected 500 runes, got %d", len([]rune(got)))
	}
	if !strings.HasPrefix(s, got) {
		t.Fatal("prefix must be a prefix of the input")
	}
}

func TestAsString(t *testing.T) {
	if asString(nil) != "" {
		t.Fatal("nil must become empty placeholder")
	}
	if asString(" padded ") != "padded" {
		t.Fatal("strings are trimmed")
	}
	if asString(float64(5551234)) != "5551234" {
		t.Fatalf("numeric phone should flatten without exponent, got %q", asString(float64(5551234)))
	}
}
