package digest

import (
	"strings"
	"testing"
)

func TestRedactText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"смотрите https://shop.example/item?id=1 тут", "смотрите [link] тут"},
		{"почта ivan@example.com ок", "почта [email] ок"},
		{"заказ 1234567 готов", "заказ *** готов"},
		{"звоните +7 999 123-45-67", "звоните ***"},
		{"строка\nс переносом", "строка с переносом"},
		{"  обрезать пробелы  ", "обрезать пробелы"},
	}
	for _, c := range cases {
		if got := RedactText(c.in); got != c.want {
			t.Errorf("RedactText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRedactTextCapsLength(t *testing.T) {
	long := strings.Repeat("а", 300) // two bytes per rune
	got := RedactText(long)
	if len(got) > redactMaxLen {
		t.Errorf("len = %d, want <= %d", len(got), redactMaxLen)
	}
	if len(got)%2 != 0 {
		t.Error("cut must land on a rune boundary")
	}
}
