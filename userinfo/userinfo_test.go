// SPDX-License-Identifier: GPL-2.0-or-later

package userinfo

import "testing"

func TestParseSerializeRoundTrip(t *testing.T) {
	s := `\name\Luke\rate\25000\snaps\40`
	info := Parse(s)
	if info.Get("name") != "Luke" {
		t.Errorf("Get(name) = %q, want Luke", info.Get("name"))
	}
	if got := info.String(); got != s {
		t.Errorf("String() = %q, want %q", got, s)
	}
}

func TestSetOverflowRejected(t *testing.T) {
	info := New()
	huge := make([]byte, MaxInfoString)
	for i := range huge {
		huge[i] = 'a'
	}
	if ok := info.Set("k", string(huge)); ok {
		t.Errorf("Set() with oversized value succeeded, want rejection")
	}
	if info.Has("k") {
		t.Errorf("Has(k) = true after rejected Set, want false")
	}
}

func TestDelete(t *testing.T) {
	info := Parse(`\a\1\b\2`)
	info.Delete("a")
	if info.Has("a") {
		t.Errorf("Has(a) = true after Delete, want false")
	}
	if got, want := info.String(), `\b\2`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSanitizeNameDefault(t *testing.T) {
	if got := SanitizeName("   "); got != defaultName {
		t.Errorf("SanitizeName(spaces) = %q, want %q", got, defaultName)
	}
	if got := SanitizeName(""); got != defaultName {
		t.Errorf("SanitizeName(empty) = %q, want %q", got, defaultName)
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	names := []string{"Luke@@@@@Skywalker", "   *Obi Wan", "normal", "a\x01b\x02c"}
	for _, n := range names {
		once := SanitizeName(n)
		twice := SanitizeName(once)
		if once != twice {
			t.Errorf("SanitizeName not idempotent for %q: once=%q twice=%q", n, once, twice)
		}
	}
}

func TestSanitizeNameCollapsesRuns(t *testing.T) {
	got := SanitizeName("aaa@@@@bbb")
	for i := 0; i+2 < len(got); i++ {
		if got[i] == got[i+1] && got[i+1] == got[i+2] && got[i] == '@' {
			t.Errorf("SanitizeName(%q) kept a run of 3+ '@': %q", "aaa@@@@bbb", got)
		}
	}
}

func TestValidForcePowers(t *testing.T) {
	cases := []struct {
		s    string
		want bool
	}{
		{"2-2-00000000000000000000", true},
		{"22-2-0000000000000000000", false},
		{"2-2-0000000", false},
		{"2x2-00000000000000000000", false},
	}
	for _, c := range cases {
		if got := ValidForcePowers(c.s); got != c.want {
			t.Errorf("ValidForcePowers(%q) = %v, want %v", c.s, got, c.want)
		}
	}
}
