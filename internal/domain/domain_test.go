package domain

import (
	"reflect"
	"testing"
	"time"
)

func TestThemeToggled(t *testing.T) {
	if ThemeDark.Toggled() != ThemeLight || ThemeLight.Toggled() != ThemeDark {
		t.Fatal("toggle must flip dark <-> light")
	}
	if ParseTheme("LIGHT") != ThemeLight || ParseTheme("neon") != ThemeDark || ParseTheme("") != ThemeDark {
		t.Fatal("unexpected ParseTheme result")
	}
}

func TestPreferencesNormalized(t *testing.T) {
	p := Preferences{Theme: "light", Favorites: []string{"a", "b", "a", "", "c", "b"}}
	want := Preferences{Theme: ThemeLight, Favorites: []string{"a", "b", "c"}}
	if got := p.Normalized(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
	if got := (Preferences{}).Normalized(); !reflect.DeepEqual(got, DefaultPreferences()) {
		t.Fatalf("zero value must normalize to defaults, got %+v", got)
	}
}

func TestParseWindow(t *testing.T) {
	cases := map[string]Window{"": Window1d, "1": Window1d, "30": Window30d, " 365 ": Window365d}
	for in, want := range cases {
		got, err := ParseWindow(in)
		if err != nil || got != want {
			t.Fatalf("%q: want %d, got %d (%v)", in, want, got, err)
		}
	}
	for _, in := range []string{"7", "abc", "-1"} {
		if _, err := ParseWindow(in); err != ErrInvalidWindow {
			t.Fatalf("%q: expected ErrInvalidWindow, got %v", in, err)
		}
	}
}

func TestPricePointTime(t *testing.T) {
	p := PricePoint{Timestamp: 1700000000000}
	if want := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC); !p.Time().Equal(want) {
		t.Fatalf("want %v, got %v", want, p.Time())
	}
}
