package apifootball

import (
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestStatValue(t *testing.T) {
	cases := []struct {
		raw      string
		count    int
		fraction float64
	}{
		{raw: `"32%"`, count: 32, fraction: 0.32},
		{raw: `"0.45"`, count: 0, fraction: 0.45},
		{raw: `55`, count: 55, fraction: 0.55},
		{raw: `7`, count: 7, fraction: 0.07},
		{raw: `1`, count: 1, fraction: 0.01},
		{raw: `"1%"`, count: 1, fraction: 0.01},
		{raw: `"1"`, count: 1, fraction: 0.01},
		{raw: `0.6`, count: 1, fraction: 0.6},
		{raw: `1.5`, count: 2, fraction: 0.015},
		{raw: `0`, count: 0, fraction: 0},
		{raw: `null`, count: 0, fraction: 0},
		{raw: `"n/a"`, count: 0, fraction: 0},
		{raw: `-3`, count: 0, fraction: 0},
		{raw: `"250%"`, count: 250, fraction: 1},
	}

	for _, tc := range cases {
		var v StatValue
		if err := sonic.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if got := v.Count(); got != tc.count {
			t.Fatalf("count %s: got=%d want=%d", tc.raw, got, tc.count)
		}
		if got := v.Fraction(); got < tc.fraction-1e-9 || got > tc.fraction+1e-9 {
			t.Fatalf("fraction %s: got=%v want=%v", tc.raw, got, tc.fraction)
		}
	}
}

func TestHasProviderErrors(t *testing.T) {
	for raw, want := range map[string]bool{
		``:                       false,
		`[]`:                     false,
		`{}`:                     false,
		`null`:                   false,
		`{"token":"missing"}`:    true,
		`["plan limit reached"]`: true,
	} {
		if got := hasProviderErrors([]byte(raw)); got != want {
			t.Fatalf("hasProviderErrors(%q): got=%v want=%v", raw, got, want)
		}
	}
}
