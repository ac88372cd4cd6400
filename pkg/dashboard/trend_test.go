package dashboard

import "testing"

func TestTrend(t *testing.T) {
	cases := []struct {
		name    string
		prior   float64
		current float64
		want    float64
	}{
		{"both zero", 0, 0, 0},
		{"from zero", 0, 50, 100},
		{"growth", 100, 150, 50},
		{"decline", 100, 50, -50},
		{"rounding", 3, 4, 33},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Trend(tc.prior, tc.current); got != tc.want {
				t.Fatalf("Trend(%v, %v) = %v, want %v", tc.prior, tc.current, got, tc.want)
			}
		})
	}
}
