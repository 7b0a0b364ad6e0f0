package domain

import "testing"

func TestGaugeBandBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  RiskBand
	}{
		{0, RiskBandLow},
		{29, RiskBandLow},
		{30, RiskBandMedium},
		{50, RiskBandMedium},
		{70, RiskBandMedium},
		{71, RiskBandHigh},
		{100, RiskBandHigh},
	}
	for _, tc := range cases {
		if got := GaugeBand(tc.score); got != tc.want {
			t.Fatalf("GaugeBand(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestAdvisoryLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  RiskBand
	}{
		{29, RiskBandLow},
		{30, RiskBandMedium},
		{75, RiskBandMedium},
		{76, RiskBandHigh},
	}
	for _, tc := range cases {
		if got := AdvisoryLevel(tc.score); got != tc.want {
			t.Fatalf("AdvisoryLevel(%d) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
