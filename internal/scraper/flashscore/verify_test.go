package flashscore

import (
	"errors"
	"testing"

	"github.com/courtsight/flashcourt/internal/pkg/urls"
)

func TestVerifyLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		segment  string
		wantErr  bool
	}{
		{
			name:     "summary page",
			location: "https://www.flashscore.co.ke/match/basketball/lakers-a1/celtics-b2/summary/?mid=m1",
			segment:  urls.SummaryPath,
		},
		{
			name:     "odds page",
			location: "https://www.flashscore.co.ke/match/basketball/lakers-a1/celtics-b2/odds/home-away/ft-including-ot/?mid=m1",
			segment:  urls.HomeAwayPath,
		},
		{
			name:     "fragment form",
			location: "https://www.flashscore.co.ke/match/basketball/m1/#/match-summary/match-summary",
			segment:  urls.SummaryPath,
		},
		{
			name:     "redirected off basketball",
			location: "https://www.flashscore.co.ke/football/",
			segment:  urls.SummaryPath,
			wantErr:  true,
		},
		{
			name:     "wrong sub page",
			location: "https://www.flashscore.co.ke/match/basketball/lakers-a1/celtics-b2/summary/?mid=m1",
			segment:  urls.H2HPath,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyLocation(tt.location, tt.segment)
			if tt.wantErr {
				if !errors.Is(err, ErrPageLoad) {
					t.Errorf("verifyLocation() error = %v, want ErrPageLoad", err)
				}
				return
			}
			if err != nil {
				t.Errorf("verifyLocation() error: %v", err)
			}
		})
	}
}
