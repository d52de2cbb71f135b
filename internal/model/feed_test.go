package model

import "testing"

func TestParseFeedMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FeedMode
		wantErr bool
	}{
		{"empty defaults to personalized", "", ModePersonalized, false},
		{"personalized", "personalized", ModePersonalized, false},
		{"trending", "trending", ModeTrending, false},
		{"exploratory", "exploratory", ModeExploratory, false},
		{"unknown rejected", "viral", "", true},
		{"case sensitive", "Trending", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFeedMode(tt.input)
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("mode = %q, want %q", got, tt.want)
			}
		})
	}
}
