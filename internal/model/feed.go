package model

import "fmt"

// FeedMode selects the feed-assembly tier. The set is closed:
// unrecognized values are rejected, not passed through.
type FeedMode string

const (
	ModePersonalized FeedMode = "personalized"
	ModeTrending     FeedMode = "trending"
	ModeExploratory  FeedMode = "exploratory"
)

// ParseFeedMode maps a query-string value to a FeedMode.
// Empty input defaults to personalized.
func ParseFeedMode(s string) (FeedMode, error) {
	switch s {
	case "", string(ModePersonalized):
		return ModePersonalized, nil
	case string(ModeTrending):
		return ModeTrending, nil
	case string(ModeExploratory):
		return ModeExploratory, nil
	default:
		return "", fmt.Errorf("unknown feed mode %q", s)
	}
}

// FeedRequest describes one feed retrieval call. UserID is empty for
// anonymous callers, who are always served the trending tier.
type FeedRequest struct {
	UserID   string
	Mode     FeedMode
	Page     int
	PageSize int
}

// FeedResponse is an ordered page of videos. Ordering is the contract:
// callers must not re-sort.
type FeedResponse struct {
	Videos  []VideoResponse `json:"videos"`
	HasMore bool            `json:"hasMore"`

	// FellBack reports that a personalized request was served from the
	// trending tier. Internal observability only, never serialized.
	FellBack bool `json:"-"`
}
