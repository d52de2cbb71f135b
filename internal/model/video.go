package model

import "time"

// VideoStatus is the ingestion lifecycle state of a video.
// Transitions are one-way: processing → ready or processing → blocked.
// Once ready or blocked the record is terminal for that upload.
type VideoStatus string

const (
	StatusProcessing VideoStatus = "processing"
	StatusReady      VideoStatus = "ready"
	StatusBlocked    VideoStatus = "blocked"
)

// Video is the ranking record for a single uploaded video.
type Video struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	FileURL       string      `json:"-"`
	Duration      float64     `json:"duration"`
	Status        VideoStatus `json:"status"`
	TrendingScore float64     `json:"trendingScore"`
	LikeCount     int         `json:"likeCount"`
	Embedding     []float32   `json:"-"`
	EligibleSince *time.Time  `json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// VideoResponse is the per-video payload returned in feed pages and lookups.
// PlaybackURL is an ephemeral signed URL; Username and AvatarURL are the
// uploader's display fields. Any of the three may be empty when the
// corresponding auxiliary lookup failed (partial-failure isolation).
type VideoResponse struct {
	ID             string    `json:"id"`
	PlaybackURL    string    `json:"playbackUrl,omitempty"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Username       string    `json:"username,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	LikeCount      int       `json:"likeCount"`
	ViewerHasLiked bool      `json:"viewerHasLiked"`
	TrendingScore  float64   `json:"trendingScore"`
	CreatedAt      time.Time `json:"createdAt"`
}

// IngestRequest is the API request body for submitting a new upload to the
// moderation and embedding gate. MediaRef is the object-storage reference of
// the already-uploaded media (the upload itself happens elsewhere).
type IngestRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	MediaRef    string  `json:"mediaRef"`
	Duration    float64 `json:"duration"`
}

// IngestResponse reports the gate outcome for one upload.
type IngestResponse struct {
	VideoID string      `json:"videoId"`
	Status  VideoStatus `json:"status"`
	Reasons []string    `json:"reasons,omitempty"`
}

// LikeResponse is returned after an idempotent like toggle.
type LikeResponse struct {
	VideoID   string `json:"videoId"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}

// StatsResponse is the API response for corpus statistics.
type StatsResponse struct {
	TotalVideos  int             `json:"totalVideos"`
	ByStatus     map[string]int  `json:"byStatus"`
	TotalViewers int             `json:"totalViewers"`
	TopTrending  []TrendingEntry `json:"topTrending"`
}

// TrendingEntry is one row of the stats top-trending list.
type TrendingEntry struct {
	VideoID       string  `json:"videoId"`
	Title         string  `json:"title"`
	TrendingScore float64 `json:"trendingScore"`
}
