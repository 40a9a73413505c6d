package vidshare

import "time"

// ShareableLink grants access to one video, either to anyone (public) or to
// an enumerated set of email-identified viewers, optionally time-bounded.
// Only ClickCount and LastAccessedAt ever change after creation.
type ShareableLink struct {
	Code           string     `json:"id"`
	VideoID        int64      `json:"videoId"`
	OwnerID        int64      `json:"ownerId"`
	Public         bool       `json:"public"`
	AccessEmails   []string   `json:"accessEmails"`
	ExpiresAt      *time.Time `json:"expiresAt"`
	ClickCount     int64      `json:"clickCount"`
	LastAccessedAt *time.Time `json:"lastAccessedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

type Video struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"ownerId"`
	FileName     string    `json:"fileName"`
	FileURL      string    `json:"fileUrl"`
	FileSize     int64     `json:"fileSize"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LinkRecord is a link joined with its video's display fields, as loaded on
// the resolve path.
type LinkRecord struct {
	ShareableLink
	FileName     string `json:"fileName"`
	FileURL      string `json:"fileUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// CreatedLink is the creation result: the persisted record plus the derived,
// non-persisted share URL.
type CreatedLink struct {
	ShareableLink
	URL string `json:"url"`
}

// OwnedLink is a list-links row: the record annotated with the video title
// and the derived share URL.
type OwnedLink struct {
	ShareableLink
	VideoTitle string `json:"videoTitle"`
	URL        string `json:"url"`
}

// ResolvedView is what a permitted viewer gets back.
type ResolvedView struct {
	Code         string `json:"id"`
	VideoID      int64  `json:"videoId"`
	FileName     string `json:"fileName"`
	FileURL      string `json:"fileUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Public       bool   `json:"public"`
}
