package vidshare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrVideoNotFound deliberately covers both "no such video" and "not yours":
// callers must not be able to probe which videos exist.
var ErrVideoNotFound = errors.New("video not found or access denied")
var ErrLinkNotFound = errors.New("shareable link not found")

// Owner identifies the authenticated creator of a link.
type Owner struct {
	ID   int64
	Name string
}

// NewLink is the normalized input handed to the store.
type NewLink struct {
	OwnerID      int64
	VideoID      int64
	Public       bool
	AccessEmails []string
	ExpiresAt    *time.Time
}

type LinkStore interface {
	Create(ctx context.Context, link NewLink) (ShareableLink, error)
	FindByCode(ctx context.Context, code string) (LinkRecord, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]OwnedLink, error)
	// RecordAccess must increment click_count atomically at the storage
	// layer (no read-modify-write) and stamp last_accessed_at.
	RecordAccess(ctx context.Context, code string) error
}

type VideoStore interface {
	FindOwned(ctx context.Context, videoID, ownerID int64) (Video, error)
}

// InviteDispatcher enqueues invitation notifications. Enqueue failures are
// soft: implementations log and report ok=false instead of returning an
// error, so link creation never depends on delivery.
type InviteDispatcher interface {
	Dispatch(ctx context.Context, emails []string, message string) (jobID string, ok bool)
}

// DecisionError carries a non-ALLOW access decision up to the transport
// layer, together with the video id so a client can redirect to sign-in and
// retry.
type DecisionError struct {
	Decision Decision
	VideoID  int64
}

func (e *DecisionError) Error() string {
	switch e.Decision {
	case DecisionExpired:
		return "link has expired"
	case DecisionNeedAuth:
		return "authentication required"
	default:
		return "access denied"
	}
}

// Service orchestrates the shareable-link lifecycle: creation (ownership
// check, input normalization, persist, invite dispatch) and resolution
// (access evaluation, view accounting).
type Service struct {
	links   LinkStore
	videos  VideoStore
	invites InviteDispatcher
	baseURL string
}

func NewService(links LinkStore, videos VideoStore, invites InviteDispatcher, baseURL string) *Service {
	return &Service{
		links:   links,
		videos:  videos,
		invites: invites,
		baseURL: baseURL,
	}
}

type CreateLinkInput struct {
	VideoID      int64
	Public       bool
	AccessEmails []string
	ExpiresAt    *time.Time
}

func (s *Service) CreateLink(ctx context.Context, owner Owner, in CreateLinkInput) (CreatedLink, error) {
	// Ownership is checked once, here. Links are not re-validated against
	// the video's owner afterwards.
	video, err := s.videos.FindOwned(ctx, in.VideoID, owner.ID)
	if err != nil {
		return CreatedLink{}, err
	}

	// Public links never persist an access list, whatever was supplied.
	emails := in.AccessEmails
	if in.Public || emails == nil {
		emails = []string{}
	}

	link, err := s.links.Create(ctx, NewLink{
		OwnerID:      owner.ID,
		VideoID:      in.VideoID,
		Public:       in.Public,
		AccessEmails: emails,
		ExpiresAt:    in.ExpiresAt,
	})
	if err != nil {
		return CreatedLink{}, err
	}

	// Fire-and-forget: the link stands even if the enqueue fails.
	if !in.Public && len(emails) > 0 && s.invites != nil {
		message := fmt.Sprintf("%s invited you to watch %q", owner.Name, video.FileName)
		if jobID, ok := s.invites.Dispatch(ctx, emails, message); ok {
			slog.Info("invitations enqueued", "job_id", jobID, "code", link.Code, "recipients", len(emails))
		}
	}

	return CreatedLink{ShareableLink: link, URL: s.ShareURL(link.Code)}, nil
}

// ResolveLink looks up a link by code and decides whether the requester may
// view the underlying video. requesterEmail is the caller's verified email,
// empty for anonymous callers. Counters move only on ALLOW.
func (s *Service) ResolveLink(ctx context.Context, code string, requesterEmail string) (ResolvedView, error) {
	rec, err := s.links.FindByCode(ctx, code)
	if err != nil {
		return ResolvedView{}, err
	}

	if d := Evaluate(rec.ShareableLink, requesterEmail, time.Now()); d != DecisionAllow {
		return ResolvedView{}, &DecisionError{Decision: d, VideoID: rec.VideoID}
	}

	if err := s.links.RecordAccess(ctx, code); err != nil {
		return ResolvedView{}, err
	}

	return ResolvedView{
		Code:         rec.Code,
		VideoID:      rec.VideoID,
		FileName:     rec.FileName,
		FileURL:      rec.FileURL,
		ThumbnailURL: rec.ThumbnailURL,
		Public:       rec.Public,
	}, nil
}

// ListLinks returns the owner's links newest-first, each annotated with the
// derived share URL.
func (s *Service) ListLinks(ctx context.Context, ownerID int64) ([]OwnedLink, error) {
	links, err := s.links.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range links {
		links[i].URL = s.ShareURL(links[i].Code)
	}
	return links, nil
}

func (s *Service) ShareURL(code string) string {
	return s.baseURL + "/share/" + code
}
