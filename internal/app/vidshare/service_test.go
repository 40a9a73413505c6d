package vidshare

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeLinkStore struct {
	mu      sync.Mutex
	seq     int64
	links   map[string]LinkRecord
	created []NewLink
	records map[string]int
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{
		links:   make(map[string]LinkRecord),
		records: make(map[string]int),
	}
}

func (f *fakeLinkStore) Create(_ context.Context, link NewLink) (ShareableLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	code := "code" + strconv.FormatInt(f.seq, 10)
	f.created = append(f.created, link)
	sl := ShareableLink{
		Code:         code,
		VideoID:      link.VideoID,
		OwnerID:      link.OwnerID,
		Public:       link.Public,
		AccessEmails: link.AccessEmails,
		ExpiresAt:    link.ExpiresAt,
		CreatedAt:    time.Now(),
	}
	f.links[code] = LinkRecord{ShareableLink: sl, FileName: "clip.mp4", FileURL: "https://cdn.example.com/clip.mp4"}
	return sl, nil
}

func (f *fakeLinkStore) FindByCode(_ context.Context, code string) (LinkRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.links[code]
	if !ok {
		return LinkRecord{}, ErrLinkNotFound
	}
	return rec, nil
}

func (f *fakeLinkStore) ListByOwner(_ context.Context, ownerID int64) ([]OwnedLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []OwnedLink
	for _, rec := range f.links {
		if rec.OwnerID == ownerID {
			out = append(out, OwnedLink{ShareableLink: rec.ShareableLink, VideoTitle: rec.FileName})
		}
	}
	return out, nil
}

func (f *fakeLinkStore) RecordAccess(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.links[code]; !ok {
		return ErrLinkNotFound
	}
	f.records[code]++
	return nil
}

type fakeVideoStore struct {
	videos map[int64]Video
}

func (f *fakeVideoStore) FindOwned(_ context.Context, videoID, ownerID int64) (Video, error) {
	v, ok := f.videos[videoID]
	if !ok || v.OwnerID != ownerID {
		return Video{}, ErrVideoNotFound
	}
	return v, nil
}

type fakeDispatcher struct {
	mu       sync.Mutex
	calls    int
	emails   []string
	messages []string
	fail     bool
}

func (f *fakeDispatcher) Dispatch(_ context.Context, emails []string, message string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.emails = append(f.emails, emails...)
	f.messages = append(f.messages, message)
	if f.fail {
		return "", false
	}
	return "job-1", true
}

func newTestService(links *fakeLinkStore, dispatcher InviteDispatcher) *Service {
	videos := &fakeVideoStore{videos: map[int64]Video{
		42: {ID: 42, OwnerID: 7, FileName: "demo.mp4"},
	}}
	return NewService(links, videos, dispatcher, "http://localhost:9999")
}

func TestCreateLinkRequiresOwnership(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	_, err := svc.CreateLink(context.Background(), Owner{ID: 99, Name: "Eve"}, CreateLinkInput{VideoID: 42})
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if len(links.created) != 0 {
		t.Fatal("link persisted despite failed ownership check")
	}

	_, err = svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{VideoID: 1234})
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound for unknown video, got %v", err)
	}
}

func TestCreateLinkPublicClearsAccessList(t *testing.T) {
	links := newFakeLinkStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestService(links, dispatcher)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{
		VideoID:      42,
		Public:       true,
		AccessEmails: []string{"a@example.com", "b@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if got := links.created[0].AccessEmails; len(got) != 0 {
		t.Fatalf("public link persisted access list: %v", got)
	}
	if dispatcher.calls != 0 {
		t.Fatal("public link dispatched invitations")
	}
	if created.URL != "http://localhost:9999/share/"+created.Code {
		t.Fatalf("unexpected share url: %s", created.URL)
	}
	if created.ClickCount != 0 {
		t.Fatalf("new link click count = %d", created.ClickCount)
	}
}

func TestCreateLinkNilEmailsStoredAsEmpty(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	_, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{VideoID: 42})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if links.created[0].AccessEmails == nil {
		t.Fatal("nil access list reached the store")
	}
}

func TestCreateLinkDispatchesInvitations(t *testing.T) {
	links := newFakeLinkStore()
	dispatcher := &fakeDispatcher{}
	svc := newTestService(links, dispatcher)

	_, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{
		VideoID:      42,
		AccessEmails: []string{"a@example.com", "b@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("dispatch calls = %d, want 1", dispatcher.calls)
	}
	if len(dispatcher.emails) != 2 {
		t.Fatalf("dispatched emails = %v", dispatcher.emails)
	}
	msg := dispatcher.messages[0]
	if !strings.Contains(msg, "Ann") || !strings.Contains(msg, "demo.mp4") {
		t.Fatalf("unexpected invitation message: %q", msg)
	}
}

func TestCreateLinkSurvivesDispatchFailure(t *testing.T) {
	links := newFakeLinkStore()
	dispatcher := &fakeDispatcher{fail: true}
	svc := newTestService(links, dispatcher)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{
		VideoID:      42,
		AccessEmails: []string{"a@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if created.Code == "" {
		t.Fatal("no link created")
	}
}

func TestResolveLinkAllowRecordsAccess(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{VideoID: 42, Public: true})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	view, err := svc.ResolveLink(context.Background(), created.Code, "")
	if err != nil {
		t.Fatalf("ResolveLink: %v", err)
	}
	if view.VideoID != 42 || view.FileURL == "" {
		t.Fatalf("unexpected view: %+v", view)
	}
	if links.records[created.Code] != 1 {
		t.Fatalf("RecordAccess count = %d, want 1", links.records[created.Code])
	}
}

func TestResolveLinkDeniedDoesNotRecordAccess(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{
		VideoID:      42,
		AccessEmails: []string{"a@example.com"},
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	_, err = svc.ResolveLink(context.Background(), created.Code, "intruder@example.com")
	var de *DecisionError
	if !errors.As(err, &de) || de.Decision != DecisionDeny {
		t.Fatalf("expected deny DecisionError, got %v", err)
	}
	if de.VideoID != 42 {
		t.Fatalf("DecisionError.VideoID = %d, want 42", de.VideoID)
	}

	_, err = svc.ResolveLink(context.Background(), created.Code, "")
	if !errors.As(err, &de) || de.Decision != DecisionNeedAuth {
		t.Fatalf("expected need_auth DecisionError, got %v", err)
	}

	if links.records[created.Code] != 0 {
		t.Fatalf("RecordAccess count = %d, want 0", links.records[created.Code])
	}
}

func TestResolveLinkExpiredDoesNotRecordAccess(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	expired := time.Now().Add(-time.Hour)
	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{
		VideoID:      42,
		AccessEmails: []string{"a@example.com"},
		ExpiresAt:    &expired,
	})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	// Even a listed member only sees EXPIRED once the deadline passed.
	_, err = svc.ResolveLink(context.Background(), created.Code, "a@example.com")
	var de *DecisionError
	if !errors.As(err, &de) || de.Decision != DecisionExpired {
		t.Fatalf("expected expired DecisionError, got %v", err)
	}
	if links.records[created.Code] != 0 {
		t.Fatalf("expired resolve bumped counter: RecordAccess count = %d", links.records[created.Code])
	}
}

func TestResolveLinkUnknownCode(t *testing.T) {
	svc := newTestService(newFakeLinkStore(), nil)
	_, err := svc.ResolveLink(context.Background(), "nope", "")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestResolveLinkConcurrent(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{VideoID: 42, Public: true})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.ResolveLink(context.Background(), created.Code, ""); err != nil {
				t.Errorf("ResolveLink: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := links.records[created.Code]; got != n {
		t.Fatalf("RecordAccess count = %d, want %d", got, n)
	}
}

func TestListLinksFillsShareURL(t *testing.T) {
	links := newFakeLinkStore()
	svc := newTestService(links, nil)

	created, err := svc.CreateLink(context.Background(), Owner{ID: 7, Name: "Ann"}, CreateLinkInput{VideoID: 42, Public: true})
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}

	list, err := svc.ListLinks(context.Background(), 7)
	if err != nil {
		t.Fatalf("ListLinks: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d", len(list))
	}
	if list[0].URL != "http://localhost:9999/share/"+created.Code {
		t.Fatalf("unexpected url: %s", list[0].URL)
	}
}
