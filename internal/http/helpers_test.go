package http_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/portal-service/internal/domain"
	api "github.com/tazhibayda/portal-service/internal/http"
	"github.com/tazhibayda/portal-service/internal/queue"
)

const cookieName = "portal_session"

// fakeIdentity is an in-memory identity provider keyed by email.
type fakeIdentity struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	resolves int
	creates  int
	nextID   int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]*domain.Account{}}
}

func (f *fakeIdentity) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	if a, ok := f.accounts[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password, name string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if len(password) < 8 {
		return nil, domain.ErrWeakPassword
	}
	if _, ok := f.accounts[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	f.nextID++
	a := &domain.Account{
		UID:       fmt.Sprintf("uid-%d", f.nextID),
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	f.accounts[email] = a
	cp := *a
	return &cp, nil
}

func (f *fakeIdentity) DeleteAccount(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, a := range f.accounts {
		if a.UID == uid {
			delete(f.accounts, email)
			return nil
		}
	}
	return domain.ErrAccountNotFound
}

func (f *fakeIdentity) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

// fakeProfiles is an in-memory profile store with call counters.
type fakeProfiles struct {
	mu         sync.Mutex
	docs       map[string]*domain.Profile
	gets       int
	upserts    int
	failUpsert bool
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{docs: map[string]*domain.Profile{}}
}

func (f *fakeProfiles) GetProfile(_ context.Context, uid string) (*domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if p, ok := f.docs[uid]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, uid, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failUpsert {
		return errors.New("profile store unavailable")
	}
	f.docs[uid] = &domain.Profile{UID: uid, Name: name, Email: email, CreatedAt: time.Now().UTC()}
	return nil
}

// fakeSessions is an in-memory session store.
type fakeSessions struct {
	mu      sync.Mutex
	recs    map[string]domain.SessionUser
	saves   int
	deletes int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{recs: map[string]domain.SessionUser{}}
}

func (f *fakeSessions) SaveSession(_ context.Context, token string, su domain.SessionUser, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.recs[token] = su
	return nil
}

func (f *fakeSessions) GetSession(_ context.Context, token string) (*domain.SessionUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if su, ok := f.recs[token]; ok {
		return &su, nil
	}
	return nil, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.recs, token)
	return nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

type testEnv struct {
	Identity *fakeIdentity
	Profiles *fakeProfiles
	Sessions *fakeSessions
	Router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fi := newFakeIdentity()
	fp := newFakeProfiles()
	fs := newFakeSessions()

	h := api.NewHandler(fi, fp, fs, queue.NewNoop(), cookieName, false, time.Hour)
	r := api.NewRouter(h, "../../web/templates/*.html")

	return &testEnv{Identity: fi, Profiles: fp, Sessions: fs, Router: r}
}

func (e *testEnv) do(method, path, form string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var body *strings.Reader
	if form != "" {
		body = strings.NewReader(form)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func respCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	return (&http.Response{Header: w.Header()}).Cookies()
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range respCookies(w) {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func sessionUserFixture(email, uid string) domain.SessionUser {
	return domain.SessionUser{Email: email, UID: uid}
}

func flashValue(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	ck := cookieByName(w, "flash")
	if ck == nil {
		return ""
	}
	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		t.Fatalf("flash unescape: %v", err)
	}
	return v
}
