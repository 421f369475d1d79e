package services

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"notesapp/internal/models"
	"notesapp/internal/pdf"
	"notesapp/internal/repositories"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	clock *fakeClock
	// storeTokenErr emulates a failed token UPDATE inside the create transaction.
	storeTokenErr error
}

func newFakeUsers(clock *fakeClock) *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{}, clock: clock}
}

func (f *fakeUsers) Create(_ context.Context, user *models.User, issue repositories.IssueFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = f.clock.Now()
	user.UpdatedAt = user.CreatedAt
	if issue != nil {
		token, err := issue(user.ID)
		if err != nil {
			return err
		}
		if f.storeTokenErr != nil {
			return f.storeTokenErr
		}
		user.Token = &token
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) update(id string, fn func(u *models.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = f.clock.Now()
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, userID string) error {
	return f.update(userID, func(u *models.User) { u.IsVerified, u.Token = true, nil })
}

func (f *fakeUsers) SetLoggedIn(_ context.Context, userID string, loggedIn bool) error {
	return f.update(userID, func(u *models.User) { u.IsLoggedIn = loggedIn })
}

func (f *fakeUsers) SetOTP(_ context.Context, userID, otp string, expiresAt time.Time) error {
	return f.update(userID, func(u *models.User) { u.OTP, u.OTPExpiry = &otp, &expiresAt })
}

func (f *fakeUsers) ClearOTP(_ context.Context, userID string) error {
	return f.update(userID, func(u *models.User) { u.OTP, u.OTPExpiry = nil, nil })
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID, oldHash, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok || u.PasswordHash != oldHash {
		return repositories.ErrNotFound
	}
	u.PasswordHash = newHash
	u.UpdatedAt = f.clock.Now()
	return nil
}

func (f *fakeUsers) Ping(context.Context) error { return nil }

type fakeSessions struct {
	mu     sync.Mutex
	byUser map[string]models.Session
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byUser: map[string]models.Session{}}
}

func (f *fakeSessions) Replace(_ context.Context, userID string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.Session{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
	f.byUser[userID] = s
	return &s, nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[userID]; !ok {
		return 0, nil
	}
	delete(f.byUser, userID)
	return 1, nil
}

func (f *fakeSessions) Exists(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byUser[userID]
	return ok, nil
}

func (f *fakeSessions) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byUser)
}

type sentMail struct {
	to, kind, payload string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendVerificationEmail(email, token string) error {
	return f.record(email, "verify", token)
}

func (f *fakeMailer) SendOTPEmail(email, otp string) error {
	return f.record(email, "otp", otp)
}

func (f *fakeMailer) record(to, kind, payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, kind: kind, payload: payload})
	return nil
}

func (f *fakeMailer) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentMail{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeNotes struct {
	mu    sync.Mutex
	byID  map[string]*models.Note
	clock *fakeClock
}

func newFakeNotes(clock *fakeClock) *fakeNotes {
	return &fakeNotes{byID: map[string]*models.Note{}, clock: clock}
}

func (f *fakeNotes) Create(_ context.Context, note *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	note.ID = uuid.NewString()
	note.CreatedAt = f.clock.Now()
	note.UpdatedAt = note.CreatedAt
	cp := *note
	f.byID[note.ID] = &cp
	return nil
}

func (f *fakeNotes) ListByUser(_ context.Context, userID string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Note{}
	for _, n := range f.byID {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeNotes) owned(id, userID string) (*models.Note, error) {
	n, ok := f.byID[id]
	if !ok || n.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return n, nil
}

func (f *fakeNotes) Get(_ context.Context, id, userID string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.owned(id, userID)
	if err != nil {
		return nil, err
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotes) UpdateContent(_ context.Context, id, userID, content string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.owned(id, userID)
	if err != nil {
		return nil, err
	}
	n.Content = content
	n.UpdatedAt = f.clock.Now()
	cp := *n
	return &cp, nil
}

func (f *fakeNotes) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.owned(id, userID); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

type fakeRenderer struct {
	calls []pdf.NoteData
}

func (f *fakeRenderer) RenderNote(w io.Writer, data pdf.NoteData) error {
	f.calls = append(f.calls, data)
	_, err := io.WriteString(w, "%PDF-fake "+data.Name)
	return err
}
