package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

type fakeDirectory struct {
	users   map[string]domain.User
	staff   []domain.User
	err     error
	listErr error
}

func (f *fakeDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeDirectory) ListStaffAndAdmins(ctx context.Context) ([]domain.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.staff, nil
}

// failSet lets a fake fail for specific user ids (or all, when all is set).
type failSet struct {
	all   bool
	users map[string]bool
}

func (f failSet) fails(id string) bool {
	return f.all || f.users[id]
}

type fakeStore struct {
	mu      sync.Mutex
	recs    []domain.NotificationRecord
	fail    failSet
	nilRec  bool
	panicky bool
}

func (f *fakeStore) CreateNotification(ctx context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error) {
	if f.panicky {
		panic("store exploded")
	}
	if f.fail.fails(rec.UserID) {
		return nil, errors.New("db down")
	}
	if f.nilRec {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recs = append(f.recs, rec)
	return &rec, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recs)
}

type fakeEmail struct {
	mu   sync.Mutex
	reqs []domain.EmailRequest
	fail failSet
	// byAddress maps an address back to a user id for failSet lookups
	byAddress map[string]string
}

func (f *fakeEmail) SendEmail(ctx context.Context, req domain.EmailRequest) error {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.fail.fails(f.byAddress[req.To]) {
		return errors.New("provider unavailable")
	}
	return nil
}

func (f *fakeEmail) calls() []domain.EmailRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.EmailRequest(nil), f.reqs...)
}

type fakeSMS struct {
	mu   sync.Mutex
	reqs []domain.SMSRequest
	fail failSet
}

func (f *fakeSMS) SendSMS(ctx context.Context, req domain.SMSRequest) (domain.SMSResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.fail.fails(req.UserID) {
		return domain.SMSResult{}, errors.New("carrier rejected")
	}
	return domain.SMSResult{MessageID: "SM" + req.UserID}, nil
}

func (f *fakeSMS) calls() []domain.SMSRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SMSRequest(nil), f.reqs...)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	titles []string
}

func (f *fakeBroadcaster) Send(ctx context.Context, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
}

type harness struct {
	dir   *fakeDirectory
	store *fakeStore
	email *fakeEmail
	sms   *fakeSMS
	reg   *Registry
}

func newHarness(users ...domain.User) *harness {
	h := &harness{
		dir:   &fakeDirectory{users: map[string]domain.User{}},
		store: &fakeStore{},
		email: &fakeEmail{byAddress: map[string]string{}},
		sms:   &fakeSMS{},
	}
	for _, u := range users {
		h.dir.users[u.ID] = u
		if u.IsStaff() {
			h.dir.staff = append(h.dir.staff, u)
		}
		h.email.byAddress[u.ContactEmail()] = u.ID
	}
	h.reg = New(h.dir, h.store, h.email, h.sms)
	h.reg.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	h.reg.NewID = func() string { return "rec-1" }
	return h
}

func customer(id string) domain.User {
	return domain.User{
		ID:                 id,
		Username:           id,
		Role:               domain.RoleCustomer,
		Phone:              "+15551234567",
		Email:              id + "@example.com",
		EmailNotifications: true,
		SMSNotifications:   true,
	}
}

func staffUser(id string) domain.User {
	u := customer(id)
	u.Role = domain.RoleStaff
	return u
}

var order42 = domain.Order{ID: "ord-42", OrderNumber: "42", CustomerID: "cust-1", Total: 129.5, Status: "pending"}
