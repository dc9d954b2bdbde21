package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planmeet/internal/domain"
)

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
	err    error // if set, every call returns this error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[int64]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Username == u.Username {
			return domain.ErrConflict
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[int64]*domain.Event
	order     []int64
	nextID    int64
	createErr error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]*domain.Event), nextID: 1}
}

func (f *fakeEventRepo) Create(_ context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	if e.InviteCode == "" {
		e.InviteCode = fmt.Sprintf("CODE%02d", f.nextID)
	}
	e.ID = f.nextID
	f.nextID++
	f.byID[e.ID] = e
	f.order = append(f.order, e.ID)
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByInviteCode(_ context.Context, code string) (*domain.Event, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, e := range f.byID {
		if e.InviteCode == code {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByUserID(_ context.Context, userID int64) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, id := range f.order {
		if e := f.byID[id]; e.PlannerID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository for tests.
type fakeParticipantRepo struct {
	rows   []*domain.Participant
	nextID int64
	err    error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{nextID: 1}
}

func (f *fakeParticipantRepo) Create(_ context.Context, p *domain.Participant) error {
	if f.err != nil {
		return f.err
	}
	p.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, p)
	return nil
}

func (f *fakeParticipantRepo) ListByEventID(_ context.Context, eventID int64) ([]*domain.Participant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Participant
	for _, p := range f.rows {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) UpdateAvailability(_ context.Context, userID, eventID int64, availability string) error {
	if f.err != nil {
		return f.err
	}
	for _, p := range f.rows {
		if p.UserID == userID && p.EventID == eventID {
			p.Availability = availability
			return nil
		}
	}
	return nil
}

// fakeInvitationRepo is an in-memory EventInvitationRepository for tests.
type fakeInvitationRepo struct {
	rows   []*domain.EventInvitation
	nextID int64
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{nextID: 1}
}

func (f *fakeInvitationRepo) Create(_ context.Context, inv *domain.EventInvitation) error {
	inv.ID = f.nextID
	f.nextID++
	f.rows = append(f.rows, inv)
	return nil
}

func (f *fakeInvitationRepo) ListByEventID(_ context.Context, eventID int64) ([]*domain.EventInvitation, error) {
	var out []*domain.EventInvitation
	for _, inv := range f.rows {
		if inv.EventID == eventID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// fakeHasher hashes by prefixing; good enough to assert the service
// never stores the raw password.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// fakeIssuer issues predictable tokens.
type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(userID int64, username string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("token-%d-%s", userID, username), nil
}

// fakeEmailService records sends and can fail per address.
type fakeEmailService struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeEmailService) SendInvite(_ context.Context, to string, _ *domain.InviteEmailData) error {
	if f.failFor[to] {
		return fmt.Errorf("smtp says no")
	}
	f.sent = append(f.sent, to)
	return nil
}

// fakeExporter records its input and returns a canned document.
type fakeExporter struct {
	lastEvent        *domain.Event
	lastParticipants []*domain.Participant
	lastUsernames    map[int64]string
}

func (f *fakeExporter) Export(e *domain.Event, ps []*domain.Participant, names map[int64]string) ([]byte, error) {
	f.lastEvent = e
	f.lastParticipants = ps
	f.lastUsernames = names
	return []byte("BEGIN:VCALENDAR"), nil
}
