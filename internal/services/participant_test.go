package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planmeet/internal/domain"
)

const testAvailability = `["2024-06-01T00:00:00.000Z","2024-06-03T00:00:00.000Z"]`

type participantFixture struct {
	svc       domain.ParticipantService
	eventRepo *fakeEventRepo
	partRepo  *fakeParticipantRepo
	userRepo  *fakeUserRepo
	exporter  *fakeExporter
	event     *domain.Event
	planner   *domain.User
}

func newParticipantFixture(t *testing.T) *participantFixture {
	t.Helper()
	ctx := context.Background()

	eventRepo := newFakeEventRepo()
	partRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	exporter := &fakeExporter{}

	planner := domain.NewUser("alice", "hash")
	require.NoError(t, userRepo.Create(ctx, planner))
	event := domain.NewEvent("Rehearsal 1", nil, testDateRange, planner.ID)
	require.NoError(t, eventRepo.Create(ctx, event))

	return &participantFixture{
		svc:       NewParticipantService(eventRepo, partRepo, userRepo, exporter),
		eventRepo: eventRepo,
		partRepo:  partRepo,
		userRepo:  userRepo,
		exporter:  exporter,
		event:     event,
		planner:   planner,
	}
}

func (f *participantFixture) addUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := domain.NewUser(name, "hash")
	require.NoError(t, f.userRepo.Create(context.Background(), u))
	return u
}

func TestParticipantService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")

		p, err := f.svc.Join(ctx, f.event.ID, bob.ID, testAvailability)
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, f.event.ID, p.EventID)
		assert.Equal(t, testAvailability, p.Availability)
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newParticipantFixture(t)
		_, err := f.svc.Join(ctx, 999999, f.planner.ID, testAvailability)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("malformed availability", func(t *testing.T) {
		f := newParticipantFixture(t)
		_, err := f.svc.Join(ctx, f.event.ID, f.planner.ID, "whenever works")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Empty(t, f.partRepo.rows)
	})

	t.Run("repeat join appends a row", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")

		_, err := f.svc.Join(ctx, f.event.ID, bob.ID, testAvailability)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, f.event.ID, bob.ID, `[]`)
		require.NoError(t, err)
		assert.Len(t, f.partRepo.rows, 2)
	})
}

func TestParticipantService_ListByEventNeverNil(t *testing.T) {
	f := newParticipantFixture(t)

	participants, err := f.svc.ListByEvent(context.Background(), f.event.ID)
	require.NoError(t, err)
	require.NotNil(t, participants)
	assert.Empty(t, participants)
}

func TestParticipantService_UpdateAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("updates joined participant", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")
		_, err := f.svc.Join(ctx, f.event.ID, bob.ID, `[]`)
		require.NoError(t, err)

		require.NoError(t, f.svc.UpdateAvailability(ctx, f.event.ID, bob.ID, testAvailability))
		assert.Equal(t, testAvailability, f.partRepo.rows[0].Availability)
	})

	t.Run("malformed availability", func(t *testing.T) {
		f := newParticipantFixture(t)
		err := f.svc.UpdateAvailability(ctx, f.event.ID, f.planner.ID, "not json")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no-op when never joined", func(t *testing.T) {
		f := newParticipantFixture(t)
		require.NoError(t, f.svc.UpdateAvailability(ctx, f.event.ID, 42, testAvailability))
		assert.Empty(t, f.partRepo.rows)
	})
}

func TestParticipantService_BuildCalendar(t *testing.T) {
	ctx := context.Background()

	t.Run("planner may export", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")
		_, err := f.svc.Join(ctx, f.event.ID, bob.ID, testAvailability)
		require.NoError(t, err)

		out, err := f.svc.BuildCalendar(ctx, f.event.ID, f.planner.ID)
		require.NoError(t, err)
		assert.Equal(t, "BEGIN:VCALENDAR", string(out))
		assert.Equal(t, f.event.ID, f.exporter.lastEvent.ID)
		require.Len(t, f.exporter.lastParticipants, 1)
		assert.Equal(t, map[int64]string{bob.ID: "bob"}, f.exporter.lastUsernames)
	})

	t.Run("participant may export", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")
		_, err := f.svc.Join(ctx, f.event.ID, bob.ID, testAvailability)
		require.NoError(t, err)

		_, err = f.svc.BuildCalendar(ctx, f.event.ID, bob.ID)
		require.NoError(t, err)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		f := newParticipantFixture(t)
		mallory := f.addUser(t, "mallory")
		_, err := f.svc.BuildCalendar(ctx, f.event.ID, mallory.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("dangling participant row is skipped", func(t *testing.T) {
		f := newParticipantFixture(t)
		bob := f.addUser(t, "bob")
		_, err := f.svc.Join(ctx, f.event.ID, bob.ID, testAvailability)
		require.NoError(t, err)
		_, err = f.svc.Join(ctx, f.event.ID, 999, testAvailability) // user row missing
		require.NoError(t, err)

		_, err = f.svc.BuildCalendar(ctx, f.event.ID, f.planner.ID)
		require.NoError(t, err)
		assert.Equal(t, map[int64]string{bob.ID: "bob"}, f.exporter.lastUsernames)
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newParticipantFixture(t)
		_, err := f.svc.BuildCalendar(ctx, 999999, f.planner.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}
