package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventmanager/internal/domain"
)

// memData is an in-memory database. Rows are stored by value so a transaction
// works on its own copy and a rollback simply drops it.
type memData struct {
	seq           int
	events        map[string]domain.Event
	persons       map[string]domain.Person
	attendees     map[string]domain.Attendee
	speakers      map[string]domain.Speaker
	blocks        map[string]domain.EvaluableBlock
	registrations map[string]domain.Registration
	enrollments   map[string]domain.BlockEnrollment
	courtesies    map[string]domain.Courtesy
}

func newMemData() *memData {
	return &memData{
		events:        map[string]domain.Event{},
		persons:       map[string]domain.Person{},
		attendees:     map[string]domain.Attendee{},
		speakers:      map[string]domain.Speaker{},
		blocks:        map[string]domain.EvaluableBlock{},
		registrations: map[string]domain.Registration{},
		enrollments:   map[string]domain.BlockEnrollment{},
		courtesies:    map[string]domain.Courtesy{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		seq:           d.seq,
		events:        cloneMap(d.events),
		persons:       cloneMap(d.persons),
		attendees:     cloneMap(d.attendees),
		speakers:      cloneMap(d.speakers),
		blocks:        cloneMap(d.blocks),
		registrations: cloneMap(d.registrations),
		enrollments:   cloneMap(d.enrollments),
		courtesies:    cloneMap(d.courtesies),
	}
}

func (d *memData) nextID(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s-%03d", prefix, d.seq)
}

// faults injects repository failures.
type faults struct {
	createEnrollment   error
	createRegistration error
	// createCourtesy fails Create for the given person id.
	createCourtesy map[string]error
}

// memUoW is a domain.UnitOfWork over memData. Do holds a lock for the whole
// transaction, which serializes concurrent callers.
type memUoW struct {
	mu      sync.Mutex
	data    *memData
	faults  faults
	doCalls int
}

func newMemUoW() *memUoW {
	return &memUoW{data: newMemData()}
}

func (u *memUoW) Do(ctx context.Context, isolation domain.Isolation, fn func(ctx context.Context, tx domain.Store) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.doCalls++

	tx := u.data.clone()
	if err := fn(ctx, &memStore{data: tx, faults: &u.faults}); err != nil {
		return err
	}
	u.data = tx
	return nil
}

func (u *memUoW) store() *memStore { return &memStore{data: u.data, faults: &u.faults} }

func (u *memUoW) Events() domain.EventRepository                { return u.store().Events() }
func (u *memUoW) Persons() domain.PersonRepository              { return u.store().Persons() }
func (u *memUoW) Attendees() domain.AttendeeRepository          { return u.store().Attendees() }
func (u *memUoW) Speakers() domain.SpeakerRepository            { return u.store().Speakers() }
func (u *memUoW) Blocks() domain.EvaluableBlockRepository       { return u.store().Blocks() }
func (u *memUoW) Registrations() domain.RegistrationRepository  { return u.store().Registrations() }
func (u *memUoW) Enrollments() domain.BlockEnrollmentRepository { return u.store().Enrollments() }
func (u *memUoW) Courtesies() domain.CourtesyRepository         { return u.store().Courtesies() }

type memStore struct {
	data   *memData
	faults *faults
}

func (s *memStore) Events() domain.EventRepository                { return memEvents{s} }
func (s *memStore) Persons() domain.PersonRepository              { return memPersons{s} }
func (s *memStore) Attendees() domain.AttendeeRepository          { return memAttendees{s} }
func (s *memStore) Speakers() domain.SpeakerRepository            { return memSpeakers{s} }
func (s *memStore) Blocks() domain.EvaluableBlockRepository       { return memBlocks{s} }
func (s *memStore) Registrations() domain.RegistrationRepository  { return memRegistrations{s} }
func (s *memStore) Enrollments() domain.BlockEnrollmentRepository { return memEnrollments{s} }
func (s *memStore) Courtesies() domain.CourtesyRepository         { return memCourtesies{s} }

type memEvents struct{ *memStore }

func (r memEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, ok := r.data.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

type memPersons struct{ *memStore }

func (r memPersons) Create(ctx context.Context, p *domain.Person) error {
	p.ID = r.data.nextID("p")
	r.data.persons[p.ID] = *p
	return nil
}

func (r memPersons) GetByID(ctx context.Context, id string) (*domain.Person, error) {
	p, ok := r.data.persons[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r memPersons) GetByEmail(ctx context.Context, email string) (*domain.Person, error) {
	for _, p := range r.data.persons {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memPersons) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Person, error) {
	for _, p := range r.data.persons {
		if p.DocumentNumber == documentNumber {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memAttendees struct{ *memStore }

func (r memAttendees) Create(ctx context.Context, a *domain.Attendee) error {
	a.ID = r.data.nextID("att")
	r.data.attendees[a.ID] = *a
	return nil
}

func (r memAttendees) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	a, ok := r.data.attendees[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r memAttendees) FindByEmailOrDocument(ctx context.Context, email, documentNumber string) (*domain.Attendee, error) {
	for _, a := range r.data.attendees {
		if a.Email == email || (documentNumber != "" && a.DocumentNumber == documentNumber) {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memSpeakers struct{ *memStore }

func (r memSpeakers) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	s, ok := r.data.speakers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r memSpeakers) ListByEventID(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	var out []*domain.Speaker
	for _, s := range r.data.speakers {
		if s.EventID == eventID {
			s := s
			out = append(out, &s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memBlocks struct{ *memStore }

func (r memBlocks) GetByID(ctx context.Context, id string) (*domain.EvaluableBlock, error) {
	b, ok := r.data.blocks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r memBlocks) ListByIDs(ctx context.Context, ids []string) ([]*domain.EvaluableBlock, error) {
	var out []*domain.EvaluableBlock
	for _, id := range ids {
		if b, ok := r.data.blocks[id]; ok {
			out = append(out, &b)
		}
	}
	return out, nil
}

type memRegistrations struct{ *memStore }

func (r memRegistrations) Create(ctx context.Context, reg *domain.Registration) error {
	if r.faults.createRegistration != nil {
		return r.faults.createRegistration
	}
	reg.ID = r.data.nextID("reg")
	r.data.registrations[reg.ID] = *reg
	return nil
}

func (r memRegistrations) FindByAttendeeAndEvent(ctx context.Context, attendeeID, eventID string, statuses []domain.RegistrationStatus) (*domain.Registration, error) {
	for _, reg := range r.data.registrations {
		if reg.AttendeeID != attendeeID || reg.EventID != eventID {
			continue
		}
		for _, st := range statuses {
			if reg.Status == st {
				return &reg, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (r memRegistrations) GetByCourtesyID(ctx context.Context, courtesyID string) (*domain.Registration, error) {
	for _, reg := range r.data.registrations {
		if reg.CourtesyID != nil && *reg.CourtesyID == courtesyID {
			return &reg, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memRegistrations) UpdateStatus(ctx context.Context, id string, status domain.RegistrationStatus, updatedAt time.Time) error {
	reg, ok := r.data.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	reg.Status = status
	reg.UpdatedAt = updatedAt
	r.data.registrations[id] = reg
	return nil
}

type memEnrollments struct{ *memStore }

func (r memEnrollments) Create(ctx context.Context, e *domain.BlockEnrollment) error {
	if r.faults.createEnrollment != nil {
		return r.faults.createEnrollment
	}
	e.ID = r.data.nextID("enr")
	r.data.enrollments[e.ID] = *e
	return nil
}

func (r memEnrollments) FindByAttendeeAndBlock(ctx context.Context, attendeeID, blockID string, statuses []domain.EnrollmentStatus) (*domain.BlockEnrollment, error) {
	for _, e := range r.data.enrollments {
		if e.AttendeeID != attendeeID || e.BlockID != blockID {
			continue
		}
		for _, st := range statuses {
			if e.Status == st {
				return &e, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (r memEnrollments) ListByAttendeeAndBlocks(ctx context.Context, attendeeID string, blockIDs []string) ([]*domain.BlockEnrollment, error) {
	want := map[string]bool{}
	for _, id := range blockIDs {
		want[id] = true
	}
	var out []*domain.BlockEnrollment
	for _, e := range r.data.enrollments {
		if e.AttendeeID == attendeeID && want[e.BlockID] {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memEnrollments) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, updatedAt time.Time) error {
	e, ok := r.data.enrollments[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = updatedAt
	r.data.enrollments[id] = e
	return nil
}

type memCourtesies struct{ *memStore }

func holds(status domain.CourtesyStatus) bool {
	return status == domain.CourtesyStatusActive || status == domain.CourtesyStatusUsed
}

func (r memCourtesies) Create(ctx context.Context, c *domain.Courtesy) error {
	if err := r.faults.createCourtesy[c.PersonID]; err != nil {
		return err
	}
	for _, existing := range r.data.courtesies {
		if existing.EventID == c.EventID && existing.PersonID == c.PersonID && holds(existing.Status) {
			return domain.Conflict(domain.KeyAlreadyGranted, "unique index violated")
		}
	}
	c.ID = r.data.nextID("c")
	stored := *c
	stored.Event, stored.Person, stored.Attendee, stored.Registration, stored.BlockEnrollments = nil, nil, nil, nil, nil
	r.data.courtesies[c.ID] = stored
	return nil
}

func (r memCourtesies) GetByID(ctx context.Context, id string) (*domain.Courtesy, error) {
	c, ok := r.data.courtesies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r memCourtesies) FindByEventAndPerson(ctx context.Context, eventID, personID string, statuses []domain.CourtesyStatus) (*domain.Courtesy, error) {
	for _, c := range r.data.courtesies {
		if c.EventID != eventID || c.PersonID != personID {
			continue
		}
		for _, st := range statuses {
			if c.Status == st {
				return &c, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

func (r memCourtesies) list(match func(domain.Courtesy) bool) []*domain.Courtesy {
	var out []*domain.Courtesy
	for _, c := range r.data.courtesies {
		if match(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memCourtesies) ListByEventID(ctx context.Context, eventID string) ([]*domain.Courtesy, error) {
	return r.list(func(c domain.Courtesy) bool { return c.EventID == eventID }), nil
}

func (r memCourtesies) ListByPersonID(ctx context.Context, personID string) ([]*domain.Courtesy, error) {
	return r.list(func(c domain.Courtesy) bool { return c.PersonID == personID }), nil
}

func (r memCourtesies) UpdateStatus(ctx context.Context, c *domain.Courtesy, from domain.CourtesyStatus) error {
	stored, ok := r.data.courtesies[c.ID]
	if !ok || stored.Status != from {
		return domain.Conflict(domain.KeyNotActive, "status changed")
	}
	stored.Status = c.Status
	stored.CancelledBy = c.CancelledBy
	stored.CancelledAt = c.CancelledAt
	stored.CancellationReason = c.CancellationReason
	stored.UpdatedAt = c.UpdatedAt
	r.data.courtesies[c.ID] = stored
	return nil
}

// recordingDispatcher keeps every notification it is handed.
type recordingDispatcher struct {
	mu   sync.Mutex
	sent []*domain.CourtesyGrantedNotification
	err  error
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, n *domain.CourtesyGrantedNotification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

var fixedNow = time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCourtesyService(uow *memUoW, dispatcher domain.NotificationDispatcher) *courtesyService {
	now := func() time.Time { return fixedNow }
	return newCourtesyService(
		uow,
		NewIdentityResolver(now),
		NewAttendeeMaterializer(now),
		dispatcher,
		discardLogger(),
		5*time.Second,
		now,
	)
}
