package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanager/internal/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("eventmanager/internal/services")

// Placeholder identity for speakers created during bulk grants. Speakers only carry
// a name and an email, so the document fields and a missing name are synthesized.
const (
	speakerDocumentType    = "SPEAKER"
	speakerPlaceholderName = "-"
)

type courtesyService struct {
	uow            domain.UnitOfWork
	identity       domain.IdentityResolver
	materializer   domain.AttendeeMaterializer
	provisioner    *accessProvisioner
	dispatcher     domain.NotificationDispatcher
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewCourtesyService wires the grant engine. dispatcher may be nil, in which case
// no notification is sent.
func NewCourtesyService(
	uow domain.UnitOfWork,
	identity domain.IdentityResolver,
	materializer domain.AttendeeMaterializer,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CourtesyService {
	return newCourtesyService(uow, identity, materializer, dispatcher, logger, timeout, time.Now)
}

func newCourtesyService(
	uow domain.UnitOfWork,
	identity domain.IdentityResolver,
	materializer domain.AttendeeMaterializer,
	dispatcher domain.NotificationDispatcher,
	logger *slog.Logger,
	timeout time.Duration,
	now func() time.Time,
) *courtesyService {
	return &courtesyService{
		uow:            uow,
		identity:       identity,
		materializer:   materializer,
		provisioner:    newAccessProvisioner(logger, now),
		dispatcher:     dispatcher,
		logger:         logger,
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *courtesyService) Grant(ctx context.Context, req domain.GrantRequest, grantorID string) (*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := normalizeGrantRequest(&req); err != nil {
		return nil, err
	}

	var c *domain.Courtesy
	err := s.uow.Do(ctx, domain.IsolationSerializable, func(ctx context.Context, tx domain.Store) error {
		event, err := loadGrantableEvent(ctx, tx, req.EventID)
		if err != nil {
			return err
		}
		person, err := s.resolvePerson(ctx, tx, req)
		if err != nil {
			return err
		}
		c, err = s.grantInTx(ctx, tx, event, person, req, grantorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if res := s.notifyGranted(ctx, c, req.Locale); res.Err != nil {
		s.logger.WarnContext(ctx, "courtesy notification not enqueued",
			"courtesyID", c.ID, "personID", c.PersonID, "error", res.Err)
	}
	return c, nil
}

// grantInTx runs every grant step after the event and person are known.
func (s *courtesyService) grantInTx(ctx context.Context, tx domain.Store, event *domain.Event, person *domain.Person, req domain.GrantRequest, grantorID string) (*domain.Courtesy, error) {
	attendee, err := s.materializer.Materialize(ctx, tx, person)
	if err != nil {
		return nil, err
	}

	// The partial unique index on courtesies backs this check under concurrency.
	existing, err := tx.Courtesies().FindByEventAndPerson(ctx, event.ID, person.ID, domain.HoldingCourtesyStatuses)
	if err == nil {
		return nil, domain.Conflict(domain.KeyAlreadyGranted,
			fmt.Sprintf("person %s already holds courtesy %s for event %s", person.ID, existing.ID, event.ID))
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find courtesy: %w", err)
	}

	var blocks []*domain.EvaluableBlock
	if req.Scope == domain.CourtesyScopeSpecificBlocks {
		blocks, err = validateBlocks(ctx, tx, event.ID, req.SpecificBlockIDs)
		if err != nil {
			return nil, err
		}
	}

	if req.SpeakerID != nil {
		speaker, err := tx.Speakers().GetByID(ctx, *req.SpeakerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get speaker: %w", err)
		}
		if speaker == nil || speaker.EventID != event.ID {
			return nil, domain.NotFound(domain.KeySpeakerNotFound, "speaker "+*req.SpeakerID+" not found for event")
		}
	}

	now := s.now()
	blockIDs := req.SpecificBlockIDs
	if blockIDs == nil {
		blockIDs = []string{}
	}
	c := &domain.Courtesy{
		EventID:          event.ID,
		PersonID:         person.ID,
		AttendeeID:       &attendee.ID,
		SpeakerID:        req.SpeakerID,
		SpecificBlockIDs: blockIDs,
		Type:             req.Type,
		Scope:            req.Scope,
		Status:           domain.CourtesyStatusActive,
		GrantedBy:        grantorID,
		GrantedAt:        now,
		ValidUntil:       req.ValidUntil,
		Reason:           req.Reason,
		Notes:            req.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := tx.Courtesies().Create(ctx, c); err != nil {
		return nil, err
	}
	if err := s.provisioner.Provision(ctx, tx, c, attendee, blocks); err != nil {
		return nil, err
	}

	c.Event = event
	c.Person = person
	c.Attendee = attendee
	return c, nil
}

func loadGrantableEvent(ctx context.Context, tx domain.Store, eventID string) (*domain.Event, error) {
	event, err := loadActiveEvent(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, domain.Conflict(domain.KeyEventCancelled, "event "+eventID+" is cancelled")
	}
	return event, nil
}

func (s *courtesyService) resolvePerson(ctx context.Context, tx domain.Store, req domain.GrantRequest) (*domain.Person, error) {
	if req.PersonID != nil {
		return s.identity.FindByID(ctx, tx, *req.PersonID)
	}
	return s.identity.FindOrCreate(ctx, tx, *req.PersonData)
}

// loadActiveEvent treats a missing and an inactive event the same way.
func loadActiveEvent(ctx context.Context, tx domain.Store, eventID string) (*domain.Event, error) {
	event, err := tx.Events().GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(domain.KeyEventNotFound, "event "+eventID+" not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsActive {
		return nil, domain.NotFound(domain.KeyEventNotFound, "event "+eventID+" is not active")
	}
	return event, nil
}

// notifyGranted is best effort. The returned result is informational only.
func (s *courtesyService) notifyGranted(ctx context.Context, c *domain.Courtesy, locale string) domain.DispatchResult {
	if s.dispatcher == nil || c.Person == nil || c.Person.Email == "" {
		return domain.DispatchResult{}
	}
	n := &domain.CourtesyGrantedNotification{
		CourtesyID:    c.ID,
		EventID:       c.EventID,
		PersonID:      c.PersonID,
		RecipientName: c.Person.FullName(),
		Email:         c.Person.Email,
		Type:          c.Type,
		Scope:         c.Scope,
		ValidUntil:    c.ValidUntil,
		Locale:        locale,
	}
	if c.Event != nil {
		n.EventName = c.Event.Name
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		return domain.DispatchResult{Err: err}
	}
	return domain.DispatchResult{Enqueued: true}
}

func (s *courtesyService) Cancel(ctx context.Context, courtesyID string, req domain.CancelRequest, cancellerID string) (*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, domain.Invalid(domain.KeyCancelReasonRequired, "cancellation reason is required")
	}

	var c *domain.Courtesy
	err := s.uow.Do(ctx, domain.IsolationSerializable, func(ctx context.Context, tx domain.Store) error {
		var err error
		c, err = getCourtesy(ctx, tx, courtesyID)
		if err != nil {
			return err
		}

		from := c.Status
		now := s.now()
		if err := c.Cancel(cancellerID, reason, now); err != nil {
			return err
		}
		if err := s.compensate(ctx, tx, c, now); err != nil {
			return err
		}
		if err := tx.Courtesies().UpdateStatus(ctx, c, from); err != nil {
			return err
		}
		return loadRelations(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "courtesy cancelled",
		"courtesyID", c.ID, "eventID", c.EventID, "personID", c.PersonID, "cancelledBy", cancellerID)
	return c, nil
}

// compensate cancels the registration the courtesy produced and every open
// enrollment the beneficiary holds in the courtesy's blocks.
func (s *courtesyService) compensate(ctx context.Context, tx domain.Store, c *domain.Courtesy, now time.Time) error {
	reg, err := tx.Registrations().GetByCourtesyID(ctx, c.ID)
	switch {
	case err == nil:
		if reg.Status != domain.RegistrationStatusCancelled {
			if err := reg.Cancel(now); err != nil {
				return err
			}
			if err := tx.Registrations().UpdateStatus(ctx, reg.ID, reg.Status, now); err != nil {
				return fmt.Errorf("cancel registration: %w", err)
			}
		}
		c.Registration = reg
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("get registration: %w", err)
	}

	if c.AttendeeID == nil || len(c.SpecificBlockIDs) == 0 {
		return nil
	}
	enrollments, err := tx.Enrollments().ListByAttendeeAndBlocks(ctx, *c.AttendeeID, c.SpecificBlockIDs)
	if err != nil {
		return fmt.Errorf("list block enrollments: %w", err)
	}
	for _, e := range enrollments {
		if e.Status == domain.EnrollmentStatusCancelled {
			continue
		}
		if err := e.Cancel(now); err != nil {
			return err
		}
		if err := tx.Enrollments().UpdateStatus(ctx, e.ID, e.Status, now); err != nil {
			return fmt.Errorf("cancel block enrollment: %w", err)
		}
		c.BlockEnrollments = append(c.BlockEnrollments, e)
	}
	return nil
}

func (s *courtesyService) FindByEvent(ctx context.Context, eventID string) ([]*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.uow.Courtesies().ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list courtesies by event: %w", err)
	}
	if list == nil {
		list = []*domain.Courtesy{}
	}
	return list, nil
}

func (s *courtesyService) FindByPerson(ctx context.Context, personID string) ([]*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.uow.Courtesies().ListByPersonID(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("list courtesies by person: %w", err)
	}
	if list == nil {
		list = []*domain.Courtesy{}
	}
	return list, nil
}

func (s *courtesyService) FindOne(ctx context.Context, id string) (*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := getCourtesy(ctx, s.uow, id)
	if err != nil {
		return nil, err
	}
	if err := loadRelations(ctx, s.uow, c); err != nil {
		return nil, err
	}
	if err := loadAccess(ctx, s.uow, c); err != nil {
		return nil, err
	}
	return c, nil
}

func getCourtesy(ctx context.Context, store domain.Store, id string) (*domain.Courtesy, error) {
	c, err := store.Courtesies().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(domain.KeyCourtesyNotFound, "courtesy "+id+" not found")
		}
		return nil, fmt.Errorf("get courtesy: %w", err)
	}
	return c, nil
}

// loadRelations fills event, person and attendee. Rows that vanished are left nil.
func loadRelations(ctx context.Context, store domain.Store, c *domain.Courtesy) error {
	event, err := store.Events().GetByID(ctx, c.EventID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get event: %w", err)
	}
	c.Event = event

	person, err := store.Persons().GetByID(ctx, c.PersonID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get person: %w", err)
	}
	c.Person = person

	if c.AttendeeID != nil {
		attendee, err := store.Attendees().GetByID(ctx, *c.AttendeeID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get attendee: %w", err)
		}
		c.Attendee = attendee
	}
	return nil
}

// loadAccess fills the registration and enrollments created by this courtesy.
func loadAccess(ctx context.Context, store domain.Store, c *domain.Courtesy) error {
	reg, err := store.Registrations().GetByCourtesyID(ctx, c.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get registration: %w", err)
	}
	c.Registration = reg

	if c.AttendeeID == nil || len(c.SpecificBlockIDs) == 0 {
		return nil
	}
	enrollments, err := store.Enrollments().ListByAttendeeAndBlocks(ctx, *c.AttendeeID, c.SpecificBlockIDs)
	if err != nil {
		return fmt.Errorf("list block enrollments: %w", err)
	}
	for _, e := range enrollments {
		if e.CourtesyID != nil && *e.CourtesyID == c.ID {
			c.BlockEnrollments = append(c.BlockEnrollments, e)
		}
	}
	return nil
}

func (s *courtesyService) GrantSpeakerCourtesies(ctx context.Context, eventID string, scope domain.CourtesyScope, grantorID string) (created []*domain.Courtesy, err error) {
	ctx, span := tracer.Start(ctx, "CourtesyService.GrantSpeakerCourtesies")
	span.SetAttributes(attribute.String("event.id", eventID), attribute.String("courtesy.scope", string(scope)))
	defer func() {
		span.SetAttributes(attribute.Int("courtesy.created", len(created)))
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	if !scope.Valid() {
		return nil, domain.Invalid(domain.KeyInvalidScope, fmt.Sprintf("unknown courtesy scope %q", scope))
	}
	if scope == domain.CourtesyScopeSpecificBlocks {
		return nil, domain.Invalid(domain.KeyBlocksRequired, "bulk speaker grants cannot target specific blocks")
	}

	loadCtx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	event, err := loadGrantableEvent(loadCtx, s.uow, eventID)
	if err != nil {
		cancel()
		return nil, err
	}
	speakers, err := s.uow.Speakers().ListByEventID(loadCtx, event.ID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	if len(speakers) == 0 {
		return nil, domain.Invalid(domain.KeyNoSpeakers, "event "+event.ID+" has no speakers")
	}

	created = []*domain.Courtesy{}
	for _, speaker := range speakers {
		c, err := s.grantSpeaker(ctx, eventID, speaker, scope, grantorID)
		if err != nil {
			s.logger.WarnContext(ctx, "speaker courtesy not granted",
				"eventID", eventID, "speakerID", speaker.ID, "error", err)
			continue
		}
		if c == nil {
			continue
		}
		created = append(created, c)
		if res := s.notifyGranted(ctx, c, ""); res.Err != nil {
			s.logger.WarnContext(ctx, "courtesy notification not enqueued",
				"courtesyID", c.ID, "speakerID", speaker.ID, "error", res.Err)
		}
	}

	s.logger.InfoContext(ctx, "speaker courtesies granted",
		"eventID", eventID, "speakers", len(speakers), "created", len(created))
	return created, nil
}

// grantSpeaker runs one speaker in its own transaction. A nil courtesy with a nil
// error means the speaker already held one.
func (s *courtesyService) grantSpeaker(ctx context.Context, eventID string, speaker *domain.Speaker, scope domain.CourtesyScope, grantorID string) (*domain.Courtesy, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := speaker.NormalizedEmail()
	if email == "" {
		return nil, domain.Invalid(domain.KeyPersonDataInvalid, "speaker has no email")
	}

	speakerID := speaker.ID
	req := domain.GrantRequest{
		EventID:   eventID,
		PersonID:  new(string),
		Type:      domain.CourtesyTypeSpeaker,
		Scope:     scope,
		SpeakerID: &speakerID,
	}

	var c *domain.Courtesy
	err := s.uow.Do(ctx, domain.IsolationSerializable, func(ctx context.Context, tx domain.Store) error {
		event, err := loadGrantableEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		person, err := s.speakerPerson(ctx, tx, speaker, email)
		if err != nil {
			return fmt.Errorf("resolve speaker identity: %w", err)
		}

		_, err = tx.Courtesies().FindByEventAndPerson(ctx, eventID, person.ID, domain.HoldingCourtesyStatuses)
		if err == nil {
			s.logger.InfoContext(ctx, "speaker already holds a courtesy, skipping",
				"eventID", eventID, "speakerID", speaker.ID, "personID", person.ID)
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("find courtesy: %w", err)
		}

		*req.PersonID = person.ID
		c, err = s.grantInTx(ctx, tx, event, person, req, grantorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *courtesyService) speakerPerson(ctx context.Context, tx domain.Store, speaker *domain.Speaker, email string) (*domain.Person, error) {
	person, err := s.identity.FindByEmail(ctx, tx, email)
	if err == nil {
		return person, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.identity.Create(ctx, tx, domain.RawPersonData{
		FirstName:      orPlaceholder(speaker.FirstName),
		LastName:       orPlaceholder(speaker.LastName),
		Email:          email,
		DocumentType:   speakerDocumentType,
		DocumentNumber: "SPEAKER-" + speaker.ID,
	})
}

func orPlaceholder(name string) string {
	if strings.TrimSpace(name) == "" {
		return speakerPlaceholderName
	}
	return name
}

func (s *courtesyService) GetEventStats(ctx context.Context, eventID string) (*domain.CourtesyStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.uow.Courtesies().ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list courtesies by event: %w", err)
	}
	return aggregateStats(eventID, list), nil
}

func aggregateStats(eventID string, list []*domain.Courtesy) *domain.CourtesyStats {
	stats := &domain.CourtesyStats{
		EventID:  eventID,
		Total:    len(list),
		ByStatus: map[domain.CourtesyStatus]int{},
		ByType:   map[domain.CourtesyType]int{},
		ByScope:  map[domain.CourtesyScope]int{},
	}
	for _, c := range list {
		stats.ByStatus[c.Status]++
		stats.ByType[c.Type]++
		stats.ByScope[c.Scope]++
	}
	stats.Active = stats.ByStatus[domain.CourtesyStatusActive]
	stats.Used = stats.ByStatus[domain.CourtesyStatusUsed]
	stats.Cancelled = stats.ByStatus[domain.CourtesyStatusCancelled]
	stats.Expired = stats.ByStatus[domain.CourtesyStatusExpired]
	return stats
}
