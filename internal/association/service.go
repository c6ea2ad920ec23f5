package association

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
	"github.com/tarefa360/tarefa360/internal/core/events"
	"github.com/tarefa360/tarefa360/internal/core/mirror"
	"github.com/tarefa360/tarefa360/internal/notify"
)

const collection = "associations"

type RepositoryAPI interface {
	List(ctx context.Context) ([]*associationDatamodel.Association, error)
	Create(ctx context.Context, a *associationDatamodel.Association) error
	// Reassign drops every association of the appraisee and stores a in one batch.
	Reassign(ctx context.Context, appraiseeID string, a *associationDatamodel.Association) error
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	registry *mirror.Mirror[Association]
	notifier notify.Notifier
	bus      EventPublisher
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, notifier notify.Notifier, bus EventPublisher, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:     repo,
		registry: mirror.New(func(a Association) string { return a.ID }),
		notifier: notifier,
		bus:      bus,
		logger:   logger,
	}
}

// Listing is a registry read; Stale marks data served from the mirror.
type Listing struct {
	Associations []Association `json:"associations"`
	Stale        bool          `json:"connection_error"`
}

func (s *Service) load(ctx context.Context) ([]Association, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to load associations", "error", err)
		return nil, internal.NewConnectionError(err)
	}
	s.registry.Replace(FromDataModelSlice(rows))
	return s.registry.View(), nil
}

// current loads the registry, degrading to the mirror when the store is down.
func (s *Service) current(ctx context.Context) ([]Association, bool, error) {
	list, err := s.load(ctx)
	if err == nil {
		return list, false, nil
	}
	if s.registry.Loaded() {
		return s.registry.View(), true, nil
	}
	return nil, true, err
}

func (s *Service) List(ctx context.Context) Listing {
	list, stale, err := s.current(ctx)
	if err != nil {
		return Listing{Associations: []Association{}, Stale: true}
	}
	return Listing{Associations: list, Stale: stale}
}

func (s *Service) AppraiserFor(ctx context.Context, appraiseeID string) (string, bool, error) {
	list, _, err := s.current(ctx)
	if err != nil {
		return "", false, err
	}
	id, ok := FindAppraiserFor(appraiseeID, list)
	return id, ok, nil
}

func (s *Service) AppraiseesFor(ctx context.Context, appraiserID string) ([]string, error) {
	list, _, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	return FindAppraiseesFor(appraiserID, list), nil
}

func validatePair(req CreateAssociationRequest) error {
	v := validation.NewValidator()
	v.Field("appraisee_id", req.AppraiseeID).Required()
	v.Field("appraiser_id", req.AppraiserID).Required()
	if err := v.ValidateFirst(); err != nil {
		return err
	}
	if strings.TrimSpace(req.AppraiseeID) == strings.TrimSpace(req.AppraiserID) {
		return internal.NewValidationFieldError("appraiser_id", "an appraisee cannot appraise themselves", internal.ErrCodeValidationFailed)
	}
	return nil
}

// Create binds an appraisee to an appraiser. An appraisee that already has one is rejected;
// use Reassign to change it.
func (s *Service) Create(ctx context.Context, req CreateAssociationRequest) (*Association, error) {
	if err := validatePair(req); err != nil {
		return nil, err
	}

	list, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := FindAppraiserFor(req.AppraiseeID, list); ok {
		return nil, internal.NewDuplicateError("appraisee already has an appraiser", internal.ErrCodeDuplicateAssociation)
	}

	a := Create(strings.TrimSpace(req.AppraiseeID), strings.TrimSpace(req.AppraiserID))
	cmd := s.registry.Begin(a)
	if err := s.repo.Create(ctx, ToDataModel(a)); err != nil {
		s.resolve(ctx, cmd, err)
		s.logger.Error("failed to create association", "error", err)
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("association created", "appraisee_id", a.AppraiseeID, "appraiser_id", a.AppraiserID)
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeveritySuccess, Title: "Associação criada", Message: "Avaliador vinculado"})
	return &a, nil
}

// Reassign replaces whatever appraiser the appraisee had with appraiserID.
func (s *Service) Reassign(ctx context.Context, appraiseeID, appraiserID string) error {
	if err := validatePair(CreateAssociationRequest{AppraiseeID: appraiseeID, AppraiserID: appraiserID}); err != nil {
		return err
	}

	list, err := s.load(ctx)
	if err != nil {
		return err
	}

	a := Create(appraiseeID, appraiserID)
	var cmds []*mirror.Command[Association]
	for _, old := range list {
		if old.AppraiseeID == appraiseeID {
			cmds = append(cmds, s.registry.BeginDelete(old.ID))
		}
	}
	cmds = append(cmds, s.registry.Begin(a))

	err = s.repo.Reassign(ctx, appraiseeID, ToDataModel(a))
	for _, cmd := range cmds {
		s.resolve(ctx, cmd, err)
	}
	if err != nil {
		s.logger.Error("failed to reassign appraisee", "error", err, "appraisee_id", appraiseeID)
		return internal.NewConnectionError(err)
	}

	s.logger.Info("appraisee reassigned", "appraisee_id", appraiseeID, "appraiser_id", appraiserID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	list, err := s.load(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, a := range list {
		if a.ID == id {
			found = true
			break
		}
	}
	if !found {
		return internal.ErrAssociationNotFound
	}

	cmd := s.registry.BeginDelete(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		s.resolve(ctx, cmd, err)
		return internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("association removed", "association_id", id)
	return nil
}

func (s *Service) resolve(ctx context.Context, cmd *mirror.Command[Association], err error) {
	var outcome mirror.Outcome
	reason := ""
	if err != nil {
		outcome = cmd.Fail(err)
		reason = err.Error()
	} else {
		outcome = cmd.Confirm()
	}
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCommandCompletedEvent(collection, cmd.Key(), outcome.String(), reason))
	}
}
