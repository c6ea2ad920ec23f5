package user

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tarefa360/tarefa360/internal"
	associationDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/association"
	userDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/user"
	"github.com/tarefa360/tarefa360/internal/core/events"
	"github.com/tarefa360/tarefa360/internal/core/mirror"
	"github.com/tarefa360/tarefa360/internal/identity"
	"github.com/tarefa360/tarefa360/internal/notify"
)

const collection = "users"

type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetByCPF(ctx context.Context, cpf string) (*userDatamodel.User, error)
	// Create stores the user and, when given, its association in one batch.
	Create(ctx context.Context, u *userDatamodel.User, assoc *associationDatamodel.Association) error
	// Update rewrites the account and, when link is non-nil, its appraisee-side associations,
	// in one batch.
	Update(ctx context.Context, u *userDatamodel.User, link *AppraiserLink) error
	UpdatePassword(ctx context.Context, id, hash string, forceChange bool) error
	UpdateAvatar(ctx context.Context, id, url string) error
	// Delete removes the user together with every association that references it.
	Delete(ctx context.Context, id string) error
}

// AppraiserLink replaces every association in which the user is the appraisee. A nil Appraiser
// only removes them.
type AppraiserLink struct {
	Appraiser *associationDatamodel.Association
}

// AssociationAPI is the registry lookup account edits need.
type AssociationAPI interface {
	AppraiserFor(ctx context.Context, appraiseeID string) (string, bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Options struct {
	BCryptCost int
	// FallbackAdmin is served when the store is unreachable and nothing was loaded yet.
	FallbackAdmin *User
}

type Service struct {
	repo         RepositoryAPI
	associations AssociationAPI
	roster       *mirror.Mirror[*User]
	notifier     notify.Notifier
	bus          EventPublisher
	opts         Options
	logger       *slog.Logger
}

func NewService(repo RepositoryAPI, associations AssociationAPI, notifier notify.Notifier, bus EventPublisher, opts Options, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		repo:         repo,
		associations: associations,
		roster:       mirror.New(func(u *User) string { return u.ID }),
		notifier:     notifier,
		bus:          bus,
		opts:         opts,
		logger:       logger,
	}
}

// FallbackAdmin builds the built-in administrator from its CPF and password hash.
func FallbackAdmin(cpf, name, nomeDeGuerra, email, passwordHash string) *User {
	return &User{
		ID:           "fallback-admin",
		CPF:          cpf,
		Name:         name,
		NomeDeGuerra: nomeDeGuerra,
		Email:        email,
		Role:         RoleAdmin,
		Status:       identity.StatusActive,
		PasswordHash: passwordHash,
	}
}

// Listing is a roster read. Stale is set when the store could not be reached and the data
// comes from the last successful load.
type Listing struct {
	Users []*User `json:"users"`
	Stale bool    `json:"connection_error"`
}

func (s *Service) fallbackRoster() []*User {
	if s.roster.Loaded() {
		return s.roster.View()
	}
	if s.opts.FallbackAdmin != nil {
		return []*User{s.opts.FallbackAdmin}
	}
	return []*User{}
}

// loadRoster refreshes the mirror from the store. Writes depend on it, so a failure is returned.
func (s *Service) loadRoster(ctx context.Context) ([]*User, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to load users", "error", err)
		return nil, internal.NewConnectionError(err)
	}
	s.roster.Replace(FromDataModelSlice(rows))
	return s.roster.View(), nil
}

func (s *Service) ListUsers(ctx context.Context) Listing {
	users, err := s.loadRoster(ctx)
	if err != nil {
		s.logger.Warn("serving last known users", "loaded", s.roster.Loaded())
		return Listing{Users: s.fallbackRoster(), Stale: true}
	}
	return Listing{Users: users}
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("store unreachable, looking up user in mirror", "user_id", id, "error", err)
		for _, u := range s.fallbackRoster() {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, internal.NewConnectionError(err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

// FindByCPF resolves a login identifier. An unreachable store falls back to the mirror and
// then to the built-in administrator.
func (s *Service) FindByCPF(ctx context.Context, cpf string) (*User, error) {
	row, err := s.repo.GetByCPF(ctx, cpf)
	if err != nil {
		s.logger.Warn("store unreachable, resolving login from mirror", "error", err)
		for _, u := range s.fallbackRoster() {
			if u.CPF == cpf {
				return u, nil
			}
		}
		if fb := s.opts.FallbackAdmin; fb != nil && fb.CPF == cpf {
			return fb, nil
		}
		return nil, internal.NewConnectionError(err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) CanOwnActivities(ctx context.Context, userID string) (bool, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.Role.Policy().CanOwnActivities, nil
}

// CreateAccount is the administrator flow.
func (s *Service) CreateAccount(ctx context.Context, in AccountInput) (*User, error) {
	return s.create(ctx, in, FlowAdminCreate)
}

// QuickAddAppraiser is the appraiser flow; the role is always appraiser.
func (s *Service) QuickAddAppraiser(ctx context.Context, in AccountInput) (*User, error) {
	in.Role = string(RoleAppraiser)
	in.AppraiserID = ""
	return s.create(ctx, in, FlowAppraiserQuickAdd)
}

func (s *Service) create(ctx context.Context, in AccountInput, flow Flow) (*User, error) {
	// rules that need no roster run first so that invalid input never reaches the store
	if _, err := ValidateAccount(ModeCreate, in); err != nil {
		return nil, err
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := PrepareCreate(in, Credentials(roster), flow)
	if err != nil {
		s.logger.Warn("account rejected", "flow", flow.String(), "error", err)
		return nil, err
	}

	var assocRow *associationDatamodel.Association
	if draft.Association != nil {
		if err := requireAppraiser(roster, draft.Association.AppraiserID); err != nil {
			return nil, err
		}
		assocRow = &associationDatamodel.Association{
			ID:          uuid.New().String(),
			AppraiseeID: draft.Association.AppraiseeID,
			AppraiserID: draft.Association.AppraiserID,
		}
	}

	hash, err := identity.HashPassword(draft.InitialPassword, s.opts.BCryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}
	u := draft.User
	u.PasswordHash = hash

	cmd := s.roster.Begin(u)
	if err := s.repo.Create(ctx, ToDataModel(u), assocRow); err != nil {
		s.resolve(ctx, cmd, err)
		s.logger.Error("failed to create user", "error", err, "flow", flow.String())
		s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeverityError, Title: "Erro", Message: "Não foi possível salvar o usuário"})
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "status", u.Status, "flow", flow.String())
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewAccountCreatedEvent(u.ID, string(u.Role), string(u.Status)))
	}
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeveritySuccess, Title: "Usuário criado", Message: u.Name})
	return u, nil
}

func requireAppraiser(roster []*User, id string) error {
	for _, u := range roster {
		if u.ID == id {
			if u.Role != RoleAppraiser {
				break
			}
			return nil
		}
	}
	return internal.NewValidationFieldError("appraiser_id", "appraiser_id must reference an appraiser", internal.ErrCodeMissingAppraiser)
}

// resolve settles an in-flight roster command and reports the outcome on the bus.
func (s *Service) resolve(ctx context.Context, cmd *mirror.Command[*User], err error) {
	var outcome mirror.Outcome
	reason := ""
	if err != nil {
		outcome = cmd.Fail(err)
		reason = err.Error()
	} else {
		outcome = cmd.Confirm()
	}
	if outcome == mirror.OutcomeSuperseded {
		s.logger.Info("roster write superseded", "user_id", cmd.Key())
	}
	if s.bus != nil {
		_ = s.bus.Publish(ctx, events.NewCommandCompletedEvent(collection, cmd.Key(), outcome.String(), reason))
	}
}

// UpdateAccount is the administrator edit of every field.
func (s *Service) UpdateAccount(ctx context.Context, id string, in AccountInput) (*User, error) {
	if _, err := ValidateAccount(ModeEdit, in); err != nil {
		return nil, err
	}

	roster, err := s.loadRoster(ctx)
	if err != nil {
		return nil, err
	}

	existing := findUser(roster, id)
	if existing == nil {
		return nil, internal.ErrUserNotFound
	}

	next, err := ApplyEdit(existing, in, Credentials(roster))
	if err != nil {
		return nil, err
	}

	link, err := s.appraiserLink(ctx, roster, existing, next, strings.TrimSpace(in.AppraiserID))
	if err != nil {
		return nil, err
	}

	cmd := s.roster.Begin(next)
	if err := s.repo.Update(ctx, ToDataModel(next), link); err != nil {
		s.resolve(ctx, cmd, err)
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("user updated", "user_id", id, "status", next.Status)
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeveritySuccess, Title: "Usuário atualizado", Message: next.Name})
	return next, nil
}

// appraiserLink works out what an edit does to the account's appraiser. Leaving the appraisee
// role drops the association; choosing a different appraiser replaces it.
func (s *Service) appraiserLink(ctx context.Context, roster []*User, existing, next *User, appraiserID string) (*AppraiserLink, error) {
	if next.Role != RoleAppraisee {
		if existing.Role == RoleAppraisee {
			return &AppraiserLink{}, nil
		}
		return nil, nil
	}
	if appraiserID == "" {
		return nil, nil
	}

	if appraiserID == next.ID {
		return nil, internal.NewValidationFieldError("appraiser_id", "an appraisee cannot appraise themselves", internal.ErrCodeValidationFailed)
	}
	if err := requireAppraiser(roster, appraiserID); err != nil {
		return nil, err
	}

	if s.associations != nil {
		current, ok, err := s.associations.AppraiserFor(ctx, next.ID)
		if err != nil {
			return nil, err
		}
		if ok && current == appraiserID {
			return nil, nil
		}
	}
	return &AppraiserLink{Appraiser: &associationDatamodel.Association{
		ID:          uuid.New().String(),
		AppraiseeID: next.ID,
		AppraiserID: appraiserID,
	}}, nil
}

func findUser(users []*User, id string) *User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UpdateProfile is the self-service edit.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error) {
	existing, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := ApplyProfileEdit(existing, in)
	if err != nil {
		return nil, err
	}

	cmd := s.roster.Begin(next)
	if err := s.repo.Update(ctx, ToDataModel(next), nil); err != nil {
		s.resolve(ctx, cmd, err)
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("profile updated", "user_id", id)
	return next, nil
}

// ChangePassword runs the self-service password change and clears the forced-change flag.
func (s *Service) ChangePassword(ctx context.Context, id, current, newPassword, confirm string) error {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	req := identity.PasswordChange{
		CurrentPassword:     current,
		NewPassword:         newPassword,
		ConfirmPassword:     confirm,
		ForcePasswordChange: u.ForcePasswordChange,
	}
	matches := func(p string) bool { return identity.ComparePassword(u.PasswordHash, p) }
	if err := identity.ValidatePasswordChange(req, matches); err != nil {
		return err
	}

	hash, err := identity.HashPassword(newPassword, s.opts.BCryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	next := u.clone()
	next.PasswordHash = hash
	next.ForcePasswordChange = false
	next.UpdatedAt = time.Now()

	cmd := s.roster.Begin(next)
	if err := s.repo.UpdatePassword(ctx, id, hash, false); err != nil {
		s.resolve(ctx, cmd, err)
		return internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("password changed", "user_id", id)
	s.notifier.Notify(ctx, notify.Notification{Severity: notify.SeveritySuccess, Title: "Senha alterada", Message: "Sua senha foi atualizada"})
	return nil
}

func (s *Service) SetAvatar(ctx context.Context, id, url string) (*User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	next := u.clone()
	next.AvatarURL = url
	next.UpdatedAt = time.Now()

	cmd := s.roster.Begin(next)
	if err := s.repo.UpdateAvatar(ctx, id, url); err != nil {
		s.resolve(ctx, cmd, err)
		return nil, internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)
	return next, nil
}

// DeleteUser is a store-level delete; the account rules never remove users themselves.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}

	cmd := s.roster.BeginDelete(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		s.resolve(ctx, cmd, err)
		return internal.NewConnectionError(err)
	}
	s.resolve(ctx, cmd, nil)

	s.logger.Info("user deleted", "user_id", id)
	return nil
}
