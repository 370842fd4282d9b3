// Package league implements registration, contracts, offers, staff assignment
// and role synchronisation on top of the two league documents.
package league

import (
	"context"
	"fmt"
	"sync"
	"time"

	"leaguebot/interfaces"
	"leaguebot/logger"
	"leaguebot/storage"

	"github.com/itbasis/go-clock"
)

// Platform is the chat platform as seen by the league: roles, direct messages
// and the transactions channel.
type Platform interface {
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRole(ctx context.Context, userID, roleID string) error
	// RoleMembers returns the ids of every member holding roleID, or ErrUnknownRole.
	RoleMembers(ctx context.Context, roleID string) ([]string, error)
	SendDirect(ctx context.Context, userID, content string) error
	Announce(ctx context.Context, content string) error
}

// History records transfer events. Failures never fail the mutation.
type History interface {
	Record(ctx context.Context, e storage.TransferEvent) error
	Recent(ctx context.Context, f storage.HistoryFilter, limit int) ([]storage.TransferEvent, error)
}

// Roles are the platform roles the league grants besides team roles.
type Roles struct {
	FreeAgent string
	Staff     string
	Assistant string
}

type Config struct {
	Roles           Roles
	PrivilegedRoles []string
	RosterLimit     int
	OfferTimeout    time.Duration
	BulkSyncRevokes bool
	SyncConcurrency int
}

// Deps are the collaborators of a Service. History, Logger and Clock are optional.
type Deps struct {
	Store    *storage.LeagueStore
	Platform Platform
	History  History
	Logger   interfaces.Logger
	Clock    clock.Clock
}

type Service struct {
	store    *storage.LeagueStore
	platform Platform
	history  History
	log      interfaces.Logger
	clock    clock.Clock
	cfg      Config
	perms    Permissions
	offers   *offerBook

	hookMu    sync.RWMutex
	onExpired func(*Offer)
}

func NewService(cfg Config, deps Deps) *Service {
	if cfg.RosterLimit <= 0 {
		cfg.RosterLimit = 20
	}
	if cfg.OfferTimeout <= 0 {
		cfg.OfferTimeout = 600 * time.Second
	}
	if cfg.SyncConcurrency <= 0 {
		cfg.SyncConcurrency = 4
	}
	s := &Service{
		store:    deps.Store,
		platform: deps.Platform,
		history:  deps.History,
		log:      deps.Logger,
		clock:    deps.Clock,
		cfg:      cfg,
		perms:    NewPermissions(cfg.PrivilegedRoles),
		offers:   newOfferBook(),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	return s
}

// Permissions returns the privileged role set the service checks against.
func (s *Service) Permissions() Permissions { return s.perms }

// RosterLimit is the contract count above which offers cannot be accepted.
func (s *Service) RosterLimit() int { return s.cfg.RosterLimit }

func (s *Service) grant(ctx context.Context, out *Outcome, userID, roleID string) {
	if roleID == "" {
		return
	}
	if err := s.platform.AddRole(ctx, userID, roleID); err != nil {
		s.log.Warn("failed to grant role", "user_id", userID, "role_id", roleID, "error", err)
		out.RoleErrors = append(out.RoleErrors, &RoleError{Action: "grant", UserID: userID, RoleID: roleID, Err: err})
	}
}

func (s *Service) revoke(ctx context.Context, out *Outcome, userID, roleID string) {
	if roleID == "" {
		return
	}
	if err := s.platform.RemoveRole(ctx, userID, roleID); err != nil {
		s.log.Warn("failed to revoke role", "user_id", userID, "role_id", roleID, "error", err)
		out.RoleErrors = append(out.RoleErrors, &RoleError{Action: "revoke", UserID: userID, RoleID: roleID, Err: err})
	}
}

// notify sends a direct message and reports whether it was delivered.
func (s *Service) notify(ctx context.Context, userID, format string, args ...any) bool {
	if userID == "" {
		return false
	}
	if err := s.platform.SendDirect(ctx, userID, fmt.Sprintf(format, args...)); err != nil {
		s.log.Warn("failed to send direct message", "user_id", userID, "error", err)
		return false
	}
	return true
}

func (s *Service) announce(ctx context.Context, format string, args ...any) {
	if err := s.platform.Announce(ctx, fmt.Sprintf(format, args...)); err != nil {
		s.log.Warn("failed to announce transaction", "error", err)
	}
}

func (s *Service) record(ctx context.Context, e storage.TransferEvent) {
	if s.history == nil {
		return
	}
	e.CreatedAt = s.clock.Now()
	if err := s.history.Record(ctx, e); err != nil {
		s.log.Error("failed to record transfer", "kind", e.Kind, "player_id", e.PlayerID, "error", err)
	}
}

// RecentTransfers returns the newest history events matching f.
func (s *Service) RecentTransfers(ctx context.Context, f storage.HistoryFilter, limit int) ([]storage.TransferEvent, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.Recent(ctx, f, limit)
}

func mention(userID string) string { return "<@" + userID + ">" }
