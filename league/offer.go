package league

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"leaguebot/storage"

	"github.com/google/uuid"
)

// OfferState is the lifecycle of a signing offer. Every transition out of
// OfferPending goes through one compare-and-swap.
type OfferState int32

const (
	OfferPending OfferState = iota
	offerAccepting
	OfferAccepted
	OfferDeclined
	OfferExpired
)

func (s OfferState) String() string {
	switch s {
	case OfferPending, offerAccepting:
		return "pending"
	case OfferAccepted:
		return "accepted"
	case OfferDeclined:
		return "declined"
	case OfferExpired:
		return "expired"
	default:
		return fmt.Sprintf("OfferState(%d)", int32(s))
	}
}

// Offer is a pending contract offered by a team chairman to one player.
type Offer struct {
	ID         string
	PlayerID   string
	Team       string
	ChairmanID string
	Seasons    int
	Created    time.Time
	Deadline   time.Time

	state atomic.Int32

	mu        sync.Mutex
	channelID string
	messageID string
}

// State returns the current state. An acceptance still in flight reads as pending.
func (o *Offer) State() OfferState {
	st := OfferState(o.state.Load())
	if st == offerAccepting {
		return OfferPending
	}
	return st
}

func (o *Offer) transition(from, to OfferState) bool {
	return o.state.CompareAndSwap(int32(from), int32(to))
}

// closedErr explains why a transition out of pending failed.
func (o *Offer) closedErr() error {
	switch OfferState(o.state.Load()) {
	case offerAccepting, OfferAccepted:
		return ErrAlreadyAccepted
	default:
		return ErrOfferClosed
	}
}

// SetMessage remembers the direct message that carries the offer's buttons.
func (o *Offer) SetMessage(channelID, messageID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.channelID, o.messageID = channelID, messageID
}

func (o *Offer) Message() (channelID, messageID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.channelID, o.messageID
}

type offerBook struct {
	mu     sync.Mutex
	offers map[string]*Offer
}

func newOfferBook() *offerBook {
	return &offerBook{offers: make(map[string]*Offer)}
}

func (b *offerBook) put(o *Offer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offers[o.ID] = o
}

func (b *offerBook) get(id string) (*Offer, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.offers[id]
	return o, ok
}

func (b *offerBook) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.offers, id)
}

func (b *offerBook) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.offers)
}

// OnOfferExpired registers fn to run once for every offer that times out.
func (s *Service) OnOfferExpired(fn func(*Offer)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.onExpired = fn
}

// CreateOffer opens an offer from the chairman of team to playerID.
func (s *Service) CreateOffer(c Caller, playerID, team string, seasons int) (*Offer, error) {
	if seasons < 1 {
		return nil, ErrInvalidSeasons
	}
	err := s.store.View(func(l *storage.League) error {
		t, ok := l.Teams[team]
		if !ok {
			return fmt.Errorf("%w: %s", ErrTeamNotFound, team)
		}
		if t.Chairman != c.ID {
			return ErrNotChairman
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	o := &Offer{
		ID:         uuid.NewString(),
		PlayerID:   playerID,
		Team:       team,
		ChairmanID: c.ID,
		Seasons:    seasons,
		Created:    now,
		Deadline:   now.Add(s.cfg.OfferTimeout),
	}
	s.offers.put(o)
	s.clock.AfterFunc(s.cfg.OfferTimeout, func() {
		s.expireOffer(o)
		if o.State() == OfferExpired {
			s.offers.remove(o.ID)
		}
	})
	// 受諾・辞退済みのオファーはもう一期間残し、遅れたクリックに正しい理由を返す
	s.clock.AfterFunc(2*s.cfg.OfferTimeout, func() {
		s.offers.remove(o.ID)
	})
	s.log.Info("offer created", "offer_id", o.ID, "team", team, "user_id", playerID, "seasons", seasons)
	return o, nil
}

// Offer looks up an offer by id. Expired offers are forgotten at their deadline,
// closed ones one timeout later.
func (s *Service) Offer(id string) (*Offer, error) {
	o, ok := s.offers.get(id)
	if !ok {
		return nil, ErrOfferNotFound
	}
	return o, nil
}

func (s *Service) expireOffer(o *Offer) {
	if !o.transition(OfferPending, OfferExpired) {
		return
	}
	s.log.Info("offer expired", "offer_id", o.ID, "team", o.Team, "user_id", o.PlayerID)
	s.hookMu.RLock()
	fn := s.onExpired
	s.hookMu.RUnlock()
	if fn != nil {
		fn(o)
	}
}

// AcceptOffer signs the offer's player to its team. A failed acceptance
// changes nothing and leaves the offer pending until its deadline.
func (s *Service) AcceptOffer(ctx context.Context, id string, c Caller, releaseClause bool) (*Offer, Transfer, error) {
	o, err := s.Offer(id)
	if err != nil {
		return nil, Transfer{}, err
	}
	if c.ID != o.PlayerID {
		return o, Transfer{}, ErrNotOfferRecipient
	}
	if !o.transition(OfferPending, offerAccepting) {
		return o, Transfer{}, o.closedErr()
	}

	var tr Transfer
	var oldRoles []string
	err = s.store.Update(func(l *storage.League) error {
		var err error
		tr, oldRoles, err = sign(l, signing{
			playerID:   o.PlayerID,
			playerName: c.Name,
			team:       o.Team,
			contract: storage.Contract{
				PlayerID:      o.PlayerID,
				Seasons:       storage.FixedSeasons(o.Seasons),
				ReleaseClause: releaseClause,
			},
			checkLimit: s.cfg.RosterLimit,
		})
		return err
	})
	if err != nil {
		o.state.Store(int32(OfferPending))
		if !s.clock.Now().Before(o.Deadline) {
			s.expireOffer(o)
		}
		return o, Transfer{}, err
	}
	o.state.Store(int32(OfferAccepted))

	s.applySigningRoles(ctx, &tr, oldRoles)
	clause := "No"
	if tr.ReleaseClause {
		clause = "Yes"
	}
	s.notify(ctx, o.ChairmanID, "✅ %s accepted your offer to join **%s** for %s season(s). Release clause: %s", mention(o.PlayerID), o.Team, tr.Seasons, clause)
	s.record(ctx, storage.TransferEvent{
		Kind:          storage.EventSigned,
		PlayerID:      o.PlayerID,
		Team:          o.Team,
		ActorID:       o.ChairmanID,
		Seasons:       tr.Seasons.String(),
		ReleaseClause: tr.ReleaseClause,
	})
	s.announce(ctx, "✍️ %s has signed with **%s** for %s season(s).", mention(o.PlayerID), o.Team, tr.Seasons)
	s.log.Info("offer accepted", "offer_id", o.ID, "team", o.Team, "user_id", o.PlayerID, "release_clause", tr.ReleaseClause)
	return o, tr, nil
}

// DeclineOffer closes the offer and tells the chairman.
func (s *Service) DeclineOffer(ctx context.Context, id string, c Caller) (*Offer, error) {
	o, err := s.Offer(id)
	if err != nil {
		return nil, err
	}
	if c.ID != o.PlayerID {
		return o, ErrNotOfferRecipient
	}
	if !o.transition(OfferPending, OfferDeclined) {
		return o, o.closedErr()
	}
	s.notify(ctx, o.ChairmanID, "❌ %s declined your offer to join **%s**.", mention(o.PlayerID), o.Team)
	s.log.Info("offer declined", "offer_id", o.ID, "team", o.Team, "user_id", o.PlayerID)
	return o, nil
}

// CancelOffer withdraws a pending offer without telling anyone, for offers
// that could not be delivered.
func (s *Service) CancelOffer(id string) {
	if o, ok := s.offers.get(id); ok && o.transition(OfferPending, OfferDeclined) {
		s.offers.remove(id)
	}
}
