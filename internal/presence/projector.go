// Package presence keeps a live view of the party a user belongs to.
package presence

import (
	"context"
	"errors"
	"log"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/feed"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Source is the read side of the store the projector needs.
//
//go:generate mockgen -source=projector.go -destination=mocks/mock_source.go -package=mocks
type Source interface {
	FindPartyByMember(ctx context.Context, userID uuid.UUID) (*models.Party, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// View is what a user sees of their party. Party is nil when they are not in
// one. Members follows the party's member order; members without a user
// document are left out.
type View struct {
	Party   *models.Party `json:"party"`
	Members []models.User `json:"members"`
}

// sameParty reports whether two views show the same party snapshot.
func (v View) sameParty(o View) bool {
	if v.Party == nil || o.Party == nil {
		return v.Party == nil && o.Party == nil
	}
	return v.Party.ID == o.Party.ID &&
		v.Party.Version == o.Party.Version &&
		v.Party.LeaderID == o.Party.LeaderID
}

func (v View) hasMember(id string) bool {
	if v.Party == nil {
		return false
	}
	for _, m := range v.Party.MemberIDs {
		if m.String() == id {
			return true
		}
	}
	return false
}

type Projector struct {
	source Source
	bus    feed.Bus
}

func NewProjector(source Source, bus feed.Bus) *Projector {
	return &Projector{source: source, bus: bus}
}

// Current reads userID's view once.
func (p *Projector) Current(ctx context.Context, userID uuid.UUID) (View, error) {
	party, err := p.source.FindPartyByMember(ctx, userID)
	if errors.Is(err, apperrors.ErrNotInParty) {
		return View{Members: []models.User{}}, nil
	}
	if err != nil {
		return View{}, err
	}

	members, err := p.members(ctx, party.MemberIDs)
	if err != nil {
		return View{}, err
	}
	return View{Party: party, Members: members}, nil
}

// members fans out one user read per member id.
func (p *Projector) members(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	found := make([]*models.User, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			user, err := p.source.GetUser(gctx, id)
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	members := make([]models.User, 0, len(ids))
	for _, u := range found {
		if u != nil {
			members = append(members, *u)
		}
	}
	return members, nil
}

// Subscribe delivers userID's current view at once and again whenever the
// party snapshot or one of its members' user documents changes. Cancelling
// ctx or calling Close ends the subscription.
func (p *Projector) Subscribe(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	// Subscribe before the first read so no change falls between the two.
	events, err := p.bus.Subscribe(ctx, models.CollectionParties, models.CollectionUsers)
	if err != nil {
		cancel()
		return nil, err
	}

	view, err := p.Current(ctx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		updates: make(chan View, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	sub.updates <- view

	go sub.run(ctx, p, userID, view, events)
	return sub, nil
}

// Subscription holds at most one undelivered view; a newer view replaces it.
type Subscription struct {
	updates chan View
	cancel  context.CancelFunc
	done    chan struct{}
}

// Updates is closed when the subscription ends.
func (s *Subscription) Updates() <-chan View {
	return s.updates
}

func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

func (s *Subscription) offer(v View) {
	select {
	case <-s.updates:
	default:
	}
	s.updates <- v
}

func (s *Subscription) run(ctx context.Context, p *Projector, userID uuid.UUID, last View, events <-chan feed.Event) {
	defer close(s.done)
	defer close(s.updates)

	for {
		var ev feed.Event
		var ok bool
		select {
		case <-ctx.Done():
			return
		case ev, ok = <-events:
			if !ok {
				return
			}
		}

		memberChanged := ev.Collection == models.CollectionUsers && last.hasMember(ev.ID)
		partyChanged := ev.Collection == models.CollectionParties

		// Coalesce whatever else is already queued into one re-read.
	drain:
		for {
			select {
			case ev, ok = <-events:
				if !ok {
					return
				}
				memberChanged = memberChanged || (ev.Collection == models.CollectionUsers && last.hasMember(ev.ID))
				partyChanged = partyChanged || ev.Collection == models.CollectionParties
			default:
				break drain
			}
		}

		if !memberChanged && !partyChanged {
			continue
		}

		next, err := p.Current(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("presence: failed to refresh view for %s: %v", userID, err)
			continue
		}

		if memberChanged || !last.sameParty(next) {
			s.offer(next)
		}
		last = next
	}
}
