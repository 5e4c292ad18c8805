package engine

import (
	"context"
	"sync/atomic"
	"time"

	"fanhub/gateway"
	"fanhub/models"

	"go.uber.org/zap"
)

// Inputs are the fixed parameters of one access-synchronizer instance.
// An empty Address or zero GroupID disables the per-address reads; an
// empty Auth short-circuits every mutation.
type Inputs struct {
	Auth    models.AuthToken
	GroupID models.GroupID
	Address models.Address
}

// Snapshot is the combined output of the five access reads plus the
// in-flight state of the mutations. It is what the access gate derives
// the rendering mode from.
type Snapshot struct {
	AddressResolved bool
	IsLoading       bool
	IsMember        bool
	IsPending       bool
	IsOwner         bool
	Members         []models.Address
	PendingMembers  []models.Address
	Degraded        bool

	RequestInFlight bool
	AcceptInFlight  bool
	RemoveInFlight  bool
}

// AccessSynchronizer owns the membership reads and mutations for one
// (group, address) pair. The membership and pending-self reads poll on
// a fixed interval; the pending list and group details refresh on mount
// and on the targeted invalidations below:
//
//	AcceptMember -> pending list, group details
//	RemoveMember -> group details
//	RequestAccess -> nothing (the poll picks the change up)
type AccessSynchronizer struct {
	engine   *Engine
	contract gateway.ContractGateway
	notify   Notifier
	log      *zap.Logger
	in       Inputs

	membershipKey  Key
	pendingSelfKey Key
	pendingListKey Key
	detailsKey     Key

	requestBusy atomic.Bool
	acceptBusy  atomic.Bool
	removeBusy  atomic.Bool
}

// NewAccessSynchronizer registers the five reads on the engine. The
// polled reads refresh every pollInterval (the contract is 1 second)
// whether or not the window has focus.
func NewAccessSynchronizer(e *Engine, contract gateway.ContractGateway, notify Notifier, log *zap.Logger, in Inputs, pollInterval time.Duration) *AccessSynchronizer {
	s := &AccessSynchronizer{
		engine:   e,
		contract: contract,
		notify:   notify,
		log:      log,
		in:       in,
	}

	s.membershipKey = Key{Kind: KindMembership, GroupID: in.GroupID, Address: in.Address.Normalize()}
	s.pendingSelfKey = Key{Kind: KindPendingSelf, GroupID: in.GroupID, Address: in.Address.Normalize()}
	s.pendingListKey = Key{Kind: KindPendingMembers, GroupID: in.GroupID}
	s.detailsKey = Key{Kind: KindGroupDetails, GroupID: in.GroupID}

	perAddress := in.Address != "" && in.GroupID != 0
	perGroup := in.GroupID != 0

	e.Register(s.membershipKey, pollInterval, perAddress, func(ctx context.Context) (any, error) {
		return contract.IsGroupMember(ctx, in.GroupID, in.Address)
	})
	e.Register(s.pendingSelfKey, pollInterval, perAddress, func(ctx context.Context) (any, error) {
		return contract.IsPendingMember(ctx, in.GroupID, in.Address)
	})
	e.Register(s.pendingListKey, 0, perGroup, func(ctx context.Context) (any, error) {
		return contract.GetPendingMembers(ctx, in.GroupID)
	})
	e.Register(s.detailsKey, 0, perGroup, func(ctx context.Context) (any, error) {
		return contract.GetGroupDetails(ctx, in.GroupID)
	})

	return s
}

// Engine exposes the shared read-query cache, e.g. for subscriptions.
func (s *AccessSynchronizer) Engine() *Engine {
	return s.engine
}

// Refresh synchronously re-executes every read once. Used on startup so
// the first snapshot is complete, and by tests for determinism.
func (s *AccessSynchronizer) Refresh(ctx context.Context) error {
	var firstErr error
	for _, key := range []Key{s.membershipKey, s.pendingSelfKey, s.pendingListKey, s.detailsKey} {
		if err := s.engine.Refetch(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Snapshot derives the current combined access state from the cache.
func (s *AccessSynchronizer) Snapshot() Snapshot {
	snap := Snapshot{
		AddressResolved: s.in.Address != "",
		Degraded:        s.engine.Degraded(),
		RequestInFlight: s.requestBusy.Load(),
		AcceptInFlight:  s.acceptBusy.Load(),
		RemoveInFlight:  s.removeBusy.Load(),
	}

	snap.IsLoading = s.engine.Loading(s.membershipKey) || s.engine.Loading(s.pendingSelfKey)
	snap.IsMember, _ = ValueAs[bool](s.engine, s.membershipKey)
	snap.IsPending, _ = ValueAs[bool](s.engine, s.pendingSelfKey)
	snap.PendingMembers, _ = ValueAs[[]models.Address](s.engine, s.pendingListKey)

	if details, ok := ValueAs[models.GroupDetails](s.engine, s.detailsKey); ok {
		snap.Members = details.Members
		snap.IsOwner = s.in.Address != "" && details.Owner().Equal(s.in.Address)
	}
	return snap
}

// RequestAccess asks the contract to queue the caller as a pending
// member. No read is invalidated on success: the 1 s membership poll
// picks the transition up, trading a little latency for fewer calls.
func (s *AccessSynchronizer) RequestAccess(ctx context.Context) error {
	if s.in.Auth == "" {
		s.notify.Error("Not authenticated")
		return ErrNotAuthenticated
	}
	s.requestBusy.Store(true)
	defer s.requestBusy.Store(false)

	if _, err := s.contract.RequestToJoinGroup(ctx, s.in.Auth, s.in.GroupID); err != nil {
		notifyMutationError(s.notify, s.log, "request access", err)
		return err
	}
	s.notify.Success("Access request sent successfully!")
	return nil
}

// AcceptMember approves a pending request. On success the pending list
// and the member roster are refetched before returning.
func (s *AccessSynchronizer) AcceptMember(ctx context.Context, member models.Address) error {
	if s.in.Auth == "" {
		s.notify.Error("Not authenticated")
		return ErrNotAuthenticated
	}
	s.acceptBusy.Store(true)
	defer s.acceptBusy.Store(false)

	if _, err := s.contract.AddGroupMember(ctx, s.in.GroupID, member); err != nil {
		notifyMutationError(s.notify, s.log, "accept member", err)
		return err
	}
	s.notify.Success("Member added successfully!")
	s.invalidate(ctx, s.pendingListKey, s.detailsKey)
	return nil
}

// RemoveMember removes a member. On success the roster is refetched
// before returning.
func (s *AccessSynchronizer) RemoveMember(ctx context.Context, member models.Address) error {
	if s.in.Auth == "" {
		s.notify.Error("Not authenticated")
		return ErrNotAuthenticated
	}
	s.removeBusy.Store(true)
	defer s.removeBusy.Store(false)

	if _, err := s.contract.RemoveGroupMember(ctx, s.in.GroupID, member); err != nil {
		notifyMutationError(s.notify, s.log, "remove member", err)
		return err
	}
	s.notify.Success("Member removed successfully!")
	s.invalidate(ctx, s.detailsKey)
	return nil
}

// invalidate runs the targeted refetches a successful mutation declares.
// A refetch failure leaves the previous value stale; it is logged, not
// surfaced, since the mutation itself succeeded.
func (s *AccessSynchronizer) invalidate(ctx context.Context, keys ...Key) {
	for _, key := range keys {
		if err := s.engine.Refetch(ctx, key); err != nil {
			s.log.Warn("post-mutation refetch failed",
				zap.String("kind", string(key.Kind)),
				zap.Error(err))
		}
	}
}
