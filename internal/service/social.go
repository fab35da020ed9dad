package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
	"github.com/05Ashutosh/food-recipe/internal/metrics"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/queue"
	"github.com/05Ashutosh/food-recipe/internal/repository"
)

var (
	ErrSelfFollow   = apperror.Validation("You cannot follow yourself")
	ErrSelfUnfollow = apperror.Validation("You cannot unfollow yourself")
)

// FollowStore mutates the follow graph atomically and reads back counts.
type FollowStore interface {
	Follow(ctx context.Context, followerID, followeeID uint64) (bool, model.FollowCounts, error)
	Unfollow(ctx context.Context, followerID, followeeID uint64) (bool, model.FollowCounts, error)
}

// UserLookup resolves users by username.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// Emitter creates notifications. Implementations must not fail the caller.
type Emitter interface {
	Emit(ctx context.Context, recipientID, senderID uint64, message string)
}

// EventPublisher forwards social events to the message broker.
type EventPublisher interface {
	PublishSocial(ctx context.Context, ev queue.SocialEvent) error
}

// SocialOptions tune SocialService.
type SocialOptions struct {
	// UnfollowNotifyOnChangeOnly suppresses the "unfollowed you"
	// notification when no edge existed. By default it is always sent.
	UnfollowNotifyOnChangeOnly bool
}

// SocialService implements follow and unfollow.
type SocialService struct {
	users    UserLookup
	follows  FollowStore
	notifier Emitter
	events   EventPublisher // nil disables broker events
	opts     SocialOptions
	now      func() time.Time
	pending  sync.WaitGroup
}

func NewSocialService(users UserLookup, follows FollowStore, notifier Emitter, events EventPublisher, opts SocialOptions) *SocialService {
	return &SocialService{users: users, follows: follows, notifier: notifier, events: events, opts: opts, now: time.Now}
}

// Follow makes actor follow targetUsername and returns the target's counts.
// Following twice leaves the graph unchanged and sends no second
// notification.
func (s *SocialService) Follow(ctx context.Context, actor model.User, targetUsername string) (model.FollowCounts, error) {
	target, err := s.resolveTarget(ctx, actor, targetUsername, ErrSelfFollow)
	if err != nil {
		return model.FollowCounts{}, err
	}
	changed, counts, err := s.follows.Follow(ctx, actor.ID, target.ID)
	if err != nil {
		return model.FollowCounts{}, apperror.Internal("Follow failed", err)
	}
	metrics.RecordFollow(queue.EventFollow, changed)

	if changed {
		s.notifier.Emit(ctx, target.ID, actor.ID, actor.FullName+" followed you")
	}
	s.publish(ctx, queue.EventFollow, actor, target, changed, counts)
	return counts, nil
}

// Unfollow removes the edge actor -> targetUsername and returns the
// target's counts.
func (s *SocialService) Unfollow(ctx context.Context, actor model.User, targetUsername string) (model.FollowCounts, error) {
	target, err := s.resolveTarget(ctx, actor, targetUsername, ErrSelfUnfollow)
	if err != nil {
		return model.FollowCounts{}, err
	}
	changed, counts, err := s.follows.Unfollow(ctx, actor.ID, target.ID)
	if err != nil {
		return model.FollowCounts{}, apperror.Internal("Unfollow failed", err)
	}
	metrics.RecordFollow(queue.EventUnfollow, changed)

	if changed || !s.opts.UnfollowNotifyOnChangeOnly {
		s.notifier.Emit(ctx, target.ID, actor.ID, actor.FullName+" unfollowed you")
	}
	s.publish(ctx, queue.EventUnfollow, actor, target, changed, counts)
	return counts, nil
}

func (s *SocialService) resolveTarget(ctx context.Context, actor model.User, username string, self error) (model.User, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperror.NotFound("User not found")
	}
	if err != nil {
		return model.User{}, apperror.Internal("User lookup failed", err)
	}
	if target.ID == actor.ID {
		return model.User{}, self
	}
	return target, nil
}

// publish sends the broker event in the background so a slow broker never
// delays the response.
func (s *SocialService) publish(ctx context.Context, typ string, actor, target model.User, changed bool, counts model.FollowCounts) {
	if s.events == nil {
		return
	}
	ev := queue.SocialEvent{
		Type:           typ,
		ActorID:        actor.ID,
		ActorUsername:  actor.Username,
		TargetID:       target.ID,
		TargetUsername: target.Username,
		Changed:        changed,
		FollowersCount: counts.FollowersCount,
		FollowingCount: counts.FollowingCount,
		OccurredAt:     s.now().UTC().Format(time.RFC3339),
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.events.PublishSocial(pctx, ev); err != nil {
			logging.Debug().Err(err).Msg("social event dropped")
		}
	}()
}

// Wait blocks until background event publishes have finished.
func (s *SocialService) Wait() { s.pending.Wait() }
