// Package queue publishes social graph events to RabbitMQ and consumes them
// into an append-only audit log.
package queue

// Social event types.
const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
)

// SocialEvent is published after every follow or unfollow. It carries enough
// for consumers to log or run analytics without querying the database.
type SocialEvent struct {
	Type           string `json:"type"`
	ActorID        uint64 `json:"actor_id"`
	ActorUsername  string `json:"actor_username"`
	TargetID       uint64 `json:"target_id"`
	TargetUsername string `json:"target_username"`
	Changed        bool   `json:"changed"` // false when the graph already had the requested state
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
	OccurredAt     string `json:"occurred_at"` // RFC3339 UTC
}
