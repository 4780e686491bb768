package comm

import (
	"encoding/json"
	"time"
)

// Topic the diary service publishes confirmed mutations on.
const ActivityTopic = "diary.activity"

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "follow", "unfollow", "activity"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// Activity verbs published by the diary service.
const (
	VerbLogged     = "logged"      // game added as want-to-play
	VerbRated      = "rated"       // rating set or changed
	VerbReviewed   = "reviewed"    // review written
	VerbFavorited  = "favorited"   // game added to top-5
	VerbUnfavorite = "unfavorited" // game dropped from top-5
	VerbRemoved    = "removed"     // game removed from library
	VerbListMade   = "list_created"
	VerbListEdited = "list_updated"
)

// ActivityEvent is the fan-out payload for the social feed. Rating and
// ListName are only set for the verbs they belong to.
type ActivityEvent struct {
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Verb      string    `json:"verb"`
	GameID    int64     `json:"game_id,omitempty"`
	GameTitle string    `json:"game_title,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	ListID    int64     `json:"list_id,omitempty"`
	ListName  string    `json:"list_name,omitempty"`
	At        time.Time `json:"at"`
}

// FollowRequest is sent by a socket client to choose whose activity it
// wants pushed.
type FollowRequest struct {
	UserIDs []int64 `json:"user_ids"`
}
