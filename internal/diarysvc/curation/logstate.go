package curation

import (
	"encoding/json"
	"math"
)

// Kind is the tag of the LogState variant.
type Kind int

const (
	StateNone Kind = iota // no record exists
	StateWantToPlay
	StatePlayed
)

func (k Kind) String() string {
	switch k {
	case StateWantToPlay:
		return "want_to_play"
	case StatePlayed:
		return "played"
	}
	return "none"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MaxFavorites is the number of ranked favorite slots per user.
const MaxFavorites = 5

// LogState is one user's relationship to one game as a tagged variant:
// None | WantToPlay | Played. Rating only exists in Played (0 means
// unrated). Favorite is orthogonal to the status dimension: any
// non-None state may hold a favorite slot.
type LogState struct {
	Kind             Kind    `json:"status"`
	Rating           float64 `json:"rating,omitempty"` // 0 when unrated, else a half step in [0.5, 5.0]
	Review           string  `json:"review,omitempty"` // "" when no review
	Favorite         bool    `json:"favorite"`
	FavoritePosition int     `json:"favorite_position,omitempty"` // 1..5 when Favorite, 0 otherwise
}

// Rated reports whether the state carries a rating.
func (s LogState) Rated() bool { return s.Kind == StatePlayed && s.Rating > 0 }

// ActiveStar is the star position the rating currently lights up:
// ceil(rating), or 0 when unrated.
func (s LogState) ActiveStar() int {
	if !s.Rated() {
		return 0
	}
	return int(math.Ceil(s.Rating))
}

// ValidRating reports whether v is a half-star step in [0.5, 5.0].
func ValidRating(v float64) bool {
	if v < 0.5 || v > 5.0 {
		return false
	}
	return v == math.Trunc(v*2)/2
}

// ToggleWantToPlay is the total transition for the want-to-play button.
// None gains a want-to-play record; an existing want-to-play record is
// deleted outright (same as remove); a played record converts to
// want-to-play and loses its rating. The favorite flag and slot are
// never touched here, status and favorite are independent dimensions.
func ToggleWantToPlay(s LogState) (next LogState, deleted bool) {
	switch s.Kind {
	case StateNone:
		return LogState{Kind: StateWantToPlay}, false
	case StateWantToPlay:
		return LogState{}, true
	default: // StatePlayed
		s.Kind = StateWantToPlay
		s.Rating = 0
		return s, false
	}
}

// ClickStar applies one click of the three-phase star cycle to the
// state. Clicking the active star on a full value drops it to the half
// value, clicking it again on the half value clears the rating, and
// clicking any other star sets that star's full value. Setting a
// rating always forces Played; clearing one leaves the status alone.
func ClickStar(s LogState, star int) (LogState, error) {
	if star < 1 || star > 5 {
		return s, &ValidationError{Field: "star", Reason: "must be between 1 and 5"}
	}

	active := s.ActiveStar()
	switch {
	case star == active && s.Rating == float64(star):
		s.Rating = float64(star) - 0.5
	case star == active && s.Rating == float64(star)-0.5:
		s.Rating = 0
	default:
		s.Rating = float64(star)
		s.Kind = StatePlayed
	}
	return s, nil
}

// SetReview sets or clears the review text. A review on a game with no
// record implies the game was played.
func SetReview(s LogState, text string) LogState {
	if s.Kind == StateNone {
		if text == "" {
			return s
		}
		return LogState{Kind: StatePlayed, Review: text}
	}
	s.Review = text
	return s
}

// SetFavorite turns the favorite flag on or off. favCount is the
// user's current number of favorited logs, excluding this one when it
// is already favorited. Turning the flag on appends the log at the end
// of the ranking; turning it off vacates the slot (the caller compacts
// the remaining positions). A sixth favorite is rejected without any
// state change.
func SetFavorite(s LogState, on bool, favCount int) (LogState, error) {
	if on == s.Favorite {
		return s, nil
	}
	if on {
		if favCount >= MaxFavorites {
			return s, ErrFavoriteSlotsFull
		}
		if s.Kind == StateNone {
			s.Kind = StatePlayed
		}
		s.Favorite = true
		s.FavoritePosition = favCount + 1
		return s, nil
	}
	s.Favorite = false
	s.FavoritePosition = 0
	return s, nil
}
