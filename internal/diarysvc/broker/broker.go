package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/playloggd/diary-services/internal/comm"
)

// Broker pushes confirmed curation activity onto NATS for the socket
// service to fan out. Publishing is fire-and-forget: a broker outage
// never fails the mutation that triggered the event.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

func (b *Broker) publish(topic string, payload []byte) {
	if b == nil || b.Conn == nil {
		return
	}
	if err := b.Conn.Publish(topic, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
	}
}

// PublishActivity wraps the event in the socket envelope and publishes
// it on the activity topic.
func (b *Broker) PublishActivity(ev comm.ActivityEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("unable to marshal activity event for user %d: %s", ev.UserID, err)
		return
	}

	msg := &comm.WSMessage{
		Type: "activity",
		Data: data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	b.publish(comm.ActivityTopic, payload)
}

// GameActivity is a convenience for the log-gesture verbs.
func (b *Broker) GameActivity(userID int64, verb string, gameID int64, gameTitle string, rating float64) {
	b.PublishActivity(comm.ActivityEvent{
		UserID:    userID,
		Verb:      verb,
		GameID:    gameID,
		GameTitle: gameTitle,
		Rating:    rating,
	})
}

// ListActivity is a convenience for the list verbs.
func (b *Broker) ListActivity(userID int64, verb string, listID int64, listName string) {
	b.PublishActivity(comm.ActivityEvent{
		UserID:   userID,
		Verb:     verb,
		ListID:   listID,
		ListName: listName,
	})
}
