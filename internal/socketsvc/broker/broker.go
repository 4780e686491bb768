package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/playloggd/diary-services/internal/comm"
)

type Broker struct {
	Conn             *nats.Conn
	GetConnection    func(string) (*websocket.Conn, bool)
	SocketsFollowing func(int64) []string
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncSocketsFollowing func(int64) []string) *Broker {
	return &Broker{
		Conn:             conn,
		GetConnection:    fncGetConnection,
		SocketsFollowing: fncSocketsFollowing,
	}
}

// consume message from diary service
func (b *Broker) QueueSubscribe(topic, queueGroup string) (*nats.Subscription, error) {
	sub, err := b.Conn.QueueSubscribe(topic, queueGroup, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// consume message from diary service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives confirmed mutations from the diary service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "activity":
		b.fanOutActivity(message)
	default:
		log.Error("Unknown message")
		return
	}
}

// fanOutActivity pushes one activity event to every socket following
// the acting user.
func (b *Broker) fanOutActivity(m *comm.WSMessage) {
	event := &comm.ActivityEvent{}
	if err := json.Unmarshal(m.Data, event); err != nil {
		log.Errorf("Error: malformed activity event %s", err)
		return
	}

	for _, socketId := range b.SocketsFollowing(event.UserID) {
		conn, ok := b.GetConnection(socketId)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing activity to socket %s: %s", socketId, err)
		}
	}
}
