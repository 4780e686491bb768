package ws

import (
	"encoding/json"

	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/playloggd/diary-services/internal/comm"
	"github.com/playloggd/diary-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap   sync.Map // to keep track of socket connection with socketId
	followMap sync.Map // socketId -> set of followed user ids
	Broker    *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "follow":
		s.handleFollow(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleFollow replaces the socket's followed-user set. A client sends
// the full set each time, so following and unfollowing are the same
// message.
func (s *Ws) handleFollow(socketId string, msg *comm.WSMessage) {
	var payload comm.FollowRequest
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("Error: invalid follow payload %s", err)
		return
	}

	set := make(map[int64]bool, len(payload.UserIDs))
	for _, id := range payload.UserIDs {
		if id != 0 {
			set[id] = true
		}
	}
	s.followMap.Store(socketId, set)

	log.Infof("socket %s now follows %d users", socketId, len(set))
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.followMap.Delete(socketId)
}

// SocketsFollowing returns every socket that asked for the user's
// activity.
func (s *Ws) SocketsFollowing(userId int64) []string {
	var sockets []string

	s.followMap.Range(func(key, value interface{}) bool {
		if value.(map[int64]bool)[userId] {
			sockets = append(sockets, key.(string))
		}
		return true // continue iterating
	})

	return sockets
}
