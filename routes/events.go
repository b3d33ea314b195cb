package routes

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// The event feed pushes entity-change notifications to connected admin
// clients so open dashboards refresh without polling. The feed is one-way;
// inbound messages are discarded.

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Adjust this for production
	},
}

var feedClients = make(map[*websocket.Conn]bool)
var feedEvents = make(chan []byte, 100) // Buffered so publishers never block
var feedMutex = &sync.Mutex{}
var feedOnce sync.Once

type Event struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

// publishEvent queues an entity-change event for broadcast. Events are
// dropped when the feed is saturated; the feed is advisory, not a log.
func publishEvent(eventType string, id uint) {
	payload, err := json.Marshal(Event{Type: eventType, ID: id})
	if err != nil {
		return
	}
	select {
	case feedEvents <- payload:
	default:
	}
}

func startEventFeed() {
	feedOnce.Do(func() {
		go func() {
			for message := range feedEvents {
				feedMutex.Lock()
				for client := range feedClients {
					if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
						logrus.Error("WebSocket write error: ", err)
						client.Close()
						delete(feedClients, client)
					}
				}
				feedMutex.Unlock()
			}
		}()
	})
}

var eventFeedHandler = adaptor.HTTPHandlerFunc(serveEventFeed)

func serveEventFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Error("Error upgrading: ", err)
		return
	}
	defer conn.Close()

	feedMutex.Lock()
	feedClients[conn] = true
	feedMutex.Unlock()
	logrus.Info("Feed client connected: ", conn.RemoteAddr())

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Error("WebSocket read error: ", err)
			}
			feedMutex.Lock()
			delete(feedClients, conn)
			feedMutex.Unlock()
			logrus.Info("Feed client disconnected: ", conn.RemoteAddr())
			break
		}
	}
}
