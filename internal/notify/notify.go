// Package notify delivers share events to the owner: a durable row in the
// event journal plus a realtime websocket push. Delivery is best effort and
// deliberately detached from the transaction that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Yoni-hub/connectura-platform-sub000/internal/database"
	"github.com/Yoni-hub/connectura-platform-sub000/internal/websocket"
)

type Dispatcher struct {
	store *database.Store
	wsHub *websocket.Hub
}

func NewDispatcher(store *database.Store, wsHub *websocket.Hub) *Dispatcher {
	return &Dispatcher{store: store, wsHub: wsHub}
}

// Notify dispatches asynchronously; failures are logged and never reach the
// caller of the primary operation.
func (d *Dispatcher) Notify(eventType string, ownerID int64, payload interface{}) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := d.store.LogEvent(ctx, ownerID, eventType, payload); err != nil {
			log.Printf("ERROR: Failed to journal %s event for user %d: %v", eventType, ownerID, err)
		}

		if d.wsHub != nil {
			eventMsg := map[string]interface{}{"event_type": eventType, "payload": payload}
			eventBytes, err := json.Marshal(eventMsg)
			if err != nil {
				log.Printf("ERROR: Failed to marshal %s event: %v", eventType, err)
				return
			}
			d.wsHub.PublishEvent(ownerID, eventBytes)
		}
	}()
}
