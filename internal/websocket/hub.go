package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

type outbound struct {
	userID string
	data   []byte
}

// Hub maintains the set of active clients and delivers each user's messages
// to that user's connections only.
type Hub struct {
	// Connected clients, grouped by the user they authenticated as.
	clients map[string]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	publish  chan outbound
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		publish:    make(chan outbound, 64),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop. It owns the client maps and
// returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info().Str("user_id", client.UserID).Int("user_clients", len(h.clients[client.UserID])).Msg("Client connected")
		case client := <-h.Unregister:
			if h.remove(client) {
				log.Info().Str("user_id", client.UserID).Msg("Client disconnected")
			}
		case msg := <-h.publish:
			for client := range h.clients[msg.userID] {
				select {
				case client.Send <- msg.data:
				default:
					// Slow consumer.
					h.remove(client)
				}
			}
		case <-h.done:
			for _, subs := range h.clients {
				for client := range subs {
					close(client.Send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			return
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Publish queues msg for every connection of userID. It never blocks the
// caller for long: once the hub is stopped the message is dropped.
func (h *Hub) Publish(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("action", msg.Action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.publish <- outbound{userID: userID, data: data}:
	case <-h.done:
	}
}

// Join registers client with the running hub. It reports false once the hub
// has been stopped, in which case the caller owns the connection.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) bool {
	subs, ok := h.clients[client.UserID]
	if !ok || !subs[client] {
		return false
	}
	delete(subs, client)
	close(client.Send)
	if len(subs) == 0 {
		delete(h.clients, client.UserID)
	}
	return true
}
