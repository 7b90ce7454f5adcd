package services

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"questhunt/apperr"

	"github.com/gorilla/websocket"
)

// Hub routes live chat to room audiences. One goroutine started by Run owns
// every membership map; joins, leaves and dispatches arrive as commands over
// channels, so there is no lock to hold and nothing outside the loop ever
// touches the maps. Construct one per process and pass it around explicitly.
type Hub struct {
	chatService *ChatService

	register   chan *Client
	unregister chan *Client
	membership chan roomChange
	dispatch   chan envelope
	queries    chan query
	done       chan struct{}

	onDisconnect func(playerID, gameID uint)
}

// OnDisconnect registers a callback invoked whenever a client drops, set
// once before Run. It runs on its own goroutine so the event loop never
// blocks on it.
func (h *Hub) OnDisconnect(fn func(playerID, gameID uint)) {
	h.onDisconnect = fn
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	playerID uint
	teamID   uint
	gameID   uint
	name     string
}

// Message is the wire shape for everything the hub sends.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Scope declares the audience of a dispatch. TeamID set routes to the team
// room; otherwise GameID set routes to the game room; neither set is the
// administrative fallback reaching every connected client.
type Scope struct {
	TeamID uint
	GameID uint
}

type roomChange struct {
	client *Client
	room   string
	join   bool
	done   chan struct{}
}

type envelope struct {
	data  []byte
	scope Scope
}

type query struct {
	room  string
	reply chan []uint
}

func TeamRoom(teamID uint) string {
	return fmt.Sprintf("team:%d", teamID)
}

func GameRoom(gameID uint) string {
	return fmt.Sprintf("game:%d", gameID)
}

// ValidateRoomKey accepts exactly "team:<id>" and "game:<id>" with a positive
// numeric id.
func ValidateRoomKey(key string) error {
	prefix, idPart, found := strings.Cut(key, ":")
	if !found || (prefix != "team" && prefix != "game") {
		return apperr.InvalidArgument("invalid room key %q", key)
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return apperr.InvalidArgument("invalid room key %q", key)
	}
	return nil
}

func NewHub(chatService *ChatService) *Hub {
	return &Hub{
		chatService: chatService,
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		membership:  make(chan roomChange),
		dispatch:    make(chan envelope, 64),
		queries:     make(chan query),
		done:        make(chan struct{}),
	}
}

// Run owns all membership state until Stop is called.
func (h *Hub) Run() {
	clients := make(map[*Client]bool)
	rooms := make(map[string]map[*Client]bool)
	joined := make(map[*Client]map[string]bool)

	drop := func(client *Client) {
		if !clients[client] {
			return
		}
		delete(clients, client)
		for room := range joined[client] {
			delete(rooms[room], client)
			if len(rooms[room]) == 0 {
				delete(rooms, room)
			}
		}
		delete(joined, client)
		close(client.send)
		if h.onDisconnect != nil {
			go h.onDisconnect(client.playerID, client.gameID)
		}
	}

	deliver := func(client *Client, data []byte) {
		select {
		case client.send <- data:
		default:
			// Slow consumer: drop the client rather than queue without bound
			log.Printf("hub: client %s (player %d) send buffer full, dropping", client.id, client.playerID)
			drop(client)
		}
	}

	for {
		select {
		case <-h.done:
			for client := range clients {
				drop(client)
			}
			return

		case client := <-h.register:
			clients[client] = true
			log.Printf("hub: client %s registered (player %d: %s) - total %d", client.id, client.playerID, client.name, len(clients))

		case client := <-h.unregister:
			drop(client)

		case change := <-h.membership:
			if clients[change.client] {
				if change.join {
					if rooms[change.room] == nil {
						rooms[change.room] = make(map[*Client]bool)
					}
					rooms[change.room][change.client] = true
					if joined[change.client] == nil {
						joined[change.client] = make(map[string]bool)
					}
					joined[change.client][change.room] = true
				} else {
					delete(rooms[change.room], change.client)
					delete(joined[change.client], change.room)
					if len(rooms[change.room]) == 0 {
						delete(rooms, change.room)
					}
				}
			}
			close(change.done)

		case env := <-h.dispatch:
			switch {
			case env.scope.TeamID != 0:
				for client := range rooms[TeamRoom(env.scope.TeamID)] {
					deliver(client, env.data)
				}
			case env.scope.GameID != 0:
				for client := range rooms[GameRoom(env.scope.GameID)] {
					deliver(client, env.data)
				}
			default:
				for client := range clients {
					deliver(client, env.data)
				}
			}

		case q := <-h.queries:
			var ids []uint
			if q.room == "" {
				for client := range clients {
					ids = append(ids, client.playerID)
				}
			} else {
				for client := range rooms[q.room] {
					ids = append(ids, client.playerID)
				}
			}
			q.reply <- ids
		}
	}
}

// Stop shuts the event loop down and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// JoinRoom adds the client to the room's audience. It returns once the join
// is applied, so a dispatch issued afterwards is guaranteed to see it.
func (h *Hub) JoinRoom(client *Client, room string) error {
	if err := ValidateRoomKey(room); err != nil {
		return err
	}
	return h.changeMembership(client, room, true)
}

// LeaveRoom removes the client from the room's audience, blocking until the
// leave is applied.
func (h *Hub) LeaveRoom(client *Client, room string) error {
	if err := ValidateRoomKey(room); err != nil {
		return err
	}
	return h.changeMembership(client, room, false)
}

func (h *Hub) changeMembership(client *Client, room string, join bool) error {
	change := roomChange{client: client, room: room, join: join, done: make(chan struct{})}
	select {
	case h.membership <- change:
	case <-h.done:
		return apperr.Unavailable(nil, "hub is stopped")
	}
	select {
	case <-change.done:
		return nil
	case <-h.done:
		return apperr.Unavailable(nil, "hub is stopped")
	}
}

// Dispatch fans the message out to the scope's current audience. Delivery is
// fire-and-forget and at-most-once: clients not connected right now simply
// miss it, and failures to reach one client are swallowed.
func (h *Hub) Dispatch(messageType string, payload interface{}, scope Scope) error {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		return apperr.InvalidArgument("unencodable payload: %v", err)
	}
	select {
	case <-h.done:
		return apperr.Unavailable(nil, "hub is stopped")
	default:
	}
	select {
	case h.dispatch <- envelope{data: data, scope: scope}:
		return nil
	case <-h.done:
		return apperr.Unavailable(nil, "hub is stopped")
	}
}

// RoomMembers returns the player ids currently joined to the room; an empty
// key lists every connected client.
func (h *Hub) RoomMembers(room string) []uint {
	q := query{room: room, reply: make(chan []uint, 1)}
	select {
	case h.queries <- q:
	case <-h.done:
		return nil
	}
	select {
	case ids := <-q.reply:
		return ids
	case <-h.done:
		return nil
	}
}

// RegisterClient wraps an upgraded websocket connection, registers it and
// starts its pumps. Room membership is separate: callers join rooms
// explicitly afterwards.
func (h *Hub) RegisterClient(conn *websocket.Conn, playerID, teamID, gameID uint, name string) *Client {
	client := &Client{
		hub:      h,
		id:       generateClientID(),
		socket:   conn,
		send:     make(chan []byte, 256),
		playerID: playerID,
		teamID:   teamID,
		gameID:   gameID,
		name:     name,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return client
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("hub: websocket read error: %v", err)
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("hub: error unmarshaling message: %v", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer func() {
		c.socket.Close()
	}()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}

		w.Write(message)

		if err := w.Close(); err != nil {
			return
		}
	}

	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type inboundChat struct {
	Scope string `json:"scope"` // "team" or "game"
	Body  string `json:"body"`
}

func (c *Client) handleMessage(msg inboundMessage) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		select {
		case c.send <- data:
		default:
		}

	case "chat":
		var chat inboundChat
		if err := json.Unmarshal(msg.Payload, &chat); err != nil {
			log.Printf("hub: bad chat payload from player %d: %v", c.playerID, err)
			return
		}
		c.handleChat(chat)

	default:
		log.Printf("hub: unknown message type %q from player %d (%s)", msg.Type, c.playerID, c.name)
	}
}

// handleChat persists the message first, then fans it out live. History for
// late joiners comes from the chat service, never from the hub.
func (c *Client) handleChat(chat inboundChat) {
	scope := Scope{}
	var teamID *uint
	switch chat.Scope {
	case "team":
		scope.TeamID = c.teamID
		id := c.teamID
		teamID = &id
	case "game":
		scope.GameID = c.gameID
	default:
		log.Printf("hub: unknown chat scope %q from player %d", chat.Scope, c.playerID)
		return
	}

	if c.hub.chatService != nil {
		stored, err := c.hub.chatService.Post(c.gameID, teamID, c.playerID, chat.Body)
		if err != nil {
			log.Printf("hub: failed to store chat from player %d: %v", c.playerID, err)
			return
		}
		if err := c.hub.Dispatch("chat", stored, scope); err != nil {
			log.Printf("hub: failed to dispatch chat from player %d: %v", c.playerID, err)
		}
		return
	}

	if err := c.hub.Dispatch("chat", chat.Body, scope); err != nil {
		log.Printf("hub: failed to dispatch chat from player %d: %v", c.playerID, err)
	}
}

func generateClientID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "client_" + hex.EncodeToString(bytes)
}
