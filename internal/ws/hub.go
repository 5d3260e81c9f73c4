package ws

import (
	"encoding/json"
	"log"
	"sync"

	"freshcart/internal/models"
)

// Session is the authenticated identity behind one live connection.
type Session struct {
	UserID  uint
	Role    models.UserRole
	StoreID *uint
}

// LocationUpdater receives location frames pushed by delivery connections.
// Implemented by the fulfillment service; set after construction to avoid a
// dependency cycle between the hub and the service layer.
type LocationUpdater interface {
	UpdateEmployeeLocationByUser(userID uint, lat, lng float64) error
}

// PresenceTracker mirrors per-user connection counts into shared storage so
// other processes can tell whether a user is reachable.
type PresenceTracker interface {
	IncrementPresence(userID uint) error
	DecrementPresence(userID uint) error
}

// Hub is the process-wide connection registry: a guarded multimap from
// broadcast group key to the set of live connections joined to it. It holds
// no business data.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]bool
	members map[*Client]map[string]bool

	locations LocationUpdater
	presence  PresenceTracker
}

func NewHub() *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]bool),
		members: make(map[*Client]map[string]bool),
	}
}

func (h *Hub) SetLocationUpdater(u LocationUpdater) {
	h.locations = u
}

func (h *Hub) SetPresenceTracker(p PresenceTracker) {
	h.presence = p
}

// Register adds a freshly authenticated connection and auto-joins its
// standing groups: its own user group, its store group (if any) and the
// shared delivery group for delivery roles.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.members[c] = make(map[string]bool)
	h.join(c, UserGroup(c.session.UserID))
	if c.session.StoreID != nil {
		h.join(c, StoreGroup(*c.session.StoreID))
	}
	if c.session.Role == models.RoleDelivery {
		h.join(c, GroupAllDelivery)
	}
	h.mu.Unlock()

	if h.presence != nil {
		if err := h.presence.IncrementPresence(c.session.UserID); err != nil {
			log.Printf("ws: failed to record presence for user %d: %v", c.session.UserID, err)
		}
	}
}

// Unregister removes the connection from every group it joined and signals
// its write pump to stop. The send channel stays open because a concurrent
// Publish may still hold a reference to this client after snapshotting the
// group under the read lock.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	groups, ok := h.members[c]
	if !ok {
		h.mu.Unlock()
		return
	}
	for group := range groups {
		h.leave(c, group)
	}
	delete(h.members, c)
	close(c.done)
	h.mu.Unlock()

	if h.presence != nil {
		if err := h.presence.DecrementPresence(c.session.UserID); err != nil {
			log.Printf("ws: failed to clear presence for user %d: %v", c.session.UserID, err)
		}
	}
}

func (h *Hub) JoinGroup(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[c]; !ok {
		return
	}
	h.join(c, group)
}

func (h *Hub) LeaveGroup(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[c]; !ok {
		return
	}
	h.leave(c, group)
}

// join and leave assume h.mu is held.
func (h *Hub) join(c *Client, group string) {
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]bool)
	}
	h.groups[group][c] = true
	h.members[c][group] = true
}

func (h *Hub) leave(c *Client, group string) {
	if conns, ok := h.groups[group]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.groups, group)
		}
	}
	if groups, ok := h.members[c]; ok {
		delete(groups, group)
	}
}

// Publish delivers the event to every connection currently joined to group,
// best-effort: an empty group is a no-op and a connection with a full send
// buffer is skipped.
func (h *Hub) Publish(group string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal %s event: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		recipients = append(recipients, c)
	}
	h.mu.RUnlock()

	for _, c := range recipients {
		select {
		case c.send <- data:
		default:
			// Slow consumer, drop the frame.
		}
	}
}

// GroupSize returns how many connections are joined to group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
