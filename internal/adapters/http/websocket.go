package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/core/usecases"
	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to search outcomes.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Status string `json:"status"` // "success" | "failed" | "unauthorized" | "" (all)
}

// WebSocketUpgrade admits only upgrade requests that carry a session cookie
// and pins the session key for the relay.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		creds := credentials(c)
		if creds.Empty() {
			return fiber.ErrUnauthorized
		}
		c.Locals("session", usecases.SessionKey(creds))
		return c.Next()
	}
}

// searchSubject scopes a subscription to one session, optionally one status.
func searchSubject(session, status string) (string, bool) {
	switch domain.SearchStatus(status) {
	case "":
		return "search.events.*." + session, true
	case domain.StatusSuccess, domain.StatusFailed, domain.StatusUnauthorized:
		return "search.events." + status + "." + session, true
	}
	return "", false
}

// overlapping returns the held subjects that would duplicate deliveries once
// subject is added: the all-status subject covers every single-status one.
func overlapping(held map[string]*nats.Subscription, subject, allSubject string) []string {
	var out []string
	for s := range held {
		if s == subject {
			continue
		}
		if subject == allSubject || s == allSubject {
			out = append(out, s)
		}
	}
	return out
}

// WebSocketHandler returns a handler that relays the session's search
// events from NATS to the connected client.
// Clients send JSON: {"action":"subscribe","status":"failed"}
// An empty status means all outcomes; that subscription is made on connect
// and is replaced by the first single-status subscribe.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		session, _ := c.Locals("session").(string)
		remoteAddr := c.RemoteAddr().String()
		log := slog.Default().With("remote", remoteAddr, "session", session)
		log.Info("ws client connected")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream not available"})
			return
		}

		defaultSubject, _ := searchSubject(session, "")
		sub, err := nc.Subscribe(defaultSubject, func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			log.Error("ws default subscribe", "error", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := searchSubject(session, m.Status)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown status: " + m.Status})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed"})
					continue
				}
				for _, old := range overlapping(subs, subject, defaultSubject) {
					_ = subs[old].Unsubscribe()
					delete(subs, old)
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Info("ws client disconnected")
	}
}
