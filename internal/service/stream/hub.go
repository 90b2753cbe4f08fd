package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"astrochart/internal/domain/models"
	icache "astrochart/internal/service/cache"
	"astrochart/internal/service/ratelimit"
	"astrochart/internal/services/astro"
	pkgcache "astrochart/pkg/cache"
	"astrochart/pkg/logger"
)

// Hub pushes live transit positions to WebSocket subscribers. Each client
// registers a location and frame; on every tick the hub computes one planet
// snapshot per frame (cached across clients, since positions depend only on
// the instant and frame) and a per-client ascendant.
type Hub struct {
	engine       *astro.Engine
	snaps        icache.BytesCache
	limiter      *ratelimit.Limiter
	log          *logger.Logger
	interval     time.Duration
	pingInterval time.Duration

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	stopOnce sync.Once
	stop     chan struct{}
}

type client struct {
	conn      *websocket.Conn
	latitude  float64
	longitude float64
	frame     models.Frame
	send      chan []byte
}

// TransitUpdate is one frame pushed to a subscriber.
type TransitUpdate struct {
	Timestamp time.Time               `json:"timestamp"`
	Frame     models.Frame            `json:"frame"`
	Planets   []models.PlanetPosition `json:"planets"`
	Ascendant float64                 `json:"ascendant"`
}

type HubOption func(*Hub)

// WithInterval sets the broadcast tick interval.
func WithInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.interval = d }
}

// WithSnapshotCache shares snapshot bytes between ticks and subscribers.
func WithSnapshotCache(c icache.BytesCache) HubOption {
	return func(h *Hub) { h.snaps = c }
}

// WithPingInterval sets the keepalive ping cadence for subscriber connections.
func WithPingInterval(d time.Duration) HubOption {
	return func(h *Hub) { h.pingInterval = d }
}

func NewHub(engine *astro.Engine, limiter *ratelimit.Limiter, log *logger.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		engine:       engine,
		snaps:        icache.NewTTLCache(),
		limiter:      limiter,
		log:          log,
		interval:     time.Minute,
		pingInterval: 30 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the broadcast loop until Stop or context cancellation.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case now := <-ticker.C:
				h.broadcast(now.UTC())
			}
		}
	}()
}

// Stop closes every client connection and halts the broadcast loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// ClientCount reports current subscriber count.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades an HTTP request to a transit subscription. One token per
// remote address is consumed against the rate limiter.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, req *models.TransitStreamRequest) error {
	if h.limiter != nil && !h.limiter.Allow("ws:"+remoteAddr(r), 5, 0.5) {
		return fmt.Errorf("subscription rate exceeded for %s", remoteAddr(r))
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade: %w", err)
	}

	frame := models.FrameWestern
	if req.Frame != "" {
		frame = models.Frame(req.Frame)
	}
	c := &client{
		conn:      conn,
		latitude:  req.Latitude,
		longitude: req.Longitude,
		frame:     frame,
		send:      make(chan []byte, 8),
	}

	// initial snapshot so the client never waits a full tick
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if b, err := h.updateFor(time.Now().UTC(), c); err == nil {
		c.send <- b
	}
	h.mu.Unlock()

	h.log.Info("transit subscriber connected",
		logger.String("remote", remoteAddr(r)),
		logger.String("frame", string(frame)))

	go h.writeLoop(c)
	go h.readLoop(c)
	return nil
}

func (h *Hub) broadcast(now time.Time) {
	// sends stay under the lock so Stop cannot close a channel mid-send;
	// they never block thanks to the per-client buffer and the default case
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		b, err := h.updateFor(now, c)
		if err != nil {
			h.log.Warn("transit snapshot failed", logger.Error(err))
			continue
		}
		select {
		case c.send <- b:
		default: // slow consumer, skip this tick
		}
	}
}

// updateFor builds the update payload for one client, reusing the per-frame
// planet snapshot across clients within the same tick.
func (h *Hub) updateFor(now time.Time, c *client) ([]byte, error) {
	planets, err := h.framePlanets(now, c.frame)
	if err != nil {
		return nil, err
	}
	return json.Marshal(TransitUpdate{
		Timestamp: now,
		Frame:     c.frame,
		Planets:   planets,
		Ascendant: astro.Ascendant(now, c.latitude, c.longitude),
	})
}

func (h *Hub) framePlanets(now time.Time, frame models.Frame) ([]models.PlanetPosition, error) {
	bucket := now.Truncate(h.interval)
	key := pkgcache.GenerateKeyWithParams("transit", frame, bucket.Unix())

	if b, ok, err := h.snaps.GetBytes(key); err == nil && ok {
		var planets []models.PlanetPosition
		if err := json.Unmarshal(b, &planets); err == nil {
			return planets, nil
		}
	}

	planets := h.engine.Positions(bucket, frame)
	if b, err := json.Marshal(planets); err == nil {
		_ = h.snaps.SetBytes(key, b, 2*h.interval)
	}
	return planets, nil
}

func (h *Hub) writeLoop(c *client) {
	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		select {
		case b, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				h.unregister(c)
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readLoop drains control frames; subscribers do not send data messages.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.unregister(c)
			return
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func remoteAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
