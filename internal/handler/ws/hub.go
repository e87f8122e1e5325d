package ws

import (
	"net/http"
	"sync"
	"time"

	drepo "RegionPulse/internal/domain/repository"
	xhttp "RegionPulse/pkg/http"
	xlogger "RegionPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // under pongWait
	sendBuffer = 16
)

type client struct {
	conn   *websocket.Conn
	region string
	send   chan []byte
}

// Hub fans freshly computed results out to websocket subscribers, one
// subscription per region. Slow clients lose frames rather than stalling
// the broadcast.
type Hub struct {
	mu       sync.RWMutex
	byRegion map[string]map[*client]bool
	upgrader websocket.Upgrader
	logger   *xlogger.Logger
}

var _ drepo.Broadcaster = (*Hub)(nil)

func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{
		byRegion: make(map[string]map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/results", h.Serve)
}

// Serve upgrades the connection and streams results for one region until
// the client goes away.
func (h *Hub) Serve(c echo.Context) error {
	region := c.QueryParam("region")
	if region == "" {
		return xhttp.BadRequestResponse(c, "region required")
	}
	queued := xhttp.ParseIntDefault(c.QueryParam("buffer"), sendBuffer)
	if queued < 1 || queued > 256 {
		queued = sendBuffer
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", xlogger.Error(err))
		return nil
	}

	cl := &client{conn: conn, region: region, send: make(chan []byte, queued)}
	h.add(cl)
	h.logger.Info("ws subscriber joined",
		xlogger.String("region", region),
		xlogger.String("remote", conn.RemoteAddr().String()))

	go h.writePump(cl)
	go h.readPump(cl)
	return nil
}

// BroadcastResult delivers a payload to every subscriber of the region.
func (h *Hub) BroadcastResult(region string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.byRegion[region] {
		select {
		case cl.send <- payload:
		default:
			// drop on backpressure
		}
	}
}

// SubscriberCount reports live subscriptions for a region.
func (h *Hub) SubscriberCount(region string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byRegion[region])
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.byRegion[cl.region]
	if set == nil {
		set = make(map[*client]bool)
		h.byRegion[cl.region] = set
	}
	set[cl] = true
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.byRegion[cl.region]; set != nil {
		if set[cl] {
			delete(set, cl)
			close(cl.send)
		}
		if len(set) == 0 {
			delete(h.byRegion, cl.region)
		}
	}
}

func (h *Hub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		_ = cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// CloseAll tears down every subscription, used during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for region, set := range h.byRegion {
		for cl := range set {
			close(cl.send)
			_ = cl.conn.Close()
		}
		delete(h.byRegion, region)
	}
}
