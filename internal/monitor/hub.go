// Package monitor streams rendered frames and diagnostics to websocket
// clients so a strip can be watched without looking at it.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/anim"
)

const writeWait = 200 * time.Millisecond

type Hub struct {
	mu          sync.Mutex
	driver      string
	count       int
	frameID     uint64
	offset      uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	upgrader    websocket.Upgrader
}

func NewHub(driver string, count int) *Hub {
	return &Hub{
		driver:      driver,
		count:       count,
		startTime:   time.Now(),
		clients:     map[*websocket.Conn]bool{},
		diagClients: map[*websocket.Conn]bool{},
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

var _ anim.Observer = (*Hub)(nil)

type frameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Offset  uint64 `json:"offset"`
	RGB     []byte `json:"rgb"`
}

type helloMsg struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Driver string `json:"driver"`
}

// Observe broadcasts f to every /ws client.
func (h *Hub) Observe(f anim.Frame) {
	rgb := make([]byte, 0, len(f.LEDs)*3)
	for _, c := range f.LEDs {
		rgb = append(rgb, c.R(), c.G(), c.B())
	}
	b, err := json.Marshal(frameMsg{T: f.Time.UnixNano(), FrameID: f.Seq, Offset: f.Offset, RGB: rgb})
	if err != nil {
		log.Debug().Err(err).Msg("marshal frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frameID = f.Seq
	h.offset = f.Offset
	h.broadcast(h.clients, b)
}

// Push sends d to every /diag client.
func (h *Hub) Push(d Diagnostic) {
	b, err := json.Marshal(d)
	if err != nil {
		log.Debug().Err(err).Msg("marshal diagnostic")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcast(h.diagClients, b)
}

// broadcast must be called with h.mu held.
func (h *Hub) broadcast(set map[*websocket.Conn]bool, b []byte) {
	for c := range set {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("dropping client")
			delete(set, c)
			c.Close()
		}
	}
}

// Clients reports how many frame and diagnostic clients are connected.
func (h *Hub) Clients() (frames, diags int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients), len(h.diagClients)
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	h.serveWS(w, r, h.clients)
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	h.serveWS(w, r, h.diagClients)
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request, set map[*websocket.Conn]bool) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	hello, _ := json.Marshal(helloMsg{Type: "hello", Count: h.count, Driver: h.driver})

	h.mu.Lock()
	set[conn] = true
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteMessage(websocket.TextMessage, hello)
	h.mu.Unlock()
	if err != nil {
		h.drop(set, conn)
		return
	}
	log.Debug().Str("remote", conn.RemoteAddr().String()).Str("path", r.URL.Path).Msg("client connected")

	go func() {
		defer h.drop(set, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(set map[*websocket.Conn]bool, conn *websocket.Conn) {
	h.mu.Lock()
	delete(set, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"offset":   h.offset,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"count":    h.count,
		"driver":   h.driver,
	}
	h.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Handler routes /ws, /diag and /health.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return withCORS(mux)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
