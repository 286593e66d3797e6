package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-lowlevel/internal/anim"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/rgb"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/strip"
	"github.com/coreman2200/arcaluminis-lowlevel/internal/ws2811"
)

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, v))
}

func TestFramesStream(t *testing.T) {
	h := NewHub("sim", 3)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv, "/ws")

	var hello helloMsg
	readJSON(t, conn, &hello)
	assert.Equal(t, helloMsg{Type: "hello", Count: 3, Driver: "sim"}, hello)

	h.Observe(anim.Frame{
		Seq:    7,
		Offset: 6,
		LEDs:   []rgb.Color{0x200000, 0x002000, 0x000020},
		Time:   time.Unix(0, 42),
	})

	var f frameMsg
	readJSON(t, conn, &f)
	assert.Equal(t, int64(42), f.T)
	assert.Equal(t, uint64(7), f.FrameID)
	assert.Equal(t, uint64(6), f.Offset)
	assert.Equal(t, []byte{0x20, 0, 0, 0, 0x20, 0, 0, 0, 0x20}, f.RGB)
}

func TestDiagStream(t *testing.T) {
	h := NewHub("sim", 4)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv, "/diag")
	var hello helloMsg
	readJSON(t, conn, &hello)

	re := &strip.RenderError{Status: ws2811.ErrorSPITransfer, Frame: 3}
	h.Push(RenderFailed(re))

	var d Diagnostic
	readJSON(t, conn, &d)
	assert.Equal(t, Err, d.Severity)
	assert.Equal(t, "STRIP.RENDER_FAILED", d.Code)
	assert.Equal(t, re.Error(), d.Detail)
	assert.EqualValues(t, -14, d.Evidence["status"])
	assert.EqualValues(t, 3, d.Evidence["frame"])
	assert.NotEmpty(t, d.SuggestedFixes)
}

func TestFramesDoNotReachDiagClients(t *testing.T) {
	h := NewHub("sim", 1)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv, "/diag")
	var hello helloMsg
	readJSON(t, conn, &hello)

	h.Observe(anim.Frame{Seq: 1, LEDs: []rgb.Color{0x200000}, Time: time.Now()})
	h.Push(Diagnostic{Severity: Info, Code: "STRIP.READY", Summary: "Strip initialized"})

	var d Diagnostic
	readJSON(t, conn, &d)
	assert.Equal(t, "STRIP.READY", d.Code)
}

func TestClosedClientIsDropped(t *testing.T) {
	h := NewHub("sim", 1)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	var hello helloMsg
	readJSON(t, conn, &hello)
	frames, _ := h.Clients()
	require.Equal(t, 1, frames)

	conn.Close()
	assert.Eventually(t, func() bool {
		h.Observe(anim.Frame{Seq: 1, LEDs: []rgb.Color{0x200000}, Time: time.Now()})
		n, _ := h.Clients()
		return n == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	h := NewHub("console", 16)
	h.Observe(anim.Frame{Seq: 12, Offset: 11, LEDs: make([]rgb.Color, 16), Time: time.Now()})

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 12, body["frame_id"])
	assert.EqualValues(t, 11, body["offset"])
	assert.EqualValues(t, 16, body["count"])
	assert.Equal(t, "console", body["driver"])
	assert.Contains(t, body, "uptime_s")
}

func TestReady(t *testing.T) {
	sim := ws2811.NewSim()
	err := strip.Use(sim, ws2811.Params{Count: 8, FreqHz: 800000, Brightness: 255}, func(s *strip.Strip) error {
		d := Ready(s)
		assert.Equal(t, Info, d.Severity)
		assert.Equal(t, "STRIP.READY", d.Code)
		assert.Equal(t, map[string]any{"driver": "sim", "count": 8}, d.Evidence)
		return nil
	})
	require.NoError(t, err)
}

func TestRenderFailedWithPlainError(t *testing.T) {
	d := RenderFailed(errors.New("boom"))
	assert.Equal(t, "boom", d.Detail)
	assert.Nil(t, d.Evidence)
}

func TestInitFailed(t *testing.T) {
	d := InitFailed(&strip.InitError{Status: ws2811.ErrorMmap})
	assert.Equal(t, "STRIP.INIT_FAILED", d.Code)
	assert.Equal(t, "ws2811_init failed with code -5 (mmap() failed)", d.Detail)
	assert.Equal(t, map[string]any{"status": -5}, d.Evidence)
	assert.Contains(t, d.SuggestedFixes, "run with sudo")
}
