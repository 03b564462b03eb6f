// Package web serves the scene to a browser. The page draws it on a 2D
// canvas and receives the scene, and any later replacement, over a
// websocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/engine/lighting"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/molecule"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait       = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Message types exchanged on /ws.
const (
	MsgScene = "scene"
	MsgPick  = "pick"
	MsgAtom  = "atom"
	MsgError = "error"
)

// Message is the websocket envelope. Clients send "pick" with Aix; the
// server answers with "atom" or "error" and pushes "scene" on connect
// and whenever the scene changes.
type Message struct {
	Type    string             `json:"type"`
	Scene   *scene.Scene       `json:"scene,omitempty"`
	Shading map[string]Shading `json:"shading,omitempty"`
	Aix     *int               `json:"aix,omitempty"`
	Sphere  *scene.Sphere      `json:"sphere,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Shading holds the two colors the page paints an element's spheres
// with: the side facing the key light and the side facing away.
type Shading struct {
	Lit    molecule.Color `json:"lit"`
	Shadow molecule.Color `json:"shadow"`
}

// ShadingFor evaluates rig once per element present in sc.
func ShadingFor(sc *scene.Scene, rig lighting.Rig) map[string]Shading {
	toward := rig.Key.Direction
	away := [3]float32{-toward[0], -toward[1], -toward[2]}

	out := make(map[string]Shading)
	for _, sp := range sc.Spheres {
		if _, ok := out[sp.Sym]; ok {
			continue
		}
		base := sp.Color.RGB()
		out[sp.Sym] = Shading{
			Lit:    toColor(rig.Shade(toward, base)),
			Shadow: toColor(rig.Shade(away, base)),
		}
	}
	return out
}

func toColor(rgb [3]float32) molecule.Color {
	var c molecule.Color
	for _, v := range rgb {
		c = c<<8 | molecule.Color(v*255+0.5)
	}
	return c
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Server holds the current scene and the connected clients. The scene is
// replaced wholesale and never modified in place.
type Server struct {
	addr     string
	log      *zap.Logger
	upgrader websocket.Upgrader

	sceneMu sync.RWMutex
	scene   *scene.Scene
	rig     lighting.Rig
	shading map[string]Shading

	clientsMu sync.Mutex
	clients   map[*client]bool
}

// New creates a server that will listen on addr.
func New(addr string) *Server {
	return &Server{
		addr: addr,
		log:  logger.Named("web"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rig:     lighting.DefaultRig(),
		clients: make(map[*client]bool),
	}
}

// SetRig changes the lights the page colors are computed from. Call it
// before SetScene.
func (s *Server) SetRig(rig lighting.Rig) {
	s.sceneMu.Lock()
	s.rig = rig
	s.sceneMu.Unlock()
}

// SetScene replaces the scene and pushes it to every client.
func (s *Server) SetScene(sc *scene.Scene) {
	s.sceneMu.Lock()
	s.scene = sc
	s.shading = ShadingFor(sc, s.rig)
	s.sceneMu.Unlock()
	s.broadcast(s.sceneMessage())
}

// sceneMessage returns the current scene with its shading, or a message
// with a nil Scene when none is loaded.
func (s *Server) sceneMessage() Message {
	s.sceneMu.RLock()
	defer s.sceneMu.RUnlock()
	return Message{Type: MsgScene, Scene: s.scene, Shading: s.shading}
}

func (s *Server) current() *scene.Scene {
	s.sceneMu.RLock()
	defer s.sceneMu.RUnlock()
	return s.scene
}

// Clients returns the number of open websocket connections.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	for c := range s.clients {
		if err := c.send(msg); err != nil {
			s.log.Warn("websocket write failed", zap.Error(err))
			c.conn.Close()
			delete(s.clients, c)
		}
	}
}

// Handler returns the HTTP routes: the page at /, the scene at
// /scene.json and the websocket at /ws.
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServer(http.FS(static)))
	mux.HandleFunc("GET /scene.json", s.serveScene)
	mux.HandleFunc("GET /ws", s.serveWebSocket)
	return mux
}

func (s *Server) serveScene(w http.ResponseWriter, r *http.Request) {
	sc := s.current()
	if sc == nil {
		http.Error(w, "no scene loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sc); err != nil {
		s.log.Warn("encoding scene", zap.Error(err))
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn}

	s.clientsMu.Lock()
	s.clients[c] = true
	s.clientsMu.Unlock()
	s.log.Info("client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		conn.Close()
		s.log.Info("client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	if msg := s.sceneMessage(); msg.Scene != nil {
		if err := c.send(msg); err != nil {
			return
		}
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket read", zap.Error(err))
			}
			return
		}
		if err := c.send(s.reply(msg)); err != nil {
			return
		}
	}
}

func (s *Server) reply(msg Message) Message {
	switch msg.Type {
	case MsgPick:
		sc := s.current()
		if sc == nil {
			return Message{Type: MsgError, Error: "no scene loaded"}
		}
		if msg.Aix == nil {
			return Message{Type: MsgError, Error: "pick needs aix"}
		}
		sp, err := sc.SphereAt(*msg.Aix)
		if err != nil {
			return Message{Type: MsgError, Error: err.Error()}
		}
		s.log.Info("atom picked", zap.Int("aix", sp.Aix), zap.String("sym", sp.Sym))
		return Message{Type: MsgAtom, Sphere: sp}
	default:
		return Message{Type: MsgError, Error: fmt.Sprintf("unknown message type %q", msg.Type)}
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.closeClients()
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}
