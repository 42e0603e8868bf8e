package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/panel"
)

var errSurfaceClosed = errors.New("manager tab closed")

const (
	writeWait  = 10 * time.Second
	queueDepth = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Same-origin only.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// wsSurface is one manager tab. It prompts for delete confirmation over the
// socket with confirm/confirmResult messages.
type wsSurface struct {
	id   string
	conn *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan bool
	seq     atomic.Uint64

	done      chan struct{}
	closeOnce sync.Once
}

func newWSSurface(id string, conn *websocket.Conn) *wsSurface {
	return &wsSurface{id: id, conn: conn, pending: map[string]chan bool{}, done: make(chan struct{})}
}

func (w *wsSurface) ID() string { return w.id }

func (w *wsSurface) Send(n panel.Notice) error {
	select {
	case <-w.done:
		return errSurfaceClosed
	default:
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return w.conn.WriteJSON(n)
}

func (w *wsSurface) Confirm(ctx context.Context, message string) (bool, error) {
	id := strconv.FormatUint(w.seq.Add(1), 10)
	ch := make(chan bool, 1)
	w.mu.Lock()
	w.pending[id] = ch
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
	}()

	if err := w.Send(panel.ConfirmNotice(id, message)); err != nil {
		return false, err
	}
	select {
	case ok := <-ch:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-w.done:
		return false, errSurfaceClosed
	}
}

func (w *wsSurface) resolve(id string, confirmed bool) bool {
	w.mu.Lock()
	ch, ok := w.pending[id]
	w.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- confirmed:
	default:
	}
	return true
}

func (w *wsSurface) close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close()
	})
}

func (s *Server) handleWS(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	surf := newWSSurface("manager-"+strconv.FormatUint(s.seq.Add(1), 10), conn)
	s.panel.Register(surf)

	ctx, cancel := context.WithCancel(context.Background())
	queue := make(chan panel.Intent, queueDepth)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.drain(ctx, surf, queue)
	}()

	defer func() {
		s.panel.Unregister(surf)
		surf.close()
		cancel()
		wg.Wait()
	}()

	// Reading never blocks on intent handling so confirmResult replies arrive
	// while a delete is waiting for them.
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		in, err := panel.DecodeIntent(data)
		if err != nil {
			s.log.Debug("bad manager message", zap.String(logging.FieldSurface, surf.id), zap.Error(err))
			continue
		}
		if in.Type == panel.IntentConfirmResult {
			if !surf.resolve(in.ID, in.Confirmed) {
				s.log.Debug("stale confirmation", zap.String("id", in.ID))
			}
			continue
		}
		select {
		case queue <- in:
		default:
			s.log.Warn("manager queue full; intent dropped", zap.String(logging.FieldSurface, surf.id), zap.String(logging.FieldIntent, string(in.Type)))
		}
	}
}

func (s *Server) drain(ctx context.Context, surf *wsSurface, queue <-chan panel.Intent) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-queue:
			s.dispatch(ctx, surf, in)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, surf panel.Surface, in panel.Intent) {
	if s.events != nil {
		select {
		case s.events <- panel.IntentReceived{Surface: surf, Intent: in}:
		case <-ctx.Done():
		}
		return
	}
	if err := s.panel.Handle(ctx, s.panel.Scope(), surf, in); err != nil {
		s.log.Error("intent failed", zap.String(logging.FieldIntent, string(in.Type)), zap.Error(err))
		_ = surf.Send(panel.ErrorNotice(err.Error()))
	}
}
