// internal/app/features/socket/socket.go
package socket

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	projectstore "github.com/dalemusser/taskflow/internal/app/store/projects"
	taskstore "github.com/dalemusser/taskflow/internal/app/store/tasks"
	"github.com/dalemusser/taskflow/internal/app/system/auth"
	"github.com/dalemusser/taskflow/internal/app/system/realtime"
	"github.com/dalemusser/taskflow/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// writeTimeout bounds a single frame write; a peer that cannot drain a
// frame in this window is treated as gone.
const writeTimeout = 10 * time.Second

// HandleUpgrade authenticates the request, accepts the WebSocket, and
// runs the connection until either side closes it.
// GET /ws
func (h *Handler) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	var userID string
	u, err := h.Tokens.FromRequest(r)
	switch {
	case err == nil:
		userID = u.ID
	case errors.Is(err, auth.ErrNoToken) && h.AllowAnonymous:
		// dev mode: admit without identity
	default:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Authentication required"}`))
		return
	}

	opts := &websocket.AcceptOptions{}
	if h.AllowedOrigin != "" {
		opts.OriginPatterns = []string{h.AllowedOrigin}
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.Log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	conn := realtime.NewConn(userID)
	h.Hub.Register(conn)
	defer h.Hub.Unregister(conn)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writePump(ctx, cancel, ws, conn)

	h.send(ctx, ws, realtime.Event{
		Type: realtime.EventConnected,
		Payload: map[string]any{
			"conn_id": conn.ID(),
			"user_id": userID,
		},
	})

	h.readPump(ctx, ws, conn, userID)
	ws.Close(websocket.StatusNormalClosure, "")
}

// readPump consumes client messages until the connection drops.
func (h *Handler) readPump(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn, userID string) {
	for {
		var msg realtime.ClientMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			return
		}
		h.dispatch(ctx, ws, conn, userID, msg)
	}
}

// writePump delivers hub events to the peer. It owns all writes after
// the welcome frame except dispatch replies, which share the socket's
// serialized writer.
func (h *Handler) writePump(ctx context.Context, cancel context.CancelFunc, ws *websocket.Conn, conn *realtime.Conn) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			ws.Close(websocket.StatusGoingAway, "server closing")
			return
		case data, ok := <-conn.Outbound():
			if !ok {
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := ws.Write(wctx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				return
			}
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, ws *websocket.Conn, conn *realtime.Conn, userID string, msg realtime.ClientMessage) {
	switch msg.Type {
	case realtime.MsgPing:
		h.send(ctx, ws, realtime.Event{Type: realtime.EventPong})

	case realtime.MsgJoinProject:
		projectID, ok := h.authorizeProject(ctx, userID, msg.ProjectID)
		if !ok {
			return
		}
		h.Hub.Join(conn, realtime.ProjectRoom(projectID))
		h.send(ctx, ws, realtime.Event{
			Type:    realtime.EventProjectJoined,
			Payload: map[string]any{"project_id": projectID},
		})

	case realtime.MsgLeaveProject:
		if msg.ProjectID != "" {
			h.Hub.Leave(conn, realtime.ProjectRoom(msg.ProjectID))
		}

	case realtime.MsgJoinTask:
		taskID, ok := h.authorizeTask(ctx, userID, msg.TaskID)
		if !ok {
			return
		}
		h.Hub.Join(conn, realtime.TaskRoom(taskID))

	case realtime.MsgLeaveTask:
		if msg.TaskID != "" {
			h.Hub.Leave(conn, realtime.TaskRoom(msg.TaskID))
		}

	default:
		h.Log.Debug("unknown socket message", zap.String("type", msg.Type))
	}
}

// authorizeProject checks the caller may subscribe to a project room.
// Anonymous dev sockets skip the membership check.
func (h *Handler) authorizeProject(ctx context.Context, userID, projectHex string) (string, bool) {
	id, err := primitive.ObjectIDFromHex(projectHex)
	if err != nil {
		return "", false
	}
	if userID == "" {
		return id.Hex(), h.AllowAnonymous
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", false
	}

	sctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	p, err := projectstore.New(h.DB).GetByID(sctx, id)
	if err != nil {
		return "", false
	}
	if _, member := p.MemberFor(uid); !member {
		return "", false
	}
	return id.Hex(), true
}

// authorizeTask resolves the task's project and applies the same
// membership rule.
func (h *Handler) authorizeTask(ctx context.Context, userID, taskHex string) (string, bool) {
	id, err := primitive.ObjectIDFromHex(taskHex)
	if err != nil {
		return "", false
	}

	sctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	t, err := taskstore.New(h.DB).GetByID(sctx, id)
	if err != nil {
		return "", false
	}
	if _, ok := h.authorizeProject(ctx, userID, t.ProjectID.Hex()); !ok {
		return "", false
	}
	return id.Hex(), true
}

// send writes one server event directly, outside the hub's queues. Used
// for connection-scoped replies (welcome, pong, join acks).
func (h *Handler) send(ctx context.Context, ws *websocket.Conn, ev realtime.Event) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, ws, ev); err != nil {
		h.Log.Debug("socket write failed", zap.String("type", ev.Type), zap.Error(err))
	}
}
