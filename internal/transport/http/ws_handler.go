package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/linguachat/linguachat-server/internal/bus"
	"github.com/linguachat/linguachat-server/internal/chat"
	"github.com/linguachat/linguachat-server/internal/store"
)

// WSHandler upgrades HTTP connections into a room's live feed. The feed is
// subscribe-only: messages are submitted over REST and the socket carries
// events from the bus to the client until it disconnects.
type WSHandler struct {
	chat  *chat.Service
	bus   bus.Bus
	store store.Store
	log   *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(chatService *chat.Service, b bus.Bus, st store.Store, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{chat: chatService, bus: b, store: st, log: logger}
}

// Serve handles GET /ws/rooms/:peer.
func (h *WSHandler) Serve(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	peer := c.Param("peer")
	if _, err := h.store.GetUserByUsername(c.Request.Context(), peer); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
			return
		}
		h.log.Error().Err(err).Str("peer", peer).Msg("failed to look up peer")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	roomID, err := h.chat.ResolveRoom(identity.Username, peer)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: chat.Code(err)})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribing before any further client interaction narrows the gap
	// between a history fetch and the live feed; dedup by message id on
	// the client covers the rest.
	sub, err := h.bus.Subscribe(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", roomID).Msg("subscribe failed")
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer sub.Close()

	h.log.Debug().
		Str("room_id", roomID).
		Str("user", identity.Username).
		Msg("live feed subscribed")

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sub)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	sub.Close()
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("room_id", roomID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop drains inbound frames so close frames and pings are processed.
// Clients have nothing to say on this socket.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sub bus.Subscription) error {
	for {
		select {
		case msg, ok := <-sub.Events():
			if !ok {
				// Feed dropped; the client must re-subscribe and re-fetch
				// history to close any gap.
				return errors.New("live feed closed")
			}
			if err := wsjson.Write(ctx, conn, outboundNewMessage(msg)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
