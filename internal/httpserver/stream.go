// internal/httpserver/stream.go
//
// GET /ws streams the session's snapshot as JSON: once on connect, then after
// every state change made by any request on the same session.

package httpserver

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog/hlog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/robalobadob/capitals/internal/game"
)

// streamBuffer bounds how far a slow reader may lag before updates are dropped.
const streamBuffer = 8

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	opts := &websocket.AcceptOptions{}
	if u, err := url.Parse(s.opts.ClientOrigin); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("websocket accept")
		return
	}
	defer c.Close(websocket.StatusInternalError, "")

	updates := make(chan game.Snapshot, streamBuffer)
	unsubscribe := sess.Subscribe(func(snap game.Snapshot) {
		select {
		case updates <- snap:
		default: // reader is behind; it gets the next one
		}
	})
	defer unsubscribe()

	// The client never sends; CloseRead handles control frames and cancels
	// ctx when the peer goes away.
	ctx := c.CloseRead(r.Context())
	if err := wsjson.Write(ctx, c, sess.Snapshot()); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case <-s.closing:
			c.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case snap := <-updates:
			if err := wsjson.Write(ctx, c, snap); err != nil {
				hlog.FromRequest(r).Debug().Err(err).Msg("websocket write")
				return
			}
		}
	}
}
