package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"recommend-service/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// streamMessage is one frame pushed to the client.
type streamMessage struct {
	Type   string             `json:"type"` // recommendations | error
	Reason string             `json:"reason,omitempty"`
	Data   *recommendResponse `json:"data,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func originChecker(allow []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allow))
	for _, o := range allow {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// Stream keeps a websocket open and pushes a freshly ranked result on
// connect, after every directory change and whenever the client sends a
// new query ({"commodity": ..., "sort": ..., "location": {...}}).
func Stream(d Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(d.AllowOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(r, d.Logger)
		q, err := queryParams(r, d.TopN)
		if err != nil {
			fail(w, log, err)
			return
		}

		// subscribe first so nothing written between the first List and
		// the subscription is missed
		events, unsubscribe := d.Dir.Subscribe()
		defer unsubscribe()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade")
			return
		}
		defer conn.Close()
		log.Info().Msg("stream opened")

		updates := make(chan query)
		stop := make(chan struct{})
		done := make(chan struct{})
		defer close(stop)

		conn.SetReadLimit(64 << 10)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		go func() {
			defer close(done)
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
						log.Warn().Err(err).Msg("stream closed unexpectedly")
					}
					return
				}
				var next query
				if err := json.Unmarshal(data, &next); err != nil {
					log.Debug().Err(err).Msg("ignoring malformed stream message")
					continue
				}
				select {
				case updates <- next:
				case <-stop:
					return
				}
			}
		}()

		push := func(reason string) error {
			msg := streamMessage{Type: "recommendations", Reason: reason}
			cands, err := d.Dir.List(r.Context())
			if err != nil {
				log.Error().Err(err).Msg("stream list")
				msg = streamMessage{Type: "error", Reason: reason, Error: "directory unavailable"}
			} else {
				resp := d.rank(metrics.SourceStream, cands, q)
				msg.Data = &resp
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			return conn.WriteJSON(msg)
		}

		if err := push("connect"); err != nil {
			return
		}

		ping := time.NewTicker(pingPeriod)
		defer ping.Stop()

		for {
			select {
			case <-done:
				log.Info().Msg("stream closed")
				return

			case ev, ok := <-events:
				if !ok {
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
						time.Now().Add(writeWait))
					return
				}
				reason := string(ev.Kind)
				// a burst of writes becomes one pass over the latest state
			drain:
				for {
					select {
					case ev, ok = <-events:
						if !ok {
							break drain
						}
						reason = string(ev.Kind)
					default:
						break drain
					}
				}
				if err := push(reason); err != nil {
					return
				}

			case next := <-updates:
				q = mergeQuery(q, next)
				if err := push("query"); err != nil {
					return
				}

			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func mergeQuery(cur, next query) query {
	if next.Location != nil {
		cur.Location = next.Location
	}
	if next.Commodity != "" {
		cur.Commodity = next.Commodity
	}
	if next.Sort != "" {
		cur.Sort = next.Sort
	}
	if next.Limit > 0 {
		cur.Limit = next.Limit
	}
	return cur
}
