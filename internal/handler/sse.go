package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/instant-messaging/internal/middleware"
	"github.com/iliyamo/instant-messaging/internal/model"
	"github.com/iliyamo/instant-messaging/internal/service"
)

// EventsHandler streams channel events to members over Server-Sent
// Events. Each open request is one emitter registered with the
// event service; keep-alives ride the same stream as comments.
type EventsHandler struct {
	Events   *service.EventService
	Channels *service.ChannelService
}

func NewEventsHandler(events *service.EventService, channels *service.ChannelService) *EventsHandler {
	return &EventsHandler{Events: events, Channels: channels}
}

// Stream subscribes the caller to a channel's event stream. Only
// members may listen. The handler blocks until the client disconnects
// or a write fails; either way the emitter is deregistered.
func (h *EventsHandler) Stream(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid channel id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Channels.MemberAccess(ctx, middleware.CurrentUser(c).ID, id); err != nil {
		return httpError(c, err)
	}

	res := c.Response()
	em := newSSEEmitter(res)
	if err := h.Events.Subscribe(ctx, id, em); err != nil {
		return httpError(c, err)
	}

	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	select {
	case <-ctx.Done():
		em.close() // client went away
	case <-em.done:
		// write failure already tore the emitter down
	}
	return nil
}

// sseEmitter adapts one SSE response to the event service. Writes are
// serialized; the first failed write marks the emitter dead and fires
// the registered error callbacks so the service drops it.
type sseEmitter struct {
	mu     sync.Mutex
	res    *echo.Response
	done   chan struct{}
	closed bool
	onDone []func()
	onErr  []func(error)
}

func newSSEEmitter(res *echo.Response) *sseEmitter {
	return &sseEmitter{res: res, done: make(chan struct{})}
}

// Emit writes one event in SSE framing. New messages become "message"
// events with a JSON payload; keep-alives become comment lines that
// clients ignore but proxies treat as traffic.
func (e *sseEmitter) Emit(event model.ChannelEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("emitter closed")
	}

	var payload []byte
	switch ev := event.(type) {
	case model.NewMessage:
		data, err := json.Marshal(toMessageView(ev.Message))
		if err != nil {
			return fmt.Errorf("marshal message event: %w", err)
		}
		payload = []byte("event: message\nid: " + strconv.FormatUint(ev.Message.ID, 10) + "\ndata: " + string(data) + "\n\n")
	case model.KeepAlive:
		payload = []byte(": keep-alive " + ev.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00") + "\n\n")
	default:
		return fmt.Errorf("unknown event type %T", event)
	}

	if _, err := e.res.Write(payload); err != nil {
		e.fail(err)
		return err
	}
	e.res.Flush()
	return nil
}

func (e *sseEmitter) OnCompletion(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDone = append(e.onDone, fn)
}

func (e *sseEmitter) OnError(fn func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onErr = append(e.onErr, fn)
}

// close ends the stream normally, e.g. when the client disconnects.
func (e *sseEmitter) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
	for _, fn := range e.onDone {
		fn()
	}
}

// fail ends the stream after a write error. Caller holds the lock.
func (e *sseEmitter) fail(err error) {
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
	for _, fn := range e.onErr {
		fn(err)
	}
}
