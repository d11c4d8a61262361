package notify

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rpupo63/blog-publishing-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Event names delivered over the notification channel.
const (
	EventDeleteBlog  = "deleteBlog"
	EventPublishBlog = "publishBlog"
)

// Event is the frame pushed to listeners: the event name plus its payload
// (a blog id for deletions, the full blog record for publish toggles).
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Notifier decouples request handling from listener delivery: handlers push
// events onto a buffered queue after the HTTP response is written, and a
// separate drain goroutine broadcasts them. Handlers never block on
// listeners; a full queue drops the event.
type Notifier struct {
	logger zerolog.Logger
	hub    *Hub
	events chan Event
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{
		logger: log.With().Str("handlerName", "notifier").Logger(),
		hub:    hub,
		events: make(chan Event, 64),
	}
}

// Run drains the event queue into the hub until the queue is closed.
func (n *Notifier) Run() {
	for evt := range n.events {
		frame, err := json.Marshal(evt)
		if err != nil {
			n.logger.Error().Err(err).Str("event", evt.Event).Msg("failed to encode event")
			continue
		}
		n.hub.Broadcast(frame)
	}
}

// Close stops the drain loop once queued events are flushed.
func (n *Notifier) Close() {
	close(n.events)
}

// BlogDeleted announces a blog deletion to all connected listeners.
func (n *Notifier) BlogDeleted(id uuid.UUID) {
	n.publish(Event{Event: EventDeleteBlog, Data: id.String()})
}

// BlogPublished announces a publish toggle with the updated blog record.
func (n *Notifier) BlogPublished(blog *models.Blog) {
	n.publish(Event{Event: EventPublishBlog, Data: blog})
}

func (n *Notifier) publish(evt Event) {
	select {
	case n.events <- evt:
	default:
		n.logger.Warn().Str("event", evt.Event).Msg("event queue full, dropping event")
	}
}
