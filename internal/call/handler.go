package call

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/menyraclub/menyra/pkg"
)

// Handler exposes the waiter-side view of calls: the open list, resolution
// and the live event stream.
type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	repo      CallRepo
	feed      *Feed
	publisher events.Publisher
}

func NewHandler(repo CallRepo, feed *Feed, publisher events.Publisher, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		repo:      repo,
		feed:      feed,
		publisher: publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/calls", func(r chi.Router) {
		r.Get("/", h.ListOpenCalls)
		r.Get("/events", h.StreamEvents)
		r.Post("/{id}/resolve", h.ResolveCall)
	})
}

func (h *Handler) ListOpenCalls(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOpenCalls")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	calls, err := h.repo.ListOpenByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list open calls", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve calls")
		return
	}

	apt.RespondCollection(w, calls, "call")
}

func (h *Handler) ResolveCall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ResolveCall")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	c, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading call", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load call")
		return
	}
	if c == nil {
		apt.RespondError(w, http.StatusNotFound, "Call not found")
		return
	}

	if err := c.Resolve(); err != nil {
		apt.RespondError(w, http.StatusConflict, "Call is already resolved")
		return
	}

	if err := h.repo.Save(ctx, c); err != nil {
		log.Error("cannot resolve call", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update call")
		return
	}

	h.publishEvent(r, log, pkg.CallEvent{
		EventType:    pkg.EventCallResolved,
		RestaurantID: c.RestaurantID,
		CallID:       c.ID.String(),
		TableID:      c.TableID,
		Status:       c.Status,
		OccurredAt:   time.Now(),
	})

	links := apt.RESTfulLinksFor(c)
	apt.RespondSuccess(w, c, links...)
}

// StreamEvents serves a restaurant's call events over SSE until the client
// disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	events, cancel := h.feed.Subscribe(restaurantID)
	defer cancel()

	pkg.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	log.Debug("call event stream opened", "restaurant_id", restaurantID)

	for {
		select {
		case <-r.Context().Done():
			log.Debug("call event stream closed", "restaurant_id", restaurantID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := pkg.WriteSSEEvent(w, evt.EventType, evt); err != nil {
				log.Debug("call event stream write failed", "error", err)
				return
			}
		}
	}
}

func (h *Handler) publishEvent(r *http.Request, log apt.Logger, evt pkg.CallEvent) {
	if h.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("cannot marshal call event", "error", err)
		return
	}

	if err := h.publisher.Publish(r.Context(), pkg.CallEventsTopic, payload); err != nil {
		log.Error("cannot publish call event", "error", err, "event_type", evt.EventType)
	}
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
