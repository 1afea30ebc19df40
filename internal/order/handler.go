package order

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/menyraclub/menyra/pkg"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the staff-side order dashboard: the filterable order list,
// status updates, settlement and the live event stream.
type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	repo      OrderRepo
	feed      *Feed
	publisher events.Publisher
}

func NewHandler(repo OrderRepo, feed *Feed, publisher events.Publisher, config *apt.Config, logger apt.Logger) *Handler {
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
	r.Route("/staff/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/summary", h.DailySummary)
		r.Get("/events", h.StreamEvents)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/paid", h.MarkPaid)
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	filter := r.URL.Query().Get("status")
	if filter != "" && filter != StatusAll && !KnownStatus(filter) {
		apt.RespondError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	orders, err := h.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list orders", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	filtered := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if o.MatchesFilter(filter) {
			filtered = append(filtered, o)
		}
	}

	apt.RespondCollection(w, filtered, "order")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if order == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if order == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var req UpdateStatusRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	previous := order.Status
	if err := order.SetStatus(req.Status); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	if err := h.repo.Save(ctx, order); err != nil {
		log.Error("cannot update order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	h.publishEvent(ctx, log, pkg.OrderEvent{
		EventType:      pkg.EventOrderStatusChanged,
		RestaurantID:   order.RestaurantID,
		OrderID:        order.ID.String(),
		Table:          order.Table,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Total,
		OccurredAt:     time.Now(),
	})

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.MarkPaid")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	order, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if order == nil {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	previous := order.Status
	if err := order.MarkPaid(); err != nil {
		apt.RespondError(w, http.StatusConflict, "Order is already paid")
		return
	}

	if err := h.repo.Save(ctx, order); err != nil {
		log.Error("cannot settle order", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update order")
		return
	}

	h.publishEvent(ctx, log, pkg.OrderEvent{
		EventType:      pkg.EventOrderStatusChanged,
		RestaurantID:   order.RestaurantID,
		OrderID:        order.ID.String(),
		Table:          order.Table,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Total,
		OccurredAt:     time.Now(),
	})

	links := apt.RESTfulLinksFor(order)
	apt.RespondSuccess(w, order, links...)
}

func (h *Handler) DailySummary(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DailySummary")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid date parameter")
		return
	}

	orders, err := h.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list orders", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve orders")
		return
	}

	apt.RespondSuccess(w, Summarize(orders, date))
}

// StreamEvents serves a restaurant's order events over SSE until the client
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

	log.Debug("order event stream opened", "restaurant_id", restaurantID)

	for {
		select {
		case <-r.Context().Done():
			log.Debug("order event stream closed", "restaurant_id", restaurantID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := pkg.WriteSSEEvent(w, evt.EventType, evt); err != nil {
				log.Debug("order event stream write failed", "error", err)
				return
			}
		}
	}
}

func (h *Handler) publishEvent(ctx context.Context, log apt.Logger, evt pkg.OrderEvent) {
	if h.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("cannot marshal order event", "error", err)
		return
	}

	if err := h.publisher.Publish(ctx, pkg.OrderEventsTopic, payload); err != nil {
		log.Error("cannot publish order event", "error", err, "event_type", evt.EventType)
	}
}

func (h *Handler) parseIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		log.Debug("missing id parameter")
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}, log apt.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
