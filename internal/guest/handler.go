package guest

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

	"github.com/menyraclub/menyra/internal/call"
	"github.com/menyraclub/menyra/internal/menu"
	"github.com/menyraclub/menyra/internal/order"
	"github.com/menyraclub/menyra/internal/tenant"
	"github.com/menyraclub/menyra/pkg"
)

const MaxBodyBytes = 1 << 20

// Handler is the guest surface: everything a phone that scanned a table code
// talks to. Guests are identified only by the restaurant and table in the
// link, so every route resolves a Session first and most check the
// restaurant's operational gate.
type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	rests     tenant.RestaurantRepo
	items     menu.MenuItemRepo
	offers    menu.OfferRepo
	comments  menu.CommentRepo
	orders    order.OrderRepo
	calls     call.CallRepo
	carts     *CartStore
	likes     *LikeStore
	orderFeed *order.Feed
	callFeed  *call.Feed
	publisher events.Publisher
}

type HandlerDeps struct {
	Restaurants tenant.RestaurantRepo
	Items       menu.MenuItemRepo
	Offers      menu.OfferRepo
	Comments    menu.CommentRepo
	Orders      order.OrderRepo
	Calls       call.CallRepo
	Carts       *CartStore
	Likes       *LikeStore
	OrderFeed   *order.Feed
	CallFeed    *call.Feed
	Publisher   events.Publisher
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		rests:     hd.Restaurants,
		items:     hd.Items,
		offers:    hd.Offers,
		comments:  hd.Comments,
		orders:    hd.Orders,
		calls:     hd.Calls,
		carts:     hd.Carts,
		likes:     hd.Likes,
		orderFeed: hd.OrderFeed,
		callFeed:  hd.CallFeed,
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/guest", func(r chi.Router) {
		r.Get("/menu", h.GetMenu)
		r.Get("/menu-items/{id}", h.GetMenuItem)
		r.Post("/menu-items/{id}/like", h.ToggleLike)
		r.Get("/menu-items/{id}/comments", h.ListComments)
		r.Post("/menu-items/{id}/comments", h.AddComment)
		r.Get("/offers", h.GetOffers)
		r.Get("/cart", h.GetCart)
		r.Post("/cart/items", h.ChangeCartItem)
		r.Delete("/cart", h.ClearCart)
		r.Post("/orders", h.SubmitOrder)
		r.Get("/orders/latest", h.LatestOrder)
		r.Get("/orders/events", h.StreamOrderEvents)
		r.Post("/calls", h.CallWaiter)
		r.Get("/calls/open", h.OpenCall)
		r.Get("/calls/events", h.StreamCallEvents)
	})
}

// loadOperational resolves the session's restaurant and enforces the access
// gate: unknown restaurants 404, deactivated or expired ones 403.
func (h *Handler) loadOperational(w http.ResponseWriter, r *http.Request, log apt.Logger, sess Session) (*tenant.Restaurant, bool) {
	rest, err := h.rests.Get(r.Context(), sess.RestaurantID)
	if err != nil {
		log.Error("error loading restaurant", "error", err, "restaurant_id", sess.RestaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load restaurant")
		return nil, false
	}
	if rest == nil {
		apt.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return nil, false
	}
	if !rest.Operational(tenant.TodayISO()) {
		apt.RespondError(w, http.StatusForbidden, "Restaurant is not available")
		return nil, false
	}
	return rest, true
}

type MenuResponse struct {
	Restaurant *RestaurantInfo  `json:"restaurant"`
	Table      string           `json:"table"`
	Catalog    *menu.Catalog    `json:"catalog"`
	Filtered   []*menu.MenuItem `json:"filtered,omitempty"`
}

// RestaurantInfo is the subset of the tenant record guests may see. Staff
// codes never leave the staff surface.
type RestaurantInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url,omitempty"`
	OffersEnabled bool   `json:"offers_enabled"`
}

func guestInfo(rest *tenant.Restaurant) *RestaurantInfo {
	return &RestaurantInfo{
		ID:            rest.ID,
		Name:          rest.Name,
		LogoURL:       rest.LogoURL,
		OffersEnabled: rest.OffersEnabled,
	}
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenu")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	rest, ok := h.loadOperational(w, r, log, sess)
	if !ok {
		return
	}

	items, err := h.items.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		log.Error("cannot list menu items", "error", err, "restaurant_id", rest.ID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu")
		return
	}

	catalog := menu.BuildCatalog(items)
	resp := &MenuResponse{
		Restaurant: guestInfo(rest),
		Table:      sess.TableID,
		Catalog:    catalog,
	}

	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")
	if category != "" || search != "" {
		pool := catalog.Items
		switch r.URL.Query().Get("kind") {
		case menu.TypeDrink:
			pool = catalog.Drinks
		case menu.TypeFood:
			pool = catalog.Food
		}
		resp.Filtered = menu.Filter(pool, category, search)
	}

	apt.RespondSuccess(w, resp)
}

type MenuItemDetail struct {
	Item          *menu.MenuItem  `json:"item"`
	AverageRating float64         `json:"average_rating"`
	Liked         bool            `json:"liked"`
	Comments      []*menu.Comment `json:"comments"`
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	item, ok := h.loadItem(w, r, log)
	if !ok {
		return
	}

	liked, err := h.likes.Liked(ctx, sess.RestaurantID, sess.TableID, item.ID.String())
	if err != nil {
		log.Error("cannot read like flag", "error", err, "item_id", item.ID.String())
		liked = false
	}

	comments, err := h.comments.ListByMenuItem(ctx, item.ID)
	if err != nil {
		log.Error("cannot list comments", "error", err, "item_id", item.ID.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve comments")
		return
	}

	apt.RespondSuccess(w, &MenuItemDetail{
		Item:          item,
		AverageRating: item.AverageRating(),
		Liked:         liked,
		Comments:      comments,
	})
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ToggleLike")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	item, ok := h.loadItem(w, r, log)
	if !ok {
		return
	}

	liked, delta, err := h.likes.Toggle(ctx, sess.RestaurantID, sess.TableID, item.ID.String())
	if err != nil {
		log.Error("cannot toggle like flag", "error", err, "item_id", item.ID.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update like")
		return
	}

	if err := h.items.IncrementCounters(ctx, item.ID, delta, 0, 0, 0); err != nil {
		log.Error("cannot adjust like count", "error", err, "item_id", item.ID.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update like")
		return
	}

	count := item.LikeCount + delta
	if count < 0 {
		count = 0
	}
	apt.RespondSuccess(w, &LikeResponse{Liked: liked, LikeCount: count})
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListComments")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	item, ok := h.loadItem(w, r, log)
	if !ok {
		return
	}

	comments, err := h.comments.ListByMenuItem(ctx, item.ID)
	if err != nil {
		log.Error("cannot list comments", "error", err, "item_id", item.ID.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve comments")
		return
	}

	apt.RespondCollection(w, comments, "comment")
}

type AddCommentRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating,omitempty"`
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddComment")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	item, ok := h.loadItem(w, r, log)
	if !ok {
		return
	}

	var req AddCommentRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	comment, err := menu.NewComment(item.ID, req.Text, req.Rating)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.comments.Create(ctx, comment); err != nil {
		log.Error("cannot create comment", "error", err, "item_id", item.ID.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not save comment")
		return
	}

	ratings, ratingSum := 0, 0
	if comment.Rating > 0 {
		ratings, ratingSum = 1, comment.Rating
	}
	if err := h.items.IncrementCounters(ctx, item.ID, 0, 1, ratings, ratingSum); err != nil {
		log.Error("cannot adjust comment counters", "error", err, "item_id", item.ID.String())
	}

	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, comment)
}

func (h *Handler) GetOffers(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOffers")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	rest, ok := h.loadOperational(w, r, log, sess)
	if !ok {
		return
	}

	if !rest.OffersEnabled {
		apt.RespondCollection(w, []menu.OfferDisplay{}, "offer")
		return
	}

	offers, err := h.offers.ListByRestaurant(ctx, rest.ID)
	if err != nil {
		log.Error("cannot list offers", "error", err, "restaurant_id", rest.ID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve offers")
		return
	}

	displays := make([]menu.OfferDisplay, 0)
	for _, offer := range menu.ActiveOffers(offers) {
		var linked *menu.MenuItem
		if offer.MenuItemID != nil {
			linked, err = h.items.Get(ctx, *offer.MenuItemID)
			if err != nil {
				log.Error("cannot load linked item", "error", err, "offer_id", offer.ID.String())
				linked = nil
			}
			if linked != nil && !linked.Available {
				linked = nil
			}
		}
		displays = append(displays, menu.ResolveDisplay(offer, linked))
	}

	apt.RespondCollection(w, displays, "offer")
}

type CartResponse struct {
	Lines []Line  `json:"lines"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

func cartResponse(cart *Cart) *CartResponse {
	lines := cart.Lines
	if lines == nil {
		lines = []Line{}
	}
	return &CartResponse{Lines: lines, Total: cart.Total(), Count: cart.Count()}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetCart")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	cart, err := h.carts.Load(ctx, sess.RestaurantID, sess.TableID)
	if err != nil {
		log.Error("cannot load cart", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	apt.RespondSuccess(w, cartResponse(cart))
}

type ChangeCartItemRequest struct {
	ID    string  `json:"id"`
	Name  string  `json:"name,omitempty"`
	Price float64 `json:"price,omitempty"`
	Qty   int     `json:"qty"`
}

func (h *Handler) ChangeCartItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ChangeCartItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	var req ChangeCartItemRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if req.ID == "" {
		apt.RespondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if req.Qty == 0 {
		apt.RespondError(w, http.StatusBadRequest, "qty must be a non-zero delta")
		return
	}

	cart, err := h.carts.Load(ctx, sess.RestaurantID, sess.TableID)
	if err != nil {
		log.Error("cannot load cart", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}

	name, price := req.Name, req.Price
	// When the line refers to a real menu item, the stored snapshot uses the
	// catalog name and price, not whatever the client claims.
	if itemID, err := uuid.Parse(req.ID); err == nil {
		item, err := h.items.Get(ctx, itemID)
		if err != nil {
			log.Error("error loading menu item", "error", err, "item_id", req.ID)
			apt.RespondError(w, http.StatusInternalServerError, "Could not load menu item")
			return
		}
		if item == nil || !item.Available {
			apt.RespondError(w, http.StatusNotFound, "Menu item not available")
			return
		}
		item.Normalize()
		name, price = item.Name, item.Price
	}

	cart.ChangeQuantity(req.ID, name, price, req.Qty)

	if err := h.carts.Save(ctx, sess.RestaurantID, sess.TableID, cart); err != nil {
		log.Error("cannot save cart", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not save cart")
		return
	}

	apt.RespondSuccess(w, cartResponse(cart))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearCart")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	if err := h.carts.Clear(ctx, sess.RestaurantID, sess.TableID); err != nil {
		log.Error("cannot clear cart", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type SubmitOrderRequest struct {
	Note string `json:"note,omitempty"`
}

func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SubmitOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	rest, ok := h.loadOperational(w, r, log, sess)
	if !ok {
		return
	}

	var req SubmitOrderRequest
	if r.ContentLength > 0 && !h.decodeBody(w, r, &req, log) {
		return
	}

	cart, err := h.carts.Load(ctx, sess.RestaurantID, sess.TableID)
	if err != nil {
		log.Error("cannot load cart", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load cart")
		return
	}
	if cart.IsEmpty() {
		apt.RespondError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	lines := make([]order.Line, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		lines = append(lines, order.Line{ItemID: l.ID, Name: l.Name, Price: l.Price, Qty: l.Qty})
	}

	o, err := order.NewOrder(rest.ID, sess.TableID, lines, req.Note)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orders.Create(ctx, o); err != nil {
		log.Error("cannot create order", "error", err, "restaurant_id", rest.ID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not submit order")
		return
	}

	// The cart only empties once the order is durably stored.
	if err := h.carts.Clear(ctx, sess.RestaurantID, sess.TableID); err != nil {
		log.Error("cannot clear cart after submission", "error", err, "order_id", o.ID.String())
	}

	h.publishOrderEvent(ctx, log, pkg.OrderEvent{
		EventType:    pkg.EventOrderCreated,
		RestaurantID: o.RestaurantID,
		OrderID:      o.ID.String(),
		Table:        o.Table,
		Status:       o.Status,
		Total:        o.Total,
		OccurredAt:   time.Now(),
	})

	log.Info("order submitted", "order_id", o.ID.String(), "restaurant_id", rest.ID, "table", sess.TableID, "total", o.Total)

	links := apt.RESTfulLinksFor(o)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, o, links...)
}

type OrderStatusResponse struct {
	Order *order.Order `json:"order"`
	Stage string       `json:"stage"`
}

func (h *Handler) LatestOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.LatestOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	o, err := h.orders.LatestForTable(ctx, sess.RestaurantID, sess.TableID)
	if err != nil {
		log.Error("cannot load latest order", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load order")
		return
	}
	if o == nil {
		apt.RespondError(w, http.StatusNotFound, "No order for this table")
		return
	}

	apt.RespondSuccess(w, &OrderStatusResponse{Order: o, Stage: order.GuestStage(o.Status)})
}

// StreamOrderEvents streams the table's order events over SSE. The feed is
// restaurant-wide; events for other tables are filtered out here.
func (h *Handler) StreamOrderEvents(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	sess := SessionFromRequest(r)

	events, cancel := h.orderFeed.Subscribe(sess.RestaurantID)
	defer cancel()

	pkg.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	log.Debug("guest order stream opened", "restaurant_id", sess.RestaurantID, "table", sess.TableID)

	for {
		select {
		case <-r.Context().Done():
			log.Debug("guest order stream closed", "restaurant_id", sess.RestaurantID, "table", sess.TableID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.Table != sess.TableID {
				continue
			}
			evt.Status = order.GuestStage(evt.Status)
			if err := pkg.WriteSSEEvent(w, evt.EventType, evt); err != nil {
				log.Debug("guest order stream write failed", "error", err)
				return
			}
		}
	}
}

type CallResponse struct {
	Call    *call.Call `json:"call"`
	Created bool       `json:"created"`
}

func (h *Handler) CallWaiter(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CallWaiter")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	rest, ok := h.loadOperational(w, r, log, sess)
	if !ok {
		return
	}

	c, created, err := call.Open(ctx, h.calls, rest.ID, sess.TableID)
	if err != nil {
		log.Error("cannot open call", "error", err, "restaurant_id", rest.ID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not call the waiter")
		return
	}

	if created {
		h.publishCallEvent(ctx, log, pkg.CallEvent{
			EventType:    pkg.EventCallOpened,
			RestaurantID: c.RestaurantID,
			CallID:       c.ID.String(),
			TableID:      c.TableID,
			Status:       c.Status,
			OccurredAt:   time.Now(),
		})
		w.WriteHeader(http.StatusCreated)
	}

	apt.RespondSuccess(w, &CallResponse{Call: c, Created: created})
}

func (h *Handler) OpenCall(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OpenCall")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	sess := SessionFromRequest(r)

	c, err := h.calls.FindOpen(ctx, sess.RestaurantID, sess.TableID)
	if err != nil {
		log.Error("cannot look up open call", "error", err, "restaurant_id", sess.RestaurantID, "table", sess.TableID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not look up call")
		return
	}

	apt.RespondSuccess(w, &CallResponse{Call: c, Created: false})
}

// StreamCallEvents streams the table's call events over SSE so the guest page
// can clear its "waiter called" state when staff resolve the call.
func (h *Handler) StreamCallEvents(w http.ResponseWriter, r *http.Request) {
	log := h.log(r)
	sess := SessionFromRequest(r)

	events, cancel := h.callFeed.Subscribe(sess.RestaurantID)
	defer cancel()

	pkg.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	log.Debug("guest call stream opened", "restaurant_id", sess.RestaurantID, "table", sess.TableID)

	for {
		select {
		case <-r.Context().Done():
			log.Debug("guest call stream closed", "restaurant_id", sess.RestaurantID, "table", sess.TableID)
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if evt.TableID != sess.TableID {
				continue
			}
			if err := pkg.WriteSSEEvent(w, evt.EventType, evt); err != nil {
				log.Debug("guest call stream write failed", "error", err)
				return
			}
		}
	}
}

func (h *Handler) loadItem(w http.ResponseWriter, r *http.Request, log apt.Logger) (*menu.MenuItem, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		log.Debug("invalid id parameter", "id", idStr)
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return nil, false
	}

	item, err := h.items.Get(r.Context(), id)
	if err != nil {
		log.Error("error loading menu item", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load menu item")
		return nil, false
	}
	if item == nil || !item.Available {
		apt.RespondError(w, http.StatusNotFound, "Menu item not found")
		return nil, false
	}

	item.Normalize()
	return item, true
}

func (h *Handler) publishOrderEvent(ctx context.Context, log apt.Logger, evt pkg.OrderEvent) {
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

func (h *Handler) publishCallEvent(ctx context.Context, log apt.Logger, evt pkg.CallEvent) {
	if h.publisher == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Error("cannot marshal call event", "error", err)
		return
	}

	if err := h.publisher.Publish(ctx, pkg.CallEventsTopic, payload); err != nil {
		log.Error("cannot publish call event", "error", err, "event_type", evt.EventType)
	}
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
