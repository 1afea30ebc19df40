package menu

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the staff-side menu management: item CRUD with availability
// toggling, and offer CRUD with the enable-all shortcut.
type Handler struct {
	logger    apt.Logger
	config    *apt.Config
	tlm       *telemetry.HTTP
	itemRepo  MenuItemRepo
	offerRepo OfferRepo
}

type HandlerDeps struct {
	ItemRepo  MenuItemRepo
	OfferRepo OfferRepo
}

func NewHandler(hd HandlerDeps, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		itemRepo:  hd.ItemRepo,
		offerRepo: hd.OfferRepo,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/staff/menu-items", func(r chi.Router) {
		r.Post("/", h.CreateMenuItem)
		r.Get("/", h.ListMenuItems)
		r.Put("/{id}", h.UpdateMenuItem)
		r.Delete("/{id}", h.DeleteMenuItem)
		r.Post("/{id}/availability", h.SetAvailability)
	})

	r.Route("/staff/offers", func(r chi.Router) {
		r.Post("/", h.CreateOffer)
		r.Get("/", h.ListOffers)
		r.Put("/{id}", h.UpdateOffer)
		r.Delete("/{id}", h.DeleteOffer)
		r.Post("/enable-all", h.EnableAllOffers)
	})
}

type MenuItemCreateRequest struct {
	RestaurantID    string  `json:"restaurant_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	LongDescription string  `json:"long_description,omitempty"`
	Price           float64 `json:"price"`
	Category        string  `json:"category,omitempty"`
	Type            string  `json:"type,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	VideoURL        string  `json:"video_url,omitempty"`
}

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req MenuItemCreateRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if strings.TrimSpace(req.RestaurantID) == "" {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		apt.RespondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price < 0 {
		apt.RespondError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}
	if req.Type != "" && req.Type != TypeFood && req.Type != TypeDrink {
		apt.RespondError(w, http.StatusBadRequest, "type must be food or drink")
		return
	}

	item := NewMenuItem(req.RestaurantID)
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.LongDescription = req.LongDescription
	item.Price = req.Price
	item.Category = req.Category
	item.Type = req.Type
	item.ImageURL = req.ImageURL
	item.VideoURL = req.VideoURL
	item.Normalize()
	item.BeforeCreate()

	if err := h.itemRepo.Create(ctx, item); err != nil {
		log.Error("cannot create menu item", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create menu item")
		return
	}

	links := apt.RESTfulLinksFor(item)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, item, links...)
}

func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItems")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	items, err := h.itemRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list menu items", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve menu items")
		return
	}

	for _, item := range items {
		item.Normalize()
	}

	apt.RespondCollection(w, items, "menu-item")
}

type MenuItemUpdateRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	LongDescription *string  `json:"long_description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Type            *string  `json:"type,omitempty"`
	ImageURL        *string  `json:"image_url,omitempty"`
	VideoURL        *string  `json:"video_url,omitempty"`
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.itemRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading menu item", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load menu item")
		return
	}
	if item == nil {
		apt.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	var req MenuItemUpdateRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if req.Price != nil && *req.Price < 0 {
		apt.RespondError(w, http.StatusBadRequest, "price cannot be negative")
		return
	}
	if req.Type != nil && *req.Type != "" && *req.Type != TypeFood && *req.Type != TypeDrink {
		apt.RespondError(w, http.StatusBadRequest, "type must be food or drink")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.LongDescription != nil {
		item.LongDescription = *req.LongDescription
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.VideoURL != nil {
		item.VideoURL = *req.VideoURL
	}
	item.Normalize()
	item.BeforeUpdate()

	if err := h.itemRepo.Save(ctx, item); err != nil {
		log.Error("cannot update menu item", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	links := apt.RESTfulLinksFor(item)
	apt.RespondSuccess(w, item, links...)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenuItem")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.itemRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete menu item", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete menu item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

func (h *Handler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetAvailability")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	item, err := h.itemRepo.Get(ctx, id)
	if err != nil || item == nil {
		log.Debug("menu item not found", "id", id.String())
		apt.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}

	var req SetAvailabilityRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	item.Available = req.Available
	item.BeforeUpdate()

	if err := h.itemRepo.Save(ctx, item); err != nil {
		log.Error("cannot toggle availability", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}

	apt.RespondSuccess(w, item)
}

type OfferCreateRequest struct {
	RestaurantID string   `json:"restaurant_id"`
	Title        string   `json:"title,omitempty"`
	Text         string   `json:"text,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	SortOrder    int      `json:"sort_order,omitempty"`
	MenuItemID   *string  `json:"menu_item_id,omitempty"`
	AddToCart    bool     `json:"add_to_cart,omitempty"`
}

func (h *Handler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOffer")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req OfferCreateRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if strings.TrimSpace(req.RestaurantID) == "" {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	offer := NewOffer(req.RestaurantID)
	offer.Title = strings.TrimSpace(req.Title)
	offer.Text = req.Text
	offer.ImageURL = req.ImageURL
	offer.Price = req.Price
	offer.SortOrder = req.SortOrder
	offer.AddToCart = req.AddToCart

	if req.MenuItemID != nil && *req.MenuItemID != "" {
		itemID, err := uuid.Parse(*req.MenuItemID)
		if err != nil {
			apt.RespondError(w, http.StatusBadRequest, "Invalid menu_item_id")
			return
		}
		linked, err := h.itemRepo.Get(ctx, itemID)
		if err != nil || linked == nil {
			apt.RespondError(w, http.StatusNotFound, "Linked menu item not found")
			return
		}
		offer.MenuItemID = &itemID
	}

	if offer.Title == "" && offer.MenuItemID == nil {
		apt.RespondError(w, http.StatusBadRequest, "title or menu_item_id is required")
		return
	}

	offer.BeforeCreate()

	if err := h.offerRepo.Create(ctx, offer); err != nil {
		log.Error("cannot create offer", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create offer")
		return
	}

	links := apt.RESTfulLinksFor(offer)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, offer, links...)
}

func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOffers")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	offers, err := h.offerRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list offers", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve offers")
		return
	}

	apt.RespondCollection(w, offers, "offer")
}

type OfferUpdateRequest struct {
	Title      *string  `json:"title,omitempty"`
	Text       *string  `json:"text,omitempty"`
	ImageURL   *string  `json:"image_url,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	SortOrder  *int     `json:"sort_order,omitempty"`
	Active     *bool    `json:"active,omitempty"`
	AddToCart  *bool    `json:"add_to_cart,omitempty"`
	MenuItemID *string  `json:"menu_item_id,omitempty"`
}

func (h *Handler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOffer")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	offer, err := h.offerRepo.Get(ctx, id)
	if err != nil {
		log.Error("error loading offer", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not load offer")
		return
	}
	if offer == nil {
		apt.RespondError(w, http.StatusNotFound, "Offer not found")
		return
	}

	var req OfferUpdateRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if req.Title != nil {
		offer.Title = strings.TrimSpace(*req.Title)
	}
	if req.Text != nil {
		offer.Text = *req.Text
	}
	if req.ImageURL != nil {
		offer.ImageURL = *req.ImageURL
	}
	if req.Price != nil {
		offer.Price = req.Price
	}
	if req.SortOrder != nil {
		offer.SortOrder = *req.SortOrder
	}
	if req.Active != nil {
		offer.Active = *req.Active
	}
	if req.AddToCart != nil {
		offer.AddToCart = *req.AddToCart
	}
	if req.MenuItemID != nil {
		if *req.MenuItemID == "" {
			offer.MenuItemID = nil
		} else {
			itemID, err := uuid.Parse(*req.MenuItemID)
			if err != nil {
				apt.RespondError(w, http.StatusBadRequest, "Invalid menu_item_id")
				return
			}
			offer.MenuItemID = &itemID
		}
	}
	offer.BeforeUpdate()

	if err := h.offerRepo.Save(ctx, offer); err != nil {
		log.Error("cannot update offer", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not update offer")
		return
	}

	links := apt.RESTfulLinksFor(offer)
	apt.RespondSuccess(w, offer, links...)
}

func (h *Handler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteOffer")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	id, ok := h.parseIDParam(w, r, log)
	if !ok {
		return
	}

	if err := h.offerRepo.Delete(ctx, id); err != nil {
		log.Error("cannot delete offer", "error", err, "id", id.String())
		apt.RespondError(w, http.StatusInternalServerError, "Could not delete offer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EnableAllOffers(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.EnableAllOffers")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurantID := r.URL.Query().Get("r")
	if restaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing r parameter")
		return
	}

	offers, err := h.offerRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		log.Error("cannot list offers", "error", err, "restaurant_id", restaurantID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve offers")
		return
	}

	enabled := 0
	for _, offer := range offers {
		if offer.Active {
			continue
		}
		offer.Active = true
		offer.BeforeUpdate()
		if err := h.offerRepo.Save(ctx, offer); err != nil {
			log.Error("cannot enable offer", "error", err, "id", offer.ID.String())
			continue
		}
		enabled++
	}

	apt.Respond(w, http.StatusOK, map[string]interface{}{"enabled": enabled}, nil)
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
