package tenant

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the superadmin console operations: tenant provisioning,
// subscription management and QR material. It carries no access gate and is
// expected to be mounted behind network-level protection.
type Handler struct {
	logger  apt.Logger
	config  *apt.Config
	tlm     *telemetry.HTTP
	repo    RestaurantRepo
	baseURL string
}

func NewHandler(repo RestaurantRepo, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	baseURL := config.GetStringOrDef("guest.base.url", "https://menyra.app")
	return &Handler{
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
		repo:    repo,
		baseURL: baseURL,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menyra/restaurants", func(r chi.Router) {
		r.Post("/", h.CreateRestaurant)
		r.Get("/", h.ListRestaurants)
		r.Get("/{id}", h.GetRestaurant)
		r.Put("/{id}", h.UpdateRestaurant)
		r.Post("/{id}/renew", h.RenewSubscription)
		r.Post("/{id}/active", h.SetActive)
		r.Get("/{id}/qrcodes", h.ListQRCodes)
		r.Get("/{id}/qrcodes/{table}.png", h.TableQRCodePNG)
	})
}

func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateRestaurant")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	var req ProvisionRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	rest, err := Provision(ctx, h.repo, req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) {
			apt.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("cannot provision restaurant", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not create restaurant")
		return
	}

	log.Info("restaurant provisioned", "restaurant_id", rest.ID)
	w.WriteHeader(http.StatusCreated)
	apt.RespondSuccess(w, rest)
}

func (h *Handler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListRestaurants")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	restaurants, err := h.repo.List(ctx)
	if err != nil {
		log.Error("cannot list restaurants", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not retrieve restaurants")
		return
	}

	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
	activeOnly := r.URL.Query().Get("active") == "true"

	filtered := restaurants[:0]
	for _, rest := range restaurants {
		if activeOnly && !rest.Active {
			continue
		}
		if search != "" && !matchesSearch(rest, search) {
			continue
		}
		filtered = append(filtered, rest)
	}

	apt.RespondCollection(w, filtered, "restaurant")
}

func matchesSearch(rest *Restaurant, search string) bool {
	haystack := strings.ToLower(rest.Name + " " + rest.OwnerName + " " + rest.City)
	return strings.Contains(haystack, search)
}

func (h *Handler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetRestaurant")
	defer finish()

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}
	apt.RespondSuccess(w, rest)
}

type RestaurantUpdateRequest struct {
	Name          *string  `json:"name,omitempty"`
	OwnerName     *string  `json:"owner_name,omitempty"`
	City          *string  `json:"city,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	LogoURL       *string  `json:"logo_url,omitempty"`
	TableCount    *int     `json:"table_count,omitempty"`
	YearPrice     *float64 `json:"year_price,omitempty"`
	OffersEnabled *bool    `json:"offers_enabled,omitempty"`
	RotateCodes   bool     `json:"rotate_codes,omitempty"`
}

func (h *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateRestaurant")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	var req RestaurantUpdateRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		rest.Name = strings.TrimSpace(*req.Name)
	}
	if req.OwnerName != nil {
		rest.OwnerName = strings.TrimSpace(*req.OwnerName)
	}
	if req.City != nil {
		rest.City = strings.TrimSpace(*req.City)
	}
	if req.Phone != nil {
		rest.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.LogoURL != nil {
		rest.LogoURL = strings.TrimSpace(*req.LogoURL)
	}
	if req.TableCount != nil && *req.TableCount > 0 {
		rest.TableCount = *req.TableCount
	}
	if req.YearPrice != nil {
		rest.YearPrice = *req.YearPrice
	}
	if req.OffersEnabled != nil {
		rest.OffersEnabled = *req.OffersEnabled
	}
	if req.RotateCodes {
		rest.OwnerCode = GenerateCode()
		rest.WaiterCode = GenerateCode()
	}
	rest.BeforeUpdate()

	if err := h.repo.Save(ctx, rest); err != nil {
		log.Error("cannot update restaurant", "error", err, "restaurant_id", rest.ID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update restaurant")
		return
	}

	apt.RespondSuccess(w, rest)
}

func (h *Handler) RenewSubscription(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RenewSubscription")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	rest.RenewSubscription(TodayISO())

	if err := h.repo.Save(ctx, rest); err != nil {
		log.Error("cannot renew subscription", "error", err, "restaurant_id", rest.ID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not renew subscription")
		return
	}

	log.Info("subscription renewed", "restaurant_id", rest.ID, "until", rest.SubscriptionUntil)
	apt.RespondSuccess(w, rest)
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetActive")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	var req SetActiveRequest
	if !h.decodeBody(w, r, &req, log) {
		return
	}

	rest.Active = req.Active
	rest.BeforeUpdate()

	if err := h.repo.Save(ctx, rest); err != nil {
		log.Error("cannot toggle restaurant", "error", err, "restaurant_id", rest.ID)
		apt.RespondError(w, http.StatusInternalServerError, "Could not update restaurant")
		return
	}

	apt.RespondSuccess(w, rest)
}

func (h *Handler) ListQRCodes(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListQRCodes")
	defer finish()

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	apt.Respond(w, http.StatusOK, TableQRs(h.baseURL, rest), nil)
}

func (h *Handler) TableQRCodePNG(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.TableQRCodePNG")
	defer finish()

	log := h.log(r)

	rest, ok := h.loadRestaurant(w, r)
	if !ok {
		return
	}

	table := chi.URLParam(r, "table")
	if table == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing table parameter")
		return
	}

	png, err := QRCodePNG(GuestLink(h.baseURL, rest.ID, table), 256)
	if err != nil {
		log.Error("cannot render qr code", "error", err, "restaurant_id", rest.ID, "table", table)
		apt.RespondError(w, http.StatusInternalServerError, "Could not render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) loadRestaurant(w http.ResponseWriter, r *http.Request) (*Restaurant, bool) {
	log := h.log(r)
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing id parameter")
		return nil, false
	}

	rest, err := h.repo.Get(ctx, id)
	if err != nil {
		log.Error("error loading restaurant", "error", err, "restaurant_id", id)
		apt.RespondError(w, http.StatusInternalServerError, "Could not load restaurant")
		return nil, false
	}
	if rest == nil {
		apt.RespondError(w, http.StatusNotFound, "Restaurant not found")
		return nil, false
	}
	return rest, true
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
