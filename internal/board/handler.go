package board

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Helarman/crm-frontend-sub004/internal/order"
	"github.com/Helarman/crm-frontend-sub004/internal/orderapi"
	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// SelectRestaurantFunc switches the board to another restaurant, including
// push subscription teardown and rebuild. Owned by the application wiring.
type SelectRestaurantFunc func(ctx context.Context, restaurantID string) error

// Handler is the HTTP surface rendering clients talk to.
type Handler struct {
	board       *Board
	planner     *ArchivePlanner
	broadcaster *Broadcaster
	selectFn    SelectRestaurantFunc
	logger      apt.Logger
	tlm         *telemetry.HTTP
}

func NewHandler(
	board *Board,
	planner *ArchivePlanner,
	broadcaster *Broadcaster,
	selectFn SelectRestaurantFunc,
	logger apt.Logger,
) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		board:       board,
		planner:     planner,
		broadcaster: broadcaster,
		selectFn:    selectFn,
		logger:      logger,
		tlm:         telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/board", func(r chi.Router) {
		r.Get("/views", h.ProjectViews)
		r.Get("/stream", h.Stream)
		r.Get("/archive", h.Archive)
		r.Put("/restaurant", h.SelectRestaurant)
		r.Put("/preferences/sound", h.SetSound)
		r.Patch("/orders/{id}/status", h.UpdateOrderStatus)
		r.Patch("/orders/{id}/items/{itemID}/status", h.UpdateItemStatus)
	})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", apt.RequestIDFrom(r.Context()))
}

func (h *Handler) ProjectViews(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ProjectViews")
	defer finish()

	apt.Respond(w, http.StatusOK, h.board.Project(), nil)
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Archive")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	restaurantID := h.board.RestaurantID()
	if restaurantID == "" {
		apt.RespondError(w, http.StatusConflict, "No restaurant selected")
		return
	}

	filter, err := parseArchiveFilter(r)
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.planner.Fetch(ctx, restaurantID, filter)
	if err != nil {
		log.Errorf("archive fetch failed: %v", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not fetch archive")
		return
	}

	apt.Respond(w, http.StatusOK, page, nil)
}

func parseArchiveFilter(r *http.Request) (ArchiveFilter, error) {
	filter := ArchiveFilter{}
	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid page %q", raw)
		}
		filter.Page = page
	}
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid limit %q", raw)
		}
		filter.Limit = limit
	}
	for _, raw := range query["status"] {
		filter.Statuses = append(filter.Statuses, order.Status(raw))
	}
	if raw := query.Get("start_date"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid start_date %q", raw)
		}
		filter.From = &from
	}
	if raw := query.Get("end_date"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid end_date %q", raw)
		}
		filter.To = &to
	}
	return filter, nil
}

func (h *Handler) SelectRestaurant(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SelectRestaurant")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var body struct {
		RestaurantID string `json:"restaurant_id"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.RestaurantID == "" {
		apt.RespondError(w, http.StatusBadRequest, "restaurant_id is required")
		return
	}

	if err := h.selectFn(ctx, body.RestaurantID); err != nil {
		log.Errorf("restaurant switch failed: %v", err)
		apt.RespondError(w, http.StatusBadGateway, fmt.Sprintf("Could not load restaurant: %v", err))
		return
	}

	apt.Respond(w, http.StatusOK, h.board.Project(), nil)
}

func (h *Handler) SetSound(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetSound")
	defer finish()
	log := h.log(r)

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.board.SetSoundEnabled(body.Enabled); err != nil {
		log.Errorf("cannot persist sound preference: %v", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not persist preference")
		return
	}

	apt.Respond(w, http.StatusOK, map[string]bool{"enabled": body.Enabled}, nil)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	orderID := chi.URLParam(r, "id")

	var body struct {
		Status string `json:"status"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Status == "" {
		apt.RespondError(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.board.UpdateOrderStatus(ctx, orderID, order.Status(body.Status)); err != nil {
		log.Errorf("order status mutation failed: %v", err)
		apt.RespondError(w, http.StatusBadGateway, "Status update rejected, change reverted")
		return
	}

	apt.Respond(w, http.StatusOK, h.board.Project(), nil)
}

func (h *Handler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateItemStatus")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	orderID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemID")

	var body struct {
		Status string `json:"status"`
		UserID string `json:"user_id"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Status == "" {
		apt.RespondError(w, http.StatusBadRequest, "status is required")
		return
	}

	upd := orderapi.ItemStatusUpdate{
		Status: order.ItemStatus(body.Status),
		UserID: body.UserID,
	}
	if err := h.board.UpdateItemStatus(ctx, orderID, itemID, upd); err != nil {
		log.Errorf("item status mutation failed: %v", err)
		apt.RespondError(w, http.StatusBadGateway, "Status update rejected, change reverted")
		return
	}

	apt.Respond(w, http.StatusOK, h.board.Project(), nil)
}

// Stream serves the server-sent change feed. Clients re-pull /board/views on
// every "change" event; "toast" events carry operator notices.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		apt.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\n", evt.Name)
			fmt.Fprintf(w, "data: %s\n\n", evt.Data)
			flusher.Flush()
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return json.NewDecoder(r.Body).Decode(out)
}
