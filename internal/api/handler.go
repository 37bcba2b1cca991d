package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/box-packer/internal/geometry"
	"github.com/eugenenazirov/box-packer/internal/optimizer"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/report"
	"github.com/eugenenazirov/box-packer/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Defaults carries the fallback container and optimizer settings applied when
// a request leaves them out.
type Defaults struct {
	ContainerDims   geometry.Vec
	MaxWeight       float64
	Optimizer       optimizer.Options
	OptimizeTimeout time.Duration
}

// Handler wires the item store and packing engine into HTTP handlers.
type Handler struct {
	storage  storage.Storage
	defaults Defaults

	clock func() time.Time

	mu             sync.RWMutex
	itemsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, defaults Defaults, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:  store,
		defaults: defaults,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.itemsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:     items,
		UpdatedAt: h.currentItemsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePostItems(w http.ResponseWriter, r *http.Request) {
	h.mutateItems(w, r, h.storage.AddItems, "Items added successfully")
}

func (h *Handler) handlePutItems(w http.ResponseWriter, r *http.Request) {
	h.mutateItems(w, r, h.storage.SetItems, "Items replaced successfully")
}

func (h *Handler) mutateItems(w http.ResponseWriter, r *http.Request, apply func([]storage.ItemSpec) error, message string) {
	var req itemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid items", "items must contain at least one entry")
		return
	}

	if err := apply(req.Items); err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidItemSpec), errors.Is(err, storage.ErrTooManyItems):
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	h.markItemsUpdated()

	items, err := h.storage.GetItems()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := itemsResponse{
		Items:     items,
		UpdatedAt: h.currentItemsUpdatedAt(),
		Message:   message,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	_ = r
	if err := h.storage.Clear(); err != nil {
		writeInternalError(w, err)
		return
	}
	h.markItemsUpdated()

	resp := itemsResponse{
		Items:     []storage.ItemSpec{},
		UpdatedAt: h.currentItemsUpdatedAt(),
		Message:   "Item list cleared",
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePack runs a single deterministic placement pass over the request (or
// stored) items in their input order.
func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	dims, maxWeight, items, ok := h.resolvePackInput(w, req)
	if !ok {
		return
	}

	start := time.Now()
	container, err := packing.NewContainer(dims, maxWeight)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid container", err.Error())
		return
	}
	placed, unplaced, err := container.PlaceAll(items)
	if err != nil {
		writePackingError(w, err)
		return
	}

	result := report.Build(dims, placed, unplaced)
	writeResult(w, result, time.Since(start))
}

// handleOptimize runs the full strategy search.
func (h *Handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	dims, maxWeight, items, ok := h.resolvePackInput(w, req.packRequest)
	if !ok {
		return
	}

	opts := h.defaults.Optimizer
	if req.Options != nil {
		if req.Options.AllowContainerRotation != nil {
			opts.AllowContainerRotation = *req.Options.AllowContainerRotation
		}
		if req.Options.MaxOrderings > 0 {
			opts.MaxOrderings = req.Options.MaxOrderings
		}
		if req.Options.Seed != 0 {
			opts.Seed = req.Options.Seed
		}
		if req.Options.Weights != nil {
			opts.Weights = *req.Options.Weights
		}
	}

	ctx := r.Context()
	if h.defaults.OptimizeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.defaults.OptimizeTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := optimizer.Optimize(ctx, dims, maxWeight, items, opts)
	if err != nil {
		writePackingError(w, err)
		return
	}

	writeResult(w, result, time.Since(start))
}

// resolvePackInput merges request fields with configured defaults and expands
// item specs. On failure it writes the error response and returns ok=false.
func (h *Handler) resolvePackInput(w http.ResponseWriter, req packRequest) (geometry.Vec, float64, []*packing.Item, bool) {
	dims := h.defaults.ContainerDims
	maxWeight := h.defaults.MaxWeight
	if req.Container != nil {
		dims = geometry.Vec{X: req.Container.Length, Y: req.Container.Width, Z: req.Container.Height}
		maxWeight = req.Container.MaxWeight
	}
	if !dims.Positive() {
		writeError(w, http.StatusBadRequest, "Invalid container", packing.ErrInvalidContainer.Error())
		return geometry.Vec{}, 0, nil, false
	}

	specs := req.Items
	if len(specs) == 0 {
		stored, err := h.storage.GetItems()
		if err != nil {
			writeInternalError(w, err)
			return geometry.Vec{}, 0, nil, false
		}
		specs = stored
	}
	if len(specs) == 0 {
		writeError(w, http.StatusBadRequest, "No items", "add items to the list or supply them inline")
		return geometry.Vec{}, 0, nil, false
	}
	for _, spec := range specs {
		if _, err := storage.ValidateSpec(spec); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid items", err.Error())
			return geometry.Vec{}, 0, nil, false
		}
	}

	return dims, maxWeight, storage.Expand(specs), true
}

func writePackingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, packing.ErrInvalidContainer),
		errors.Is(err, packing.ErrNoItems),
		errors.Is(err, packing.ErrInvalidItem):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	default:
		writeInternalError(w, err)
	}
}

func writeResult(w http.ResponseWriter, result report.PlacementResult, elapsed time.Duration) {
	resp := packResponse{
		PlacementResult:   result,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentItemsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.itemsUpdatedAt
}

func (h *Handler) markItemsUpdated() {
	h.mu.Lock()
	h.itemsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type itemsRequest struct {
	Items []storage.ItemSpec `json:"items"`
}

type containerRequest struct {
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	MaxWeight float64 `json:"maxWeight"`
}

type packRequest struct {
	Container *containerRequest  `json:"container"`
	Items     []storage.ItemSpec `json:"items"`
}

type optimizeOptions struct {
	AllowContainerRotation *bool              `json:"allowContainerRotation"`
	MaxOrderings           int                `json:"maxOrderings"`
	Seed                   int64              `json:"seed"`
	Weights                *optimizer.Weights `json:"weights"`
}

type optimizeRequest struct {
	packRequest
	Options *optimizeOptions `json:"options"`
}

type packResponse struct {
	report.PlacementResult
	CalculationTimeMs int64 `json:"calculationTimeMs"`
}

type itemsResponse struct {
	Items     []storage.ItemSpec `json:"items"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Message   string             `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
