package rest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/paw-chain/distance/x/distance/types"
)

// Route paths
const (
	RouteParams   = "/distance/v1/params"
	RoutePeriod   = "/distance/v1/period"
	RoutePool     = "/distance/v1/pools/{role}"
	RouteStatus   = "/distance/v1/status/{identity}"
	RouteRequest  = "/distance/v1/requests/{identity}"
	RouteSnapshot = "/distance/v1/snapshot"
)

// Handler provides HTTP handlers for the distance queries
type Handler struct {
	queries     types.QueryServer
	graph       types.WotReader
	ctxProvider ContextProvider
	logger      log.Logger
}

// NewHandler creates a new handler
func NewHandler(queries types.QueryServer, graph types.WotReader, ctxProvider ContextProvider, logger log.Logger) *Handler {
	return &Handler{
		queries:     queries,
		graph:       graph,
		ctxProvider: ctxProvider,
		logger:      logger,
	}
}

// RegisterRoutes registers all distance routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc(RouteParams, h.handleParams).Methods(http.MethodGet)
	r.HandleFunc(RoutePeriod, h.handlePeriod).Methods(http.MethodGet)
	r.HandleFunc(RoutePool, h.handlePool).Methods(http.MethodGet)
	r.HandleFunc(RouteStatus, h.handleStatus).Methods(http.MethodGet)
	r.HandleFunc(RouteRequest, h.handlePendingRequest).Methods(http.MethodGet)
	r.HandleFunc(RouteSnapshot, h.handleSnapshot).Methods(http.MethodGet)
}

func (h *Handler) handleParams(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.ctxProvider(0)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp, err := h.queries.Params(ctx, &types.QueryParamsRequest{})
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePeriod(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.ctxProvider(0)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp, err := h.queries.Period(ctx, &types.QueryPeriodRequest{})
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePool(w http.ResponseWriter, r *http.Request) {
	role, err := types.ParsePoolRole(mux.Vars(r)["role"])
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx, err := h.ctxProvider(0)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp, err := h.queries.Pool(ctx, &types.QueryPoolRequest{Role: role})
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identityVar(w, r)
	if !ok {
		return
	}
	ctx, err := h.ctxProvider(0)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp, err := h.queries.Status(ctx, &types.QueryStatusRequest{Identity: identity})
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePendingRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identityVar(w, r)
	if !ok {
		return
	}
	ctx, err := h.ctxProvider(0)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp, err := h.queries.PendingRequest(ctx, &types.QueryPendingRequestRequest{Identity: identity})
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleSnapshot serves the certification graph at the recorded evaluation
// height, or at ?height= when given.
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var height int64
	if raw := r.URL.Query().Get("height"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "invalid height")
			return
		}
		height = parsed
	}

	if height == 0 {
		latest, err := h.ctxProvider(0)
		if err != nil {
			h.writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		period, err := h.queries.Period(latest, &types.QueryPeriodRequest{})
		if err != nil {
			h.writeQueryError(w, err)
			return
		}
		if period.EvaluationHeight == 0 {
			h.writeError(w, http.StatusServiceUnavailable, "no evaluation height recorded yet")
			return
		}
		height = period.EvaluationHeight
	}

	ctx, err := h.ctxProvider(height)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	members, err := h.graph.Members(ctx)
	if err != nil {
		h.logger.Error("failed to read members", "height", height, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to read members")
		return
	}
	received, err := h.graph.ReceivedCertifications(ctx)
	if err != nil {
		h.logger.Error("failed to read certifications", "height", height, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to read certifications")
		return
	}

	resp := types.QuerySnapshotResponse{
		Height:         height,
		Members:        slices.Sorted(slices.Values(members)),
		Certifications: make([]types.Certification, 0, len(received)),
	}
	for receiver, issuers := range received {
		resp.Certifications = append(resp.Certifications, types.Certification{
			Receiver: receiver,
			Issuers:  slices.Sorted(slices.Values(issuers)),
		})
	}
	slices.SortFunc(resp.Certifications, func(a, b types.Certification) int {
		return int(int64(a.Receiver) - int64(b.Receiver))
	})
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) identityVar(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	identity, err := strconv.ParseUint(mux.Vars(r)["identity"], 10, 32)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid identity")
		return 0, false
	}
	return uint32(identity), true
}

func (h *Handler) writeQueryError(w http.ResponseWriter, err error) {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.InvalidArgument:
		h.writeError(w, http.StatusBadRequest, st.Message())
	case codes.NotFound:
		h.writeError(w, http.StatusNotFound, st.Message())
	default:
		h.logger.Error("distance query failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, st.Message())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, message string) {
	h.writeJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
