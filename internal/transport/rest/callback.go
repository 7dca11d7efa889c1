package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/heartmarshall/lexreview/internal/domain"
	"github.com/heartmarshall/lexreview/internal/service/review"
)

const (
	actionProcess = "process"
	actionList    = "list"

	usageMessage = "Parameter a must be passed!"

	maxFormBytes = 32 << 20
)

type reviewService interface {
	ProcessText(ctx context.Context, input review.ProcessInput) (review.ProcessResult, error)
	ListTop(ctx context.Context, input review.ListInput) (review.ListResult, error)
}

type callbackMetrics interface {
	RecordCallback(action string, status int)
}

// CallbackHandler serves the form-encoded callback endpoint used by the
// review frontend.
type CallbackHandler struct {
	svc     reviewService
	metrics callbackMetrics
	log     *slog.Logger
}

// NewCallbackHandler creates a CallbackHandler.
func NewCallbackHandler(svc reviewService, metrics callbackMetrics, logger *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		svc:     svc,
		metrics: metrics,
		log:     logger.With("handler", "callback"),
	}
}

type processResponse struct {
	Status string `json:"status"`
}

type listResponse struct {
	Entries any    `json:"entries"`
	Method  string `json:"method"`
}

// ServeHTTP handles /callback. POST reads a form-encoded body, any other
// method the query string.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params, err := h.params(w, r)
	if err != nil {
		h.respondError(w, r, "", http.StatusBadRequest, err.Error())
		return
	}

	// A blank a counts as missing.
	if params.Get("a") == "" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(usageMessage)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(usageMessage))
		h.metrics.RecordCallback("", http.StatusOK)
		return
	}

	switch params.Get("a") {
	case actionProcess:
		h.process(w, r, params)
	case actionList:
		h.list(w, r, params)
	default:
		h.respondError(w, r, "unknown", http.StatusOK, "unknown value for parameter a")
	}
}

func (h *CallbackHandler) params(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	if r.Method != http.MethodPost {
		return r.URL.Query(), nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, errors.New("malformed form body")
	}
	return r.PostForm, nil
}

func (h *CallbackHandler) process(w http.ResponseWriter, r *http.Request, params url.Values) {
	if !params.Has("t") {
		h.respondError(w, r, actionProcess, http.StatusBadRequest, "parameter t must be passed")
		return
	}

	res, err := h.svc.ProcessText(r.Context(), review.ProcessInput{Text: params.Get("t")})
	if err != nil {
		h.handleError(w, r, actionProcess, err)
		return
	}

	h.log.DebugContext(r.Context(), "processed",
		slog.Int("sentences", res.Sentences),
		slog.Int("new_surfaces", res.NewSurfaces),
	)
	h.respond(w, r, actionProcess, http.StatusOK, processResponse{Status: "processed"})
}

func (h *CallbackHandler) list(w http.ResponseWriter, r *http.Request, params url.Values) {
	input, err := parseListInput(params)
	if err != nil {
		h.handleError(w, r, actionList, err)
		return
	}

	res, err := h.svc.ListTop(r.Context(), input)
	if err != nil {
		h.handleError(w, r, actionList, err)
		return
	}

	resp := listResponse{Method: res.Method}
	switch res.Method {
	case review.MethodLemma:
		resp.Entries = toGroupsResponse(res.Lemmas)
	default:
		resp.Entries = toUnitsResponse(res.Surfaces)
	}
	h.respond(w, r, actionList, http.StatusOK, resp)
}

// parseListInput reads c, m and g. A non-numeric c is reported together with
// whatever ListInput.Validate finds.
func parseListInput(params url.Values) (review.ListInput, error) {
	var errs []domain.FieldError

	count, err := strconv.Atoi(params.Get("c"))
	if err != nil {
		errs = append(errs, domain.FieldError{Field: "c", Message: "must be an integer"})
	}

	input := review.ListInput{
		Count:       count,
		Method:      params.Get("m"),
		GuessedOnly: params.Get("g") == "yes",
	}
	var ve *domain.ValidationError
	if err := input.Validate(); errors.As(err, &ve) {
		errs = append(errs, ve.Errors...)
	}

	if len(errs) > 0 {
		return review.ListInput{}, &domain.ValidationError{Errors: errs}
	}
	return input, nil
}

func (h *CallbackHandler) handleError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		h.respondError(w, r, action, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, domain.ErrPipeBroken), errors.Is(err, domain.ErrNotStarted):
		h.log.ErrorContext(r.Context(), "analyzer unavailable",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		h.respondError(w, r, action, http.StatusServiceUnavailable, "analyzer unavailable, restart required")
	default:
		h.log.ErrorContext(r.Context(), "internal error",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		h.respondError(w, r, action, http.StatusInternalServerError, "internal server error")
	}
}

func (h *CallbackHandler) respondError(w http.ResponseWriter, r *http.Request, action string, status int, message string) {
	h.respond(w, r, action, status, map[string]string{"error": message})
}

func (h *CallbackHandler) respond(w http.ResponseWriter, r *http.Request, action string, status int, v any) {
	err := writeDeflatedJSON(w, status, v)
	if errors.Is(err, errEncode) {
		status = http.StatusInternalServerError
	}
	h.metrics.RecordCallback(action, status)
	if err != nil {
		h.log.WarnContext(r.Context(), "write response",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}

// validationMessage lists every field error, e.g. "c: must be an integer;
// m: must be surf or lemma".
func validationMessage(err error) string {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}
