package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	manuscriptservice "ijaism/contexts/editorial-workflow/manuscript-service"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	editorialhttp "ijaism/contexts/editorial-workflow/manuscript-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ijaism/internal/platform/httpserver/docs"
)

const apiPrefix = "/api/editorial/v1"

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	editorial manuscriptservice.Module
	tokens    TokenVerifier
	server    *http.Server
}

func New(
	editorial manuscriptservice.Module,
	tokens TokenVerifier,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		editorial: editorial,
		tokens:    tokens,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed mux, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	if s.tokens.DevelopmentMode() {
		s.logger.Warn("jwt secret not configured; trusting X-User-Id header",
			"event", "http_server_dev_auth",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
	}
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.HandleFunc("POST "+apiPrefix+"/articles", s.handleSubmitArticle)
	s.mux.HandleFunc("GET "+apiPrefix+"/articles", s.handleListArticles)
	s.mux.HandleFunc("GET "+apiPrefix+"/articles/{article_id}", s.handleGetArticle)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/reviewers", s.handleAssignReviewers)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/reviewers/auto", s.handleAutoAssignReviewers)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/decision", s.handleDecide)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/resubmit", s.handleResubmitArticle)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/issue", s.handleAssignIssue)
	s.mux.HandleFunc("POST "+apiPrefix+"/articles/{article_id}/apc", s.handleRecordAPCPayment)
	s.mux.HandleFunc("GET "+apiPrefix+"/articles/{article_id}/reviews", s.handleListReviews)
	s.mux.HandleFunc("GET "+apiPrefix+"/articles/{article_id}/recommendation", s.handleRecommendation)
	s.mux.HandleFunc("GET "+apiPrefix+"/articles/{article_id}/history", s.handleHistory)

	s.mux.HandleFunc("GET "+apiPrefix+"/reviews/mine", s.handleReviewerQueue)
	s.mux.HandleFunc("POST "+apiPrefix+"/reviews/{review_id}/start", s.handleStartReview)
	s.mux.HandleFunc("POST "+apiPrefix+"/reviews/{review_id}/submit", s.handleSubmitReview)
	s.mux.HandleFunc("POST "+apiPrefix+"/reviews/{review_id}/decline", s.handleDeclineReview)

	s.mux.HandleFunc("POST "+apiPrefix+"/journals", s.handleCreateJournal)
	s.mux.HandleFunc("POST "+apiPrefix+"/journals/{journal_id}/issues", s.handleCreateIssue)
	s.mux.HandleFunc("GET "+apiPrefix+"/journals/{journal_id}/issues", s.handleListIssues)
	s.mux.HandleFunc("POST "+apiPrefix+"/journals/{journal_id}/editors", s.handleBindEditor)

	s.mux.HandleFunc("POST "+apiPrefix+"/users", s.handleCreateUser)
	s.mux.HandleFunc("POST "+apiPrefix+"/users/{user_id}/role", s.handleChangeRole)
}

// authenticate writes the 401 itself and reports whether to continue.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := s.tokens.UserID(r)
	if err != nil {
		s.logger.Debug("request rejected: unauthenticated",
			"event", "http_request_unauthenticated",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeEditorialError(w, http.StatusUnauthorized, "unauthenticated", "valid bearer token is required")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		writeEditorialError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeEditorialDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrUnauthenticated):
		writeEditorialError(w, http.StatusUnauthorized, "unauthenticated", err.Error())
	case errors.Is(err, domainerrors.ErrAuthorization):
		writeEditorialError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrArticleNotFound),
		errors.Is(err, domainerrors.ErrReviewNotFound),
		errors.Is(err, domainerrors.ErrUserNotFound),
		errors.Is(err, domainerrors.ErrJournalNotFound),
		errors.Is(err, domainerrors.ErrIssueNotFound):
		writeEditorialError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrPaymentRequired):
		writeEditorialError(w, http.StatusPaymentRequired, "payment_required", err.Error())
	case errors.Is(err, domainerrors.ErrValidation):
		writeEditorialError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidTransition):
		writeEditorialError(w, http.StatusBadRequest, "invalid_transition", err.Error())
	case errors.Is(err, domainerrors.ErrPrecondition):
		writeEditorialError(w, http.StatusBadRequest, "precondition_failed", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyKeyRequired):
		writeEditorialError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, domainerrors.ErrReviewerCapExceeded):
		writeEditorialError(w, http.StatusConflict, "reviewer_cap_exceeded", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateReviewer):
		writeEditorialError(w, http.StatusConflict, "duplicate_reviewer", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateIssue):
		writeEditorialError(w, http.StatusConflict, "duplicate_issue", err.Error())
	case errors.Is(err, domainerrors.ErrIssueLocked):
		writeEditorialError(w, http.StatusConflict, "issue_locked", err.Error())
	case errors.Is(err, domainerrors.ErrReviewAlreadyCompleted):
		writeEditorialError(w, http.StatusConflict, "review_already_completed", err.Error())
	case errors.Is(err, domainerrors.ErrReviewClosed):
		writeEditorialError(w, http.StatusConflict, "review_closed", err.Error())
	case errors.Is(err, domainerrors.ErrDuplicateUser),
		errors.Is(err, domainerrors.ErrDuplicateJournal):
		writeEditorialError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeEditorialError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, domainerrors.ErrConflict):
		writeEditorialError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domainerrors.ErrNoEligibleReviewers):
		writeEditorialError(w, http.StatusFailedDependency, "no_eligible_reviewers", err.Error())
	default:
		writeEditorialError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeEditorialError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, editorialhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
