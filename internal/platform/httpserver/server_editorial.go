package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	editorialhttp "ijaism/contexts/editorial-workflow/manuscript-service/transport/http"
)

func (s *Server) handleSubmitArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.SubmitArticleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.SubmitArticleHandler(r.Context(), userID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit, ok := parseNonNegative(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := parseNonNegative(w, query.Get("offset"), "offset")
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.ListArticlesHandler(
		r.Context(),
		userID,
		query.Get("journal_id"),
		query.Get("status"),
		limit,
		offset,
	)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.GetArticleHandler(r.Context(), userID, r.PathValue("article_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignReviewers(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.AssignReviewersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.AssignReviewersHandler(r.Context(), userID, r.PathValue("article_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAutoAssignReviewers(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.AutoAssignReviewersHandler(
		r.Context(),
		userID,
		r.PathValue("article_id"),
		r.Header.Get("Idempotency-Key"),
	)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecide(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.DecisionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.DecideHandler(r.Context(), userID, r.PathValue("article_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResubmitArticle(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.ResubmitArticleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.ResubmitArticleHandler(r.Context(), userID, r.PathValue("article_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignIssue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.AssignIssueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.AssignIssueHandler(r.Context(), userID, r.PathValue("article_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecordAPCPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.RecordAPCPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.RecordAPCPaymentHandler(r.Context(), userID, r.PathValue("article_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.ListReviewsHandler(r.Context(), userID, r.PathValue("article_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.RecommendationHandler(r.Context(), userID, r.PathValue("article_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.HistoryHandler(r.Context(), userID, r.PathValue("article_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReviewerQueue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.ReviewerQueueHandler(r.Context(), userID)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	resp, err := s.editorial.Handler.StartReviewHandler(r.Context(), userID, r.PathValue("review_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.SubmitReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.SubmitReviewHandler(r.Context(), userID, r.PathValue("review_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeclineReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.DeclineReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.DeclineReviewHandler(r.Context(), userID, r.PathValue("review_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.CreateJournalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.CreateJournalHandler(r.Context(), userID, req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.CreateIssueRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.CreateIssueHandler(r.Context(), userID, r.PathValue("journal_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Issue listings are public; the table of contents is not confidential.
func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	resp, err := s.editorial.Handler.ListIssuesHandler(r.Context(), r.PathValue("journal_id"))
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBindEditor(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.BindEditorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.BindEditorHandler(r.Context(), userID, r.PathValue("journal_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.CreateUserHandler(r.Context(), userID, req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var req editorialhttp.ChangeRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.editorial.Handler.ChangeRoleHandler(r.Context(), userID, r.PathValue("user_id"), req)
	if err != nil {
		writeEditorialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseNonNegative(w http.ResponseWriter, raw string, name string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		writeEditorialError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return value, true
}
