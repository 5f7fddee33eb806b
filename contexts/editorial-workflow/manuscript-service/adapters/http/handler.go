package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "ijaism/contexts/editorial-workflow/manuscript-service/application"
	"ijaism/contexts/editorial-workflow/manuscript-service/application/commands"
	"ijaism/contexts/editorial-workflow/manuscript-service/application/queries"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	httptransport "ijaism/contexts/editorial-workflow/manuscript-service/transport/http"
)

type Handler struct {
	SubmitArticle    commands.SubmitArticleUseCase
	ResubmitArticle  commands.ResubmitArticleUseCase
	AssignReviewers  commands.AssignReviewersUseCase
	AutoAssign       commands.AutoAssignReviewersUseCase
	ReviewActions    commands.ReviewActionsUseCase
	Decide           commands.DecideUseCase
	AssignIssue      commands.AssignIssueUseCase
	RecordAPCPayment commands.RecordAPCPaymentUseCase
	CreateJournal    commands.CreateJournalUseCase
	CreateIssue      commands.CreateIssueUseCase
	BindEditor       commands.BindEditorUseCase
	CreateUser       commands.CreateUserUseCase
	ChangeRole       commands.ChangeRoleUseCase
	GetArticle       queries.GetArticleUseCase
	ListArticles     queries.ListArticlesUseCase
	History          queries.HistoryUseCase
	ListReviews      queries.ListReviewsUseCase
	Recommendation   queries.RecommendationUseCase
	ReviewerQueue    queries.ReviewerQueueUseCase
	ListIssues       queries.ListIssuesUseCase
	Logger           *slog.Logger
}

// SubmitArticleHandler godoc
// @Summary Submit a manuscript
// @Description Creates an article in submitted status for the calling author. Replays with the same Idempotency-Key return the stored article.
// @Tags editorial-workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body httptransport.SubmitArticleRequest true "Manuscript"
// @Success 201 {object} httptransport.SubmitArticleResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /articles [post]
func (h Handler) SubmitArticleHandler(
	ctx context.Context,
	userID string,
	idempotencyKey string,
	req httptransport.SubmitArticleRequest,
) (httptransport.SubmitArticleResponse, error) {
	result, err := h.SubmitArticle.Execute(ctx, commands.SubmitArticleCommand{
		ActorID:        userID,
		IdempotencyKey: idempotencyKey,
		JournalID:      req.JournalID,
		Title:          req.Title,
		Abstract:       req.Abstract,
		Keywords:       append([]string(nil), req.Keywords...),
		ArticleType:    req.ArticleType,
		APCAmount:      req.APCAmount,
		CoAuthors:      mapCoAuthorsIn(req.CoAuthors),
	})
	if err != nil {
		return httptransport.SubmitArticleResponse{}, err
	}
	return httptransport.SubmitArticleResponse{
		Article:  mapArticle(result.Article),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) ResubmitArticleHandler(
	ctx context.Context,
	userID string,
	articleID string,
	req httptransport.ResubmitArticleRequest,
) (httptransport.ArticleResponse, error) {
	article, err := h.ResubmitArticle.Execute(ctx, commands.ResubmitArticleCommand{
		ActorID:     userID,
		ArticleID:   articleID,
		Title:       req.Title,
		Abstract:    req.Abstract,
		Keywords:    append([]string(nil), req.Keywords...),
		ArticleType: req.ArticleType,
		CoAuthors:   mapCoAuthorsIn(req.CoAuthors),
		Notes:       req.Notes,
	})
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	return httptransport.ArticleResponse{Article: mapArticle(article)}, nil
}

func (h Handler) AssignReviewersHandler(
	ctx context.Context,
	userID string,
	articleID string,
	req httptransport.AssignReviewersRequest,
) (httptransport.AssignReviewersResponse, error) {
	result, err := h.AssignReviewers.Execute(ctx, commands.AssignReviewersCommand{
		ActorID:     userID,
		ArticleID:   articleID,
		ReviewerIDs: append([]string(nil), req.ReviewerIDs...),
	})
	if err != nil {
		return httptransport.AssignReviewersResponse{}, err
	}
	return mapAssignment(result), nil
}

// AutoAssignReviewersHandler godoc
// @Summary Auto-assign reviewers
// @Description Fills the free reviewer slots with the least loaded eligible reviewers.
// @Tags editorial-workflow
// @Produce json
// @Security BearerAuth
// @Param article_id path string true "Article id"
// @Param Idempotency-Key header string false "Idempotency key"
// @Success 200 {object} httptransport.AssignReviewersResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 424 {object} httptransport.ErrorResponse
// @Router /articles/{article_id}/reviewers/auto [post]
func (h Handler) AutoAssignReviewersHandler(
	ctx context.Context,
	userID string,
	articleID string,
	idempotencyKey string,
) (httptransport.AssignReviewersResponse, error) {
	result, err := h.AutoAssign.Execute(ctx, commands.AutoAssignReviewersCommand{
		ActorID:        userID,
		ArticleID:      articleID,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.AssignReviewersResponse{}, err
	}
	return mapAssignment(result), nil
}

func (h Handler) StartReviewHandler(ctx context.Context, userID string, reviewID string) (httptransport.ReviewResponse, error) {
	review, err := h.ReviewActions.Start(ctx, commands.StartReviewCommand{
		ActorID:  userID,
		ReviewID: reviewID,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Review: mapReview(review)}, nil
}

// SubmitReviewHandler godoc
// @Summary Submit a review
// @Tags editorial-workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param review_id path string true "Review id"
// @Param request body httptransport.SubmitReviewRequest true "Review verdict"
// @Success 200 {object} httptransport.ReviewResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /reviews/{review_id}/submit [post]
func (h Handler) SubmitReviewHandler(
	ctx context.Context,
	userID string,
	reviewID string,
	req httptransport.SubmitReviewRequest,
) (httptransport.ReviewResponse, error) {
	review, err := h.ReviewActions.Submit(ctx, commands.SubmitReviewCommand{
		ActorID:          userID,
		ReviewID:         reviewID,
		Decision:         req.Decision,
		CommentsToAuthor: req.CommentsToAuthor,
		CommentsToEditor: req.CommentsToEditor,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Review: mapReview(review)}, nil
}

func (h Handler) DeclineReviewHandler(
	ctx context.Context,
	userID string,
	reviewID string,
	req httptransport.DeclineReviewRequest,
) (httptransport.ReviewResponse, error) {
	review, err := h.ReviewActions.Decline(ctx, commands.DeclineReviewCommand{
		ActorID:  userID,
		ReviewID: reviewID,
		Reason:   req.Reason,
	})
	if err != nil {
		return httptransport.ReviewResponse{}, err
	}
	return httptransport.ReviewResponse{Review: mapReview(review)}, nil
}

// DecideHandler godoc
// @Summary Record an editor decision
// @Description Moves the article along the lifecycle. Decisions: send_to_review, accept, revise, reject, publish.
// @Tags editorial-workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param article_id path string true "Article id"
// @Param request body httptransport.DecisionRequest true "Decision"
// @Success 200 {object} httptransport.ArticleResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 402 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /articles/{article_id}/decision [post]
func (h Handler) DecideHandler(
	ctx context.Context,
	userID string,
	articleID string,
	req httptransport.DecisionRequest,
) (httptransport.ArticleResponse, error) {
	article, err := h.Decide.Execute(ctx, commands.DecideCommand{
		ActorID:          userID,
		ArticleID:        articleID,
		Decision:         req.Decision,
		CommentsToAuthor: req.CommentsToAuthor,
		CommentsToEditor: req.CommentsToEditor,
		Reason:           req.Reason,
		DOI:              req.DOI,
	})
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	logger := application.ResolveLogger(h.Logger)
	logger.Info("editor decision recorded",
		"event", "editorial_decision_recorded",
		"module", "editorial-workflow/manuscript-service",
		"layer", "transport",
		"article_id", article.ArticleID,
		"status", string(article.Status),
	)
	return httptransport.ArticleResponse{Article: mapArticle(article)}, nil
}

func (h Handler) AssignIssueHandler(
	ctx context.Context,
	userID string,
	articleID string,
	req httptransport.AssignIssueRequest,
) (httptransport.ArticleResponse, error) {
	article, err := h.AssignIssue.Execute(ctx, commands.AssignIssueCommand{
		ActorID:   userID,
		ArticleID: articleID,
		IssueID:   req.IssueID,
	})
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	return httptransport.ArticleResponse{Article: mapArticle(article)}, nil
}

func (h Handler) RecordAPCPaymentHandler(
	ctx context.Context,
	userID string,
	articleID string,
	req httptransport.RecordAPCPaymentRequest,
) (httptransport.ArticleResponse, error) {
	article, err := h.RecordAPCPayment.Execute(ctx, commands.RecordAPCPaymentCommand{
		ActorID:   userID,
		ArticleID: articleID,
		Amount:    req.Amount,
	})
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	return httptransport.ArticleResponse{Article: mapArticle(article)}, nil
}

func (h Handler) GetArticleHandler(ctx context.Context, userID string, articleID string) (httptransport.ArticleResponse, error) {
	article, err := h.GetArticle.Execute(ctx, userID, articleID)
	if err != nil {
		return httptransport.ArticleResponse{}, err
	}
	return httptransport.ArticleResponse{Article: mapArticle(article)}, nil
}

func (h Handler) ListArticlesHandler(
	ctx context.Context,
	userID string,
	journalID string,
	status string,
	limit int,
	offset int,
) (httptransport.ListArticlesResponse, error) {
	items, err := h.ListArticles.Execute(ctx, queries.ListArticlesQuery{
		ActorID:   userID,
		JournalID: journalID,
		Status:    status,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return httptransport.ListArticlesResponse{}, err
	}
	result := make([]httptransport.ArticleDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapArticle(item))
	}
	return httptransport.ListArticlesResponse{Items: result}, nil
}

func (h Handler) HistoryHandler(ctx context.Context, userID string, articleID string) (httptransport.HistoryResponse, error) {
	items, err := h.History.Execute(ctx, userID, articleID)
	if err != nil {
		return httptransport.HistoryResponse{}, err
	}
	result := make([]httptransport.TransitionDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.TransitionDTO{
			FromStatus:  string(item.FromStatus),
			ToStatus:    string(item.ToStatus),
			ActorID:     item.ActorID,
			ActorRole:   string(item.ActorRole),
			Comments:    item.Comments,
			ReviewRound: item.ReviewRound,
			CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.HistoryResponse{ArticleID: articleID, Items: result}, nil
}

func (h Handler) ListReviewsHandler(ctx context.Context, userID string, articleID string) (httptransport.ListReviewsResponse, error) {
	items, err := h.ListReviews.Execute(ctx, userID, articleID)
	if err != nil {
		return httptransport.ListReviewsResponse{}, err
	}
	return httptransport.ListReviewsResponse{Items: mapReviews(items)}, nil
}

func (h Handler) ReviewerQueueHandler(ctx context.Context, userID string) (httptransport.ListReviewsResponse, error) {
	items, err := h.ReviewerQueue.Execute(ctx, userID)
	if err != nil {
		return httptransport.ListReviewsResponse{}, err
	}
	return httptransport.ListReviewsResponse{Items: mapReviews(items)}, nil
}

func (h Handler) RecommendationHandler(ctx context.Context, userID string, articleID string) (httptransport.RecommendationResponse, error) {
	result, err := h.Recommendation.Execute(ctx, userID, articleID)
	if err != nil {
		return httptransport.RecommendationResponse{}, err
	}
	return httptransport.RecommendationResponse{
		ArticleID:         result.ArticleID,
		ReviewRound:       result.ReviewRound,
		AggregatedRound:   result.AggregatedRound,
		Recommendation:    string(result.Aggregation.Recommendation),
		Assigned:          result.Aggregation.Assigned,
		Completed:         result.Aggregation.Completed,
		Accepts:           result.Aggregation.Accepts,
		RevisionsAsked:    result.Aggregation.RevisionsAsked,
		Rejects:           result.Aggregation.Rejects,
		AllReviewersDone:  result.Aggregation.AllReviewersDone,
		UnanimousApproval: result.Aggregation.UnanimousApproval,
	}, nil
}

func (h Handler) CreateJournalHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateJournalRequest,
) (httptransport.JournalResponse, error) {
	journal, err := h.CreateJournal.Execute(ctx, commands.CreateJournalCommand{
		ActorID: userID,
		Code:    req.Code,
		Name:    req.Name,
	})
	if err != nil {
		return httptransport.JournalResponse{}, err
	}
	return httptransport.JournalResponse{
		JournalID: journal.JournalID,
		Code:      journal.Code,
		Name:      journal.Name,
		CreatedAt: journal.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) CreateIssueHandler(
	ctx context.Context,
	userID string,
	journalID string,
	req httptransport.CreateIssueRequest,
) (httptransport.IssueDTO, error) {
	issue, err := h.CreateIssue.Execute(ctx, commands.CreateIssueCommand{
		ActorID:     userID,
		JournalID:   journalID,
		Volume:      req.Volume,
		IssueNumber: req.IssueNumber,
		Year:        req.Year,
		IsSpecial:   req.IsSpecial,
		Title:       req.Title,
	})
	if err != nil {
		return httptransport.IssueDTO{}, err
	}
	return mapIssue(issue), nil
}

func (h Handler) ListIssuesHandler(ctx context.Context, journalID string) (httptransport.ListIssuesResponse, error) {
	items, err := h.ListIssues.Execute(ctx, journalID)
	if err != nil {
		return httptransport.ListIssuesResponse{}, err
	}
	result := make([]httptransport.IssueDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapIssue(item))
	}
	return httptransport.ListIssuesResponse{Items: result}, nil
}

func (h Handler) BindEditorHandler(
	ctx context.Context,
	userID string,
	journalID string,
	req httptransport.BindEditorRequest,
) (httptransport.EditorshipResponse, error) {
	editorship, err := h.BindEditor.Execute(ctx, commands.BindEditorCommand{
		ActorID:   userID,
		UserID:    req.UserID,
		JournalID: journalID,
	})
	if err != nil {
		return httptransport.EditorshipResponse{}, err
	}
	return httptransport.EditorshipResponse{
		UserID:    editorship.UserID,
		JournalID: editorship.JournalID,
	}, nil
}

func (h Handler) CreateUserHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateUserRequest,
) (httptransport.UserResponse, error) {
	user, err := h.CreateUser.Execute(ctx, commands.CreateUserCommand{
		ActorID:  userID,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func (h Handler) ChangeRoleHandler(
	ctx context.Context,
	userID string,
	targetUserID string,
	req httptransport.ChangeRoleRequest,
) (httptransport.UserResponse, error) {
	user, err := h.ChangeRole.Execute(ctx, commands.ChangeRoleCommand{
		ActorID: userID,
		UserID:  targetUserID,
		Role:    req.Role,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return mapUser(user), nil
}

func mapAssignment(result commands.AssignReviewersResult) httptransport.AssignReviewersResponse {
	return httptransport.AssignReviewersResponse{
		Article:  mapArticle(result.Article),
		Reviews:  mapReviews(result.Reviews),
		Replayed: result.Replayed,
	}
}

func mapArticle(item entities.Article) httptransport.ArticleDTO {
	result := httptransport.ArticleDTO{
		ArticleID:                item.ArticleID,
		JournalID:                item.JournalID,
		IssueID:                  item.IssueID,
		AuthorID:                 item.AuthorID,
		Title:                    item.Title,
		Abstract:                 item.Abstract,
		Keywords:                 append([]string(nil), item.Keywords...),
		ArticleType:              item.ArticleType,
		Status:                   string(item.Status),
		IsAPCPaid:                item.IsAPCPaid,
		APCAmount:                item.APCAmount,
		DOI:                      item.DOI,
		ReviewRound:              item.ReviewRound,
		CoAuthors:                mapCoAuthorsOut(item.CoAuthors),
		Version:                  item.Version,
		SubmittedAt:              item.SubmittedAt.UTC().Format(time.RFC3339),
		UpdatedAt:                item.UpdatedAt.UTC().Format(time.RFC3339),
		DecisionCommentsToAuthor: item.DecisionCommentsToAuthor,
		RejectionReason:          item.RejectionReason,
	}
	if item.AcceptedAt != nil {
		result.AcceptedAt = item.AcceptedAt.UTC().Format(time.RFC3339)
	}
	if item.PublishedAt != nil {
		result.PublishedAt = item.PublishedAt.UTC().Format(time.RFC3339)
	}
	return result
}

func mapReviews(items []entities.Review) []httptransport.ReviewDTO {
	result := make([]httptransport.ReviewDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapReview(item))
	}
	return result
}

func mapReview(item entities.Review) httptransport.ReviewDTO {
	result := httptransport.ReviewDTO{
		ReviewID:         item.ReviewID,
		ArticleID:        item.ArticleID,
		ReviewerID:       item.ReviewerID,
		ReviewerNumber:   item.ReviewerNumber,
		Round:            item.Round,
		Status:           string(item.Status),
		Decision:         string(item.Decision),
		CommentsToAuthor: item.CommentsToAuthor,
		CommentsToEditor: item.CommentsToEditor,
		AssignedAt:       item.AssignedAt.UTC().Format(time.RFC3339),
		DueDate:          item.DueDate.UTC().Format(time.RFC3339),
	}
	if item.StartedAt != nil {
		result.StartedAt = item.StartedAt.UTC().Format(time.RFC3339)
	}
	if item.CompletedAt != nil {
		result.CompletedAt = item.CompletedAt.UTC().Format(time.RFC3339)
	}
	if item.DeclinedAt != nil {
		result.DeclinedAt = item.DeclinedAt.UTC().Format(time.RFC3339)
	}
	return result
}

func mapIssue(item entities.Issue) httptransport.IssueDTO {
	return httptransport.IssueDTO{
		IssueID:     item.IssueID,
		JournalID:   item.JournalID,
		Volume:      item.Volume,
		IssueNumber: item.IssueNumber,
		Year:        item.Year,
		IsSpecial:   item.IsSpecial,
		Title:       item.Title,
	}
}

func mapUser(item entities.User) httptransport.UserResponse {
	return httptransport.UserResponse{
		UserID:   item.UserID,
		Email:    item.Email,
		FullName: item.FullName,
		Role:     string(item.Role),
		IsActive: item.IsActive,
	}
}

func mapCoAuthorsIn(items []httptransport.CoAuthorDTO) []entities.CoAuthor {
	result := make([]entities.CoAuthor, 0, len(items))
	for _, item := range items {
		result = append(result, entities.CoAuthor{
			Name:       item.Name,
			Email:      item.Email,
			University: item.University,
		})
	}
	return result
}

func mapCoAuthorsOut(items []entities.CoAuthor) []httptransport.CoAuthorDTO {
	result := make([]httptransport.CoAuthorDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.CoAuthorDTO{
			Name:       item.Name,
			Email:      item.Email,
			University: item.University,
		})
	}
	return result
}
