package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CoAuthorDTO struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	University string `json:"university,omitempty"`
}

type SubmitArticleRequest struct {
	JournalID   string        `json:"journal_id"`
	Title       string        `json:"title"`
	Abstract    string        `json:"abstract"`
	Keywords    []string      `json:"keywords"`
	ArticleType string        `json:"article_type"`
	APCAmount   float64       `json:"apc_amount"`
	CoAuthors   []CoAuthorDTO `json:"co_authors"`
}

type SubmitArticleResponse struct {
	Article  ArticleDTO `json:"article"`
	Replayed bool       `json:"replayed"`
}

type ResubmitArticleRequest struct {
	Title       string        `json:"title"`
	Abstract    string        `json:"abstract"`
	Keywords    []string      `json:"keywords"`
	ArticleType string        `json:"article_type"`
	CoAuthors   []CoAuthorDTO `json:"co_authors"`
	Notes       string        `json:"notes"`
}

type AssignReviewersRequest struct {
	ReviewerIDs []string `json:"reviewer_ids"`
}

type AssignReviewersResponse struct {
	Article  ArticleDTO  `json:"article"`
	Reviews  []ReviewDTO `json:"reviews"`
	Replayed bool        `json:"replayed"`
}

type SubmitReviewRequest struct {
	Decision         string `json:"decision"`
	CommentsToAuthor string `json:"comments_to_author"`
	CommentsToEditor string `json:"comments_to_editor"`
}

type DeclineReviewRequest struct {
	Reason string `json:"reason"`
}

type DecisionRequest struct {
	Decision         string `json:"decision"`
	CommentsToAuthor string `json:"comments_to_author"`
	CommentsToEditor string `json:"comments_to_editor"`
	Reason           string `json:"reason"`
	DOI              string `json:"doi"`
}

type AssignIssueRequest struct {
	IssueID string `json:"issue_id"`
}

type RecordAPCPaymentRequest struct {
	Amount float64 `json:"amount"`
}

type ArticleResponse struct {
	Article ArticleDTO `json:"article"`
}

type ListArticlesResponse struct {
	Items []ArticleDTO `json:"items"`
}

type ArticleDTO struct {
	ArticleID   string        `json:"article_id"`
	JournalID   string        `json:"journal_id"`
	IssueID     string        `json:"issue_id,omitempty"`
	AuthorID    string        `json:"author_id"`
	Title       string        `json:"title"`
	Abstract    string        `json:"abstract"`
	Keywords    []string      `json:"keywords"`
	ArticleType string        `json:"article_type"`
	Status      string        `json:"status"`
	IsAPCPaid   bool          `json:"is_apc_paid"`
	APCAmount   float64       `json:"apc_amount"`
	DOI         string        `json:"doi,omitempty"`
	ReviewRound int           `json:"review_round"`
	CoAuthors   []CoAuthorDTO `json:"co_authors"`
	Version     int64         `json:"version"`
	SubmittedAt string        `json:"submitted_at"`
	AcceptedAt  string        `json:"accepted_at,omitempty"`
	PublishedAt string        `json:"published_at,omitempty"`
	UpdatedAt   string        `json:"updated_at"`

	DecisionCommentsToAuthor string `json:"decision_comments_to_author,omitempty"`
	RejectionReason          string `json:"rejection_reason,omitempty"`
}

type ReviewDTO struct {
	ReviewID         string `json:"review_id"`
	ArticleID        string `json:"article_id"`
	ReviewerID       string `json:"reviewer_id,omitempty"`
	ReviewerNumber   int    `json:"reviewer_number"`
	Round            int    `json:"round"`
	Status           string `json:"status"`
	Decision         string `json:"decision,omitempty"`
	CommentsToAuthor string `json:"comments_to_author,omitempty"`
	CommentsToEditor string `json:"comments_to_editor,omitempty"`
	AssignedAt       string `json:"assigned_at"`
	DueDate          string `json:"due_date"`
	StartedAt        string `json:"started_at,omitempty"`
	CompletedAt      string `json:"completed_at,omitempty"`
	DeclinedAt       string `json:"declined_at,omitempty"`
}

type ReviewResponse struct {
	Review ReviewDTO `json:"review"`
}

type ListReviewsResponse struct {
	Items []ReviewDTO `json:"items"`
}

type RecommendationResponse struct {
	ArticleID         string `json:"article_id"`
	ReviewRound       int    `json:"review_round"`
	AggregatedRound   int    `json:"aggregated_round"`
	Recommendation    string `json:"recommendation"`
	Assigned          int    `json:"assigned"`
	Completed         int    `json:"completed"`
	Accepts           int    `json:"accepts"`
	RevisionsAsked    int    `json:"revisions_asked"`
	Rejects           int    `json:"rejects"`
	AllReviewersDone  bool   `json:"all_reviewers_done"`
	UnanimousApproval bool   `json:"unanimous_approval"`
}

type TransitionDTO struct {
	FromStatus  string `json:"from_status,omitempty"`
	ToStatus    string `json:"to_status"`
	ActorID     string `json:"actor_id"`
	ActorRole   string `json:"actor_role"`
	Comments    string `json:"comments,omitempty"`
	ReviewRound int    `json:"review_round"`
	CreatedAt   string `json:"created_at"`
}

type HistoryResponse struct {
	ArticleID string          `json:"article_id"`
	Items     []TransitionDTO `json:"items"`
}

type CreateJournalRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type JournalResponse struct {
	JournalID string `json:"journal_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type CreateIssueRequest struct {
	Volume      int    `json:"volume"`
	IssueNumber int    `json:"issue_number"`
	Year        int    `json:"year"`
	IsSpecial   bool   `json:"is_special"`
	Title       string `json:"title"`
}

type IssueDTO struct {
	IssueID     string `json:"issue_id"`
	JournalID   string `json:"journal_id"`
	Volume      int    `json:"volume"`
	IssueNumber int    `json:"issue_number"`
	Year        int    `json:"year"`
	IsSpecial   bool   `json:"is_special"`
	Title       string `json:"title,omitempty"`
}

type ListIssuesResponse struct {
	Items []IssueDTO `json:"items"`
}

type BindEditorRequest struct {
	UserID string `json:"user_id"`
}

type EditorshipResponse struct {
	UserID    string `json:"user_id"`
	JournalID string `json:"journal_id"`
}

type CreateUserRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type UserResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
