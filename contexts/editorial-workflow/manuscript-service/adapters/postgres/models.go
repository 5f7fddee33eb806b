package postgresadapter

import (
	"encoding/json"
	"strings"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
)

type articleModel struct {
	ArticleID                string     `gorm:"column:article_id;primaryKey;size:64"`
	JournalID                string     `gorm:"column:journal_id;size:64;index"`
	IssueID                  string     `gorm:"column:issue_id;size:64"`
	AuthorID                 string     `gorm:"column:author_id;size:64;index"`
	Title                    string     `gorm:"column:title;size:300"`
	Abstract                 string     `gorm:"column:abstract;type:text"`
	Keywords                 string     `gorm:"column:keywords;type:text"`
	ArticleType              string     `gorm:"column:article_type;size:64"`
	Status                   string     `gorm:"column:status;size:32;index"`
	IsAPCPaid                bool       `gorm:"column:is_apc_paid"`
	APCAmount                float64    `gorm:"column:apc_amount"`
	DOI                      string     `gorm:"column:doi;size:128"`
	ReviewRound              int        `gorm:"column:review_round"`
	DecisionCommentsToAuthor string     `gorm:"column:decision_comments_to_author;type:text"`
	DecisionCommentsToEditor string     `gorm:"column:decision_comments_to_editor;type:text"`
	RejectionReason          string     `gorm:"column:rejection_reason;type:text"`
	CoAuthors                string     `gorm:"column:co_authors;type:text"`
	Version                  int64      `gorm:"column:version"`
	SubmittedAt              time.Time  `gorm:"column:submitted_at"`
	AcceptedAt               *time.Time `gorm:"column:accepted_at"`
	PublishedAt              *time.Time `gorm:"column:published_at"`
	CreatedAt                time.Time  `gorm:"column:created_at"`
	UpdatedAt                time.Time  `gorm:"column:updated_at"`
}

func (articleModel) TableName() string {
	return "articles"
}

func articleModelFromEntity(item entities.Article) articleModel {
	return articleModel{
		ArticleID:                strings.TrimSpace(item.ArticleID),
		JournalID:                strings.TrimSpace(item.JournalID),
		IssueID:                  strings.TrimSpace(item.IssueID),
		AuthorID:                 strings.TrimSpace(item.AuthorID),
		Title:                    item.Title,
		Abstract:                 item.Abstract,
		Keywords:                 encodeJSON(copyOrEmpty(item.Keywords)),
		ArticleType:              item.ArticleType,
		Status:                   string(item.Status),
		IsAPCPaid:                item.IsAPCPaid,
		APCAmount:                item.APCAmount,
		DOI:                      item.DOI,
		ReviewRound:              item.ReviewRound,
		DecisionCommentsToAuthor: item.DecisionCommentsToAuthor,
		DecisionCommentsToEditor: item.DecisionCommentsToEditor,
		RejectionReason:          item.RejectionReason,
		CoAuthors:                encodeJSON(coAuthorRowsFromEntity(item.CoAuthors)),
		Version:                  item.Version,
		SubmittedAt:              item.SubmittedAt.UTC(),
		AcceptedAt:               normalizeOptionalTime(item.AcceptedAt),
		PublishedAt:              normalizeOptionalTime(item.PublishedAt),
		CreatedAt:                item.CreatedAt.UTC(),
		UpdatedAt:                item.UpdatedAt.UTC(),
	}
}

// articleUpdates lists every mutable column; zero values are written too.
func articleUpdates(item entities.Article) map[string]any {
	row := articleModelFromEntity(item)
	return map[string]any{
		"issue_id":                    row.IssueID,
		"title":                       row.Title,
		"abstract":                    row.Abstract,
		"keywords":                    row.Keywords,
		"article_type":                row.ArticleType,
		"status":                      row.Status,
		"is_apc_paid":                 row.IsAPCPaid,
		"apc_amount":                  row.APCAmount,
		"doi":                         row.DOI,
		"review_round":                row.ReviewRound,
		"decision_comments_to_author": row.DecisionCommentsToAuthor,
		"decision_comments_to_editor": row.DecisionCommentsToEditor,
		"rejection_reason":            row.RejectionReason,
		"co_authors":                  row.CoAuthors,
		"version":                     row.Version,
		"accepted_at":                 row.AcceptedAt,
		"published_at":                row.PublishedAt,
		"updated_at":                  row.UpdatedAt,
	}
}

func (m articleModel) toEntity() entities.Article {
	return entities.Article{
		ArticleID:                m.ArticleID,
		JournalID:                m.JournalID,
		IssueID:                  m.IssueID,
		AuthorID:                 m.AuthorID,
		Title:                    m.Title,
		Abstract:                 m.Abstract,
		Keywords:                 decodeKeywords(m.Keywords),
		ArticleType:              m.ArticleType,
		Status:                   entities.ArticleStatus(m.Status),
		IsAPCPaid:                m.IsAPCPaid,
		APCAmount:                m.APCAmount,
		DOI:                      m.DOI,
		ReviewRound:              m.ReviewRound,
		DecisionCommentsToAuthor: m.DecisionCommentsToAuthor,
		DecisionCommentsToEditor: m.DecisionCommentsToEditor,
		RejectionReason:          m.RejectionReason,
		CoAuthors:                decodeCoAuthors(m.CoAuthors),
		Version:                  m.Version,
		SubmittedAt:              m.SubmittedAt.UTC(),
		AcceptedAt:               normalizeOptionalTime(m.AcceptedAt),
		PublishedAt:              normalizeOptionalTime(m.PublishedAt),
		CreatedAt:                m.CreatedAt.UTC(),
		UpdatedAt:                m.UpdatedAt.UTC(),
	}
}

type transitionModel struct {
	TransitionID string    `gorm:"column:transition_id;primaryKey;size:64"`
	ArticleID    string    `gorm:"column:article_id;size:64;index"`
	FromStatus   string    `gorm:"column:from_status;size:32"`
	ToStatus     string    `gorm:"column:to_status;size:32"`
	ActorID      string    `gorm:"column:actor_id;size:64"`
	ActorRole    string    `gorm:"column:actor_role;size:32"`
	Comments     string    `gorm:"column:comments;type:text"`
	ReviewRound  int       `gorm:"column:review_round"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (transitionModel) TableName() string {
	return "article_status_transitions"
}

func transitionModelFromEntity(item entities.StatusTransition) transitionModel {
	return transitionModel{
		TransitionID: item.TransitionID,
		ArticleID:    item.ArticleID,
		FromStatus:   string(item.FromStatus),
		ToStatus:     string(item.ToStatus),
		ActorID:      item.ActorID,
		ActorRole:    string(item.ActorRole),
		Comments:     item.Comments,
		ReviewRound:  item.ReviewRound,
		CreatedAt:    item.CreatedAt.UTC(),
	}
}

func (m transitionModel) toEntity() entities.StatusTransition {
	return entities.StatusTransition{
		TransitionID: m.TransitionID,
		ArticleID:    m.ArticleID,
		FromStatus:   entities.ArticleStatus(m.FromStatus),
		ToStatus:     entities.ArticleStatus(m.ToStatus),
		ActorID:      m.ActorID,
		ActorRole:    entities.Role(m.ActorRole),
		Comments:     m.Comments,
		ReviewRound:  m.ReviewRound,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

type issueAuditModel struct {
	AuditID         string    `gorm:"column:audit_id;primaryKey;size:64"`
	ArticleID       string    `gorm:"column:article_id;size:64;index"`
	PreviousIssueID string    `gorm:"column:previous_issue_id;size:64"`
	NewIssueID      string    `gorm:"column:new_issue_id;size:64"`
	ActorID         string    `gorm:"column:actor_id;size:64"`
	ActorRole       string    `gorm:"column:actor_role;size:32"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (issueAuditModel) TableName() string {
	return "article_issue_audits"
}

// Reviews carry two unique indexes: one reviewer per article and one
// reviewer number per article. Together with the row lock on the article
// they keep the ledger consistent under concurrent assignment.
type reviewModel struct {
	ReviewID         string     `gorm:"column:review_id;primaryKey;size:64"`
	ArticleID        string     `gorm:"column:article_id;size:64;uniqueIndex:ux_reviews_article_reviewer,priority:1;uniqueIndex:ux_reviews_article_number,priority:1"`
	ReviewerID       string     `gorm:"column:reviewer_id;size:64;uniqueIndex:ux_reviews_article_reviewer,priority:2;index"`
	ReviewerNumber   int        `gorm:"column:reviewer_number;uniqueIndex:ux_reviews_article_number,priority:2"`
	Round            int        `gorm:"column:round"`
	Status           string     `gorm:"column:status;size:32;index"`
	Decision         string     `gorm:"column:decision;size:32"`
	CommentsToAuthor string     `gorm:"column:comments_to_author;type:text"`
	CommentsToEditor string     `gorm:"column:comments_to_editor;type:text"`
	AssignedBy       string     `gorm:"column:assigned_by;size:64"`
	AssignedAt       time.Time  `gorm:"column:assigned_at"`
	DueDate          time.Time  `gorm:"column:due_date;index"`
	StartedAt        *time.Time `gorm:"column:started_at"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
	DeclinedAt       *time.Time `gorm:"column:declined_at"`
	ReminderSentAt   *time.Time `gorm:"column:reminder_sent_at"`
	Version          int64      `gorm:"column:version"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string {
	return "reviews"
}

func reviewModelFromEntity(item entities.Review) reviewModel {
	return reviewModel{
		ReviewID:         strings.TrimSpace(item.ReviewID),
		ArticleID:        strings.TrimSpace(item.ArticleID),
		ReviewerID:       strings.TrimSpace(item.ReviewerID),
		ReviewerNumber:   item.ReviewerNumber,
		Round:            item.Round,
		Status:           string(item.Status),
		Decision:         string(item.Decision),
		CommentsToAuthor: item.CommentsToAuthor,
		CommentsToEditor: item.CommentsToEditor,
		AssignedBy:       item.AssignedBy,
		AssignedAt:       item.AssignedAt.UTC(),
		DueDate:          item.DueDate.UTC(),
		StartedAt:        normalizeOptionalTime(item.StartedAt),
		CompletedAt:      normalizeOptionalTime(item.CompletedAt),
		DeclinedAt:       normalizeOptionalTime(item.DeclinedAt),
		ReminderSentAt:   normalizeOptionalTime(item.ReminderSentAt),
		Version:          item.Version,
		UpdatedAt:        item.UpdatedAt.UTC(),
	}
}

func reviewUpdates(item entities.Review) map[string]any {
	row := reviewModelFromEntity(item)
	return map[string]any{
		"status":             row.Status,
		"decision":           row.Decision,
		"comments_to_author": row.CommentsToAuthor,
		"comments_to_editor": row.CommentsToEditor,
		"started_at":         row.StartedAt,
		"completed_at":       row.CompletedAt,
		"declined_at":        row.DeclinedAt,
		"reminder_sent_at":   row.ReminderSentAt,
		"version":            row.Version,
		"updated_at":         row.UpdatedAt,
	}
}

func (m reviewModel) toEntity() entities.Review {
	return entities.Review{
		ReviewID:         m.ReviewID,
		ArticleID:        m.ArticleID,
		ReviewerID:       m.ReviewerID,
		ReviewerNumber:   m.ReviewerNumber,
		Round:            m.Round,
		Status:           entities.ReviewStatus(m.Status),
		Decision:         entities.ReviewDecision(m.Decision),
		CommentsToAuthor: m.CommentsToAuthor,
		CommentsToEditor: m.CommentsToEditor,
		AssignedBy:       m.AssignedBy,
		AssignedAt:       m.AssignedAt.UTC(),
		DueDate:          m.DueDate.UTC(),
		StartedAt:        normalizeOptionalTime(m.StartedAt),
		CompletedAt:      normalizeOptionalTime(m.CompletedAt),
		DeclinedAt:       normalizeOptionalTime(m.DeclinedAt),
		ReminderSentAt:   normalizeOptionalTime(m.ReminderSentAt),
		Version:          m.Version,
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

type userModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:64"`
	Email     string    `gorm:"column:email;size:255;uniqueIndex"`
	FullName  string    `gorm:"column:full_name;size:255"`
	Role      string    `gorm:"column:role;size:32;index"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:    m.UserID,
		Email:     m.Email,
		FullName:  m.FullName,
		Role:      entities.Role(m.Role),
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

type roleAuditModel struct {
	AuditID      string    `gorm:"column:audit_id;primaryKey;size:64"`
	UserID       string    `gorm:"column:user_id;size:64;index"`
	PreviousRole string    `gorm:"column:previous_role;size:32"`
	NewRole      string    `gorm:"column:new_role;size:32"`
	ChangedBy    string    `gorm:"column:changed_by;size:64"`
	ChangedAt    time.Time `gorm:"column:changed_at"`
}

func (roleAuditModel) TableName() string {
	return "user_role_audits"
}

func roleAuditModelFromEntity(item entities.RoleChangeAudit) roleAuditModel {
	return roleAuditModel{
		AuditID:      item.AuditID,
		UserID:       item.UserID,
		PreviousRole: string(item.PreviousRole),
		NewRole:      string(item.NewRole),
		ChangedBy:    item.ChangedBy,
		ChangedAt:    item.ChangedAt.UTC(),
	}
}

type editorshipModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:64"`
	JournalID string    `gorm:"column:journal_id;primaryKey;size:64"`
	BoundBy   string    `gorm:"column:bound_by;size:64"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (editorshipModel) TableName() string {
	return "journal_editors"
}

type journalModel struct {
	JournalID string    `gorm:"column:journal_id;primaryKey;size:64"`
	Code      string    `gorm:"column:code;size:16;uniqueIndex"`
	Name      string    `gorm:"column:name;size:255"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (journalModel) TableName() string {
	return "journals"
}

func (m journalModel) toEntity() entities.Journal {
	return entities.Journal{
		JournalID: m.JournalID,
		Code:      m.Code,
		Name:      m.Name,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type issueModel struct {
	IssueID     string    `gorm:"column:issue_id;primaryKey;size:64"`
	JournalID   string    `gorm:"column:journal_id;size:64;uniqueIndex:ux_issues_journal_volume_number,priority:1"`
	Volume      int       `gorm:"column:volume;uniqueIndex:ux_issues_journal_volume_number,priority:2"`
	IssueNumber int       `gorm:"column:issue_number;uniqueIndex:ux_issues_journal_volume_number,priority:3"`
	Year        int       `gorm:"column:year"`
	IsSpecial   bool      `gorm:"column:is_special"`
	Title       string    `gorm:"column:title;size:255"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (issueModel) TableName() string {
	return "journal_issues"
}

func (m issueModel) toEntity() entities.Issue {
	return entities.Issue{
		IssueID:     m.IssueID,
		JournalID:   m.JournalID,
		Volume:      m.Volume,
		IssueNumber: m.IssueNumber,
		Year:        m.Year,
		IsSpecial:   m.IsSpecial,
		Title:       m.Title,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type idempotencyModel struct {
	Key             string    `gorm:"column:idempotency_key;primaryKey;size:255"`
	Operation       string    `gorm:"column:operation;size:64"`
	RequestHash     string    `gorm:"column:request_hash;size:64"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "editorial_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey;size:64"`
	EventType    string     `gorm:"column:event_type;size:64"`
	PartitionKey string     `gorm:"column:partition_key;size:64"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;size:16;index"`
	LastError    string     `gorm:"column:last_error;type:text"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	FailedAt     *time.Time `gorm:"column:failed_at"`
}

func (outboxModel) TableName() string {
	return "editorial_outbox"
}

// coAuthorRow is the JSON shape of one co-author inside articles.co_authors.
type coAuthorRow struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	University string `json:"university,omitempty"`
}

func coAuthorRowsFromEntity(items []entities.CoAuthor) []coAuthorRow {
	rows := make([]coAuthorRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, coAuthorRow{Name: item.Name, Email: item.Email, University: item.University})
	}
	return rows
}

func decodeCoAuthors(raw string) []entities.CoAuthor {
	var rows []coAuthorRow
	if strings.TrimSpace(raw) == "" || json.Unmarshal([]byte(raw), &rows) != nil {
		return nil
	}
	items := make([]entities.CoAuthor, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.CoAuthor{Name: row.Name, Email: row.Email, University: row.University})
	}
	return items
}

func decodeKeywords(raw string) []string {
	var items []string
	if strings.TrimSpace(raw) == "" || json.Unmarshal([]byte(raw), &items) != nil {
		return nil
	}
	return items
}

func encodeJSON(value any) string {
	payload, err := json.Marshal(value)
	if err != nil {
		return "[]"
	}
	return string(payload)
}

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}
