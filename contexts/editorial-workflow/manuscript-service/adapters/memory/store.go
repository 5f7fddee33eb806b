package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"

	"github.com/google/uuid"
)

// Store keeps the editorial state in process. Every write runs inside one
// critical section so conditional checks and the outbox append commit
// together, mirroring the SQL adapter's transactions.
type Store struct {
	mu sync.RWMutex

	articles         map[string]entities.Article
	transitions      map[string][]entities.StatusTransition
	issueAudits      []entities.IssueAssignmentAudit
	reviews          map[string]entities.Review
	reviewsByArticle map[string][]string

	users        map[string]entities.User
	userEmails   map[string]string
	roleAudits   []entities.RoleChangeAudit
	editorships  map[string]map[string]entities.Editorship
	journals     map[string]entities.Journal
	journalCodes map[string]string
	issues       map[string]entities.Issue
	issueKeys    map[string]string

	idempotency map[string]ports.IdempotencyRecord
	outbox      map[string]ports.OutboxMessage
	outboxOrder []string
	outboxSent  map[string]time.Time
	outboxDead  map[string]string
}

func NewStore() *Store {
	return &Store{
		articles:         make(map[string]entities.Article),
		transitions:      make(map[string][]entities.StatusTransition),
		reviews:          make(map[string]entities.Review),
		reviewsByArticle: make(map[string][]string),
		users:            make(map[string]entities.User),
		userEmails:       make(map[string]string),
		editorships:      make(map[string]map[string]entities.Editorship),
		journals:         make(map[string]entities.Journal),
		journalCodes:     make(map[string]string),
		issues:           make(map[string]entities.Issue),
		issueKeys:        make(map[string]string),
		idempotency:      make(map[string]ports.IdempotencyRecord),
		outbox:           make(map[string]ports.OutboxMessage),
		outboxSent:       make(map[string]time.Time),
		outboxDead:       make(map[string]string),
	}
}

func cloneArticle(article entities.Article) entities.Article {
	article.Keywords = slices.Clone(article.Keywords)
	article.CoAuthors = slices.Clone(article.CoAuthors)
	return article
}

func (s *Store) CreateArticle(_ context.Context, article entities.Article, transition entities.StatusTransition, events []ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.articles[article.ArticleID]; exists {
		return fmt.Errorf("%w: article %s already exists", domainerrors.ErrConflict, article.ArticleID)
	}
	if _, exists := s.journals[article.JournalID]; !exists {
		return domainerrors.ErrJournalNotFound
	}
	if err := s.appendOutboxLocked(events); err != nil {
		return err
	}
	s.articles[article.ArticleID] = cloneArticle(article)
	s.transitions[article.ArticleID] = append(s.transitions[article.ArticleID], transition)
	return nil
}

func (s *Store) GetArticle(_ context.Context, articleID string) (entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, exists := s.articles[strings.TrimSpace(articleID)]
	if !exists {
		return entities.Article{}, domainerrors.ErrArticleNotFound
	}
	return cloneArticle(article), nil
}

func (s *Store) ListArticles(_ context.Context, filter ports.ArticleFilter) ([]entities.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Article, 0, len(s.articles))
	for _, article := range s.articles {
		if filter.AuthorID != "" && article.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" && article.Status != filter.Status {
			continue
		}
		if len(filter.JournalIDs) > 0 && !slices.Contains(filter.JournalIDs, article.JournalID) {
			continue
		}
		if len(filter.ArticleIDs) > 0 && !slices.Contains(filter.ArticleIDs, article.ArticleID) {
			continue
		}
		items = append(items, cloneArticle(article))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].SubmittedAt.After(items[j].SubmittedAt)
		}
		return items[i].ArticleID < items[j].ArticleID
	})
	return paginate(items, filter.Offset, filter.Limit), nil
}

func paginate[T any](items []T, offset int, limit int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (s *Store) SaveArticle(_ context.Context, mutation ports.ArticleMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkArticleVersionLocked(mutation.Article.ArticleID, mutation.ExpectedVersion); err != nil {
		return err
	}
	if err := s.appendOutboxLocked(mutation.Events); err != nil {
		return err
	}
	article := mutation.Article
	s.articles[article.ArticleID] = cloneArticle(article)
	if mutation.Transition != nil {
		s.transitions[article.ArticleID] = append(s.transitions[article.ArticleID], *mutation.Transition)
	}
	if mutation.IssueAudit != nil {
		s.issueAudits = append(s.issueAudits, *mutation.IssueAudit)
	}
	return nil
}

func (s *Store) checkArticleVersionLocked(articleID string, expected int64) error {
	current, exists := s.articles[articleID]
	if !exists {
		return domainerrors.ErrArticleNotFound
	}
	if current.Version != expected {
		return fmt.Errorf("%w: article %s is at version %d, expected %d",
			domainerrors.ErrConflict, articleID, current.Version, expected)
	}
	return nil
}

func (s *Store) ListTransitions(_ context.Context, articleID string) ([]entities.StatusTransition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.articles[strings.TrimSpace(articleID)]; !exists {
		return nil, domainerrors.ErrArticleNotFound
	}
	return slices.Clone(s.transitions[strings.TrimSpace(articleID)]), nil
}

// IssueAudits returns every recorded issue binding change.
func (s *Store) IssueAudits() []entities.IssueAssignmentAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.issueAudits)
}

func (s *Store) AssignReviews(_ context.Context, mutation ports.AssignmentMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	articleID := mutation.Article.ArticleID
	if err := s.checkArticleVersionLocked(articleID, mutation.ExpectedVersion); err != nil {
		return err
	}
	ledger := services.NewReviewLedger(append(s.articleReviewsLocked(articleID), mutation.Reviews...))
	if err := ledger.Verify(); err != nil {
		return err
	}
	if err := s.appendOutboxLocked(mutation.Events); err != nil {
		return err
	}

	for _, review := range mutation.Reviews {
		s.reviews[review.ReviewID] = review
		s.reviewsByArticle[articleID] = append(s.reviewsByArticle[articleID], review.ReviewID)
	}
	s.articles[articleID] = cloneArticle(mutation.Article)
	if mutation.Transition != nil {
		s.transitions[articleID] = append(s.transitions[articleID], *mutation.Transition)
	}
	return nil
}

func (s *Store) articleReviewsLocked(articleID string) []entities.Review {
	ids := s.reviewsByArticle[articleID]
	items := make([]entities.Review, 0, len(ids))
	for _, id := range ids {
		items = append(items, s.reviews[id])
	}
	return items
}

func (s *Store) SaveReview(_ context.Context, mutation ports.ReviewMutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.reviews[mutation.Review.ReviewID]
	if !exists {
		return domainerrors.ErrReviewNotFound
	}
	if current.Version != mutation.ExpectedVersion {
		return fmt.Errorf("%w: review %s is at version %d, expected %d",
			domainerrors.ErrConflict, current.ReviewID, current.Version, mutation.ExpectedVersion)
	}
	if mutation.ExpectedArticleStatus != "" {
		article := s.articles[current.ArticleID]
		if article.Status != mutation.ExpectedArticleStatus {
			return fmt.Errorf("%w: article moved to %s", domainerrors.ErrConflict, article.Status)
		}
	}
	if err := s.appendOutboxLocked(mutation.Events); err != nil {
		return err
	}
	s.reviews[current.ReviewID] = mutation.Review
	return nil
}

func (s *Store) GetReview(_ context.Context, reviewID string) (entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	review, exists := s.reviews[strings.TrimSpace(reviewID)]
	if !exists {
		return entities.Review{}, domainerrors.ErrReviewNotFound
	}
	return review, nil
}

func (s *Store) ListReviews(_ context.Context, filter ports.ReviewFilter) ([]entities.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Review, 0)
	for _, review := range s.reviews {
		if filter.ArticleID != "" && review.ArticleID != filter.ArticleID {
			continue
		}
		if filter.ReviewerID != "" && review.ReviewerID != filter.ReviewerID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, review.Status) {
			continue
		}
		if len(filter.ArticleStatuses) > 0 && !slices.Contains(filter.ArticleStatuses, s.articles[review.ArticleID].Status) {
			continue
		}
		if filter.DueBefore != nil && review.DueDate.After(*filter.DueBefore) {
			continue
		}
		if filter.NotReminded && review.ReminderSentAt != nil {
			continue
		}
		items = append(items, review)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].ArticleID != items[j].ArticleID {
			return items[i].ArticleID < items[j].ArticleID
		}
		return items[i].ReviewerNumber < items[j].ReviewerNumber
	})
	return paginate(items, 0, filter.Limit), nil
}

func (s *Store) ActiveReviewLoads(_ context.Context, reviewerIDs []string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loads := make(map[string]int, len(reviewerIDs))
	for _, reviewerID := range reviewerIDs {
		loads[reviewerID] = 0
	}
	for _, review := range s.reviews {
		if _, tracked := loads[review.ReviewerID]; !tracked || !review.Status.Active() {
			continue
		}
		if s.articles[review.ArticleID].Status.OpenForReviews() {
			loads[review.ReviewerID]++
		}
	}
	return loads, nil
}

func (s *Store) CreateUser(_ context.Context, user entities.User, audit *entities.RoleChangeAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, exists := s.users[user.UserID]; exists {
		return domainerrors.ErrDuplicateUser
	}
	if _, exists := s.userEmails[email]; exists && email != "" {
		return fmt.Errorf("%w: email %s is taken", domainerrors.ErrDuplicateUser, email)
	}
	s.users[user.UserID] = user
	if email != "" {
		s.userEmails[email] = user.UserID
	}
	if audit != nil {
		s.roleAudits = append(s.roleAudits, *audit)
	}
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[strings.TrimSpace(userID)]
	if !exists {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) ListUsers(_ context.Context, filter ports.UserFilter) ([]entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.User, 0, len(s.users))
	for _, user := range s.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.ActiveOnly && !user.IsActive {
			continue
		}
		items = append(items, user)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].UserID < items[j].UserID
	})
	return items, nil
}

func (s *Store) ChangeRole(_ context.Context, audit entities.RoleChangeAudit, events []ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[audit.UserID]
	if !exists {
		return domainerrors.ErrUserNotFound
	}
	if user.Role != audit.PreviousRole {
		return fmt.Errorf("%w: user %s role changed concurrently", domainerrors.ErrConflict, audit.UserID)
	}
	if err := s.appendOutboxLocked(events); err != nil {
		return err
	}
	user.Role = audit.NewRole
	user.UpdatedAt = audit.ChangedAt
	s.users[user.UserID] = user
	s.roleAudits = append(s.roleAudits, audit)
	if !audit.NewRole.IsEditorial() {
		delete(s.editorships, user.UserID)
	}
	return nil
}

// RoleAudits returns the role change trail in write order.
func (s *Store) RoleAudits() []entities.RoleChangeAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roleAudits)
}

func (s *Store) ListEditorJournals(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bound := s.editorships[strings.TrimSpace(userID)]
	items := make([]string, 0, len(bound))
	for journalID := range bound {
		items = append(items, journalID)
	}
	sort.Strings(items)
	return items, nil
}

func (s *Store) BindEditor(_ context.Context, editorship entities.Editorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[editorship.UserID]; !exists {
		return domainerrors.ErrUserNotFound
	}
	if _, exists := s.journals[editorship.JournalID]; !exists {
		return domainerrors.ErrJournalNotFound
	}
	bound, ok := s.editorships[editorship.UserID]
	if !ok {
		bound = make(map[string]entities.Editorship)
		s.editorships[editorship.UserID] = bound
	}
	if _, exists := bound[editorship.JournalID]; !exists {
		bound[editorship.JournalID] = editorship
	}
	return nil
}

func (s *Store) CreateJournal(_ context.Context, journal entities.Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := strings.ToUpper(strings.TrimSpace(journal.Code))
	if _, exists := s.journals[journal.JournalID]; exists {
		return domainerrors.ErrDuplicateJournal
	}
	if _, exists := s.journalCodes[code]; exists {
		return fmt.Errorf("%w: code %s is taken", domainerrors.ErrDuplicateJournal, code)
	}
	s.journals[journal.JournalID] = journal
	s.journalCodes[code] = journal.JournalID
	return nil
}

func (s *Store) GetJournal(_ context.Context, journalID string) (entities.Journal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journal, exists := s.journals[strings.TrimSpace(journalID)]
	if !exists {
		return entities.Journal{}, domainerrors.ErrJournalNotFound
	}
	return journal, nil
}

func issueKey(journalID string, volume int, issueNumber int) string {
	return fmt.Sprintf("%s/%d/%d", journalID, volume, issueNumber)
}

func (s *Store) CreateIssue(_ context.Context, issue entities.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.journals[issue.JournalID]; !exists {
		return domainerrors.ErrJournalNotFound
	}
	key := issueKey(issue.JournalID, issue.Volume, issue.IssueNumber)
	if _, exists := s.issueKeys[key]; exists {
		return fmt.Errorf("%w: volume %d issue %d", domainerrors.ErrDuplicateIssue, issue.Volume, issue.IssueNumber)
	}
	s.issues[issue.IssueID] = issue
	s.issueKeys[key] = issue.IssueID
	return nil
}

func (s *Store) GetIssue(_ context.Context, issueID string) (entities.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, exists := s.issues[strings.TrimSpace(issueID)]
	if !exists {
		return entities.Issue{}, domainerrors.ErrIssueNotFound
	}
	return issue, nil
}

func (s *Store) ListIssues(_ context.Context, journalID string) ([]entities.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Issue, 0)
	for _, issue := range s.issues {
		if issue.JournalID == journalID {
			items = append(items, issue)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Volume != items[j].Volume {
			return items[i].Volume < items[j].Volume
		}
		return items[i].IssueNumber < items[j].IssueNumber
	})
	return items, nil
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.idempotency[record.Key]
	if exists {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		if !bytes.Equal(existing.ResponsePayload, record.ResponsePayload) {
			return domainerrors.ErrIdempotencyConflict
		}
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) appendOutboxLocked(events []ports.EventEnvelope) error {
	for _, event := range events {
		if _, exists := s.outbox[event.EventID]; exists {
			return fmt.Errorf("%w: outbox event %s already queued", domainerrors.ErrConflict, event.EventID)
		}
	}
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		s.outbox[event.EventID] = ports.OutboxMessage{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt,
		}
		s.outboxOrder = append(s.outboxOrder, event.EventID)
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if _, dead := s.outboxDead[id]; dead {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return fmt.Errorf("%w: outbox row %s", domainerrors.ErrConflict, outboxID)
	}
	s.outboxSent[outboxID] = publishedAt.UTC()
	return nil
}

func (s *Store) MarkOutboxFailed(_ context.Context, outboxID string, reason string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return fmt.Errorf("%w: outbox row %s", domainerrors.ErrConflict, outboxID)
	}
	s.outboxDead[outboxID] = reason
	return nil
}

// OutboxEvents returns every queued event in write order, published or not.
func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
