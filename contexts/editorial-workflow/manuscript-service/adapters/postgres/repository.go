package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/domain/services"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the editorial state through gorm. It runs on the
// postgres and mysql dialectors; only duplicate-key detection is dialect
// specific.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates every table and index the repository uses.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(
		&articleModel{},
		&transitionModel{},
		&issueAuditModel{},
		&reviewModel{},
		&userModel{},
		&roleAuditModel{},
		&editorshipModel{},
		&journalModel{},
		&issueModel{},
		&idempotencyModel{},
		&outboxModel{},
	)
}

func (r *Repository) CreateArticle(ctx context.Context, article entities.Article, transition entities.StatusTransition, events []ports.EventEnvelope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var journalCount int64
		if err := tx.Model(&journalModel{}).Where("journal_id = ?", article.JournalID).Count(&journalCount).Error; err != nil {
			return err
		}
		if journalCount == 0 {
			return domainerrors.ErrJournalNotFound
		}
		row := articleModelFromEntity(article)
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: article %s already exists", domainerrors.ErrConflict, article.ArticleID)
			}
			return err
		}
		history := transitionModelFromEntity(transition)
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		return insertOutboxTx(tx, events)
	})
}

func (r *Repository) GetArticle(ctx context.Context, articleID string) (entities.Article, error) {
	var row articleModel
	err := r.db.WithContext(ctx).
		Where("article_id = ?", strings.TrimSpace(articleID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Article{}, domainerrors.ErrArticleNotFound
		}
		return entities.Article{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListArticles(ctx context.Context, filter ports.ArticleFilter) ([]entities.Article, error) {
	tx := r.db.WithContext(ctx).Model(&articleModel{})
	if strings.TrimSpace(filter.AuthorID) != "" {
		tx = tx.Where("author_id = ?", strings.TrimSpace(filter.AuthorID))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if len(filter.JournalIDs) > 0 {
		tx = tx.Where("journal_id IN ?", filter.JournalIDs)
	}
	if len(filter.ArticleIDs) > 0 {
		tx = tx.Where("article_id IN ?", filter.ArticleIDs)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		tx = tx.Offset(filter.Offset)
	}

	var rows []articleModel
	if err := tx.Order("submitted_at DESC").Order("article_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Article, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveArticle(ctx context.Context, mutation ports.ArticleMutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateArticleTx(tx, mutation.Article, mutation.ExpectedVersion); err != nil {
			return err
		}
		if mutation.Transition != nil {
			history := transitionModelFromEntity(*mutation.Transition)
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		if mutation.IssueAudit != nil {
			audit := issueAuditModel{
				AuditID:         mutation.IssueAudit.AuditID,
				ArticleID:       mutation.IssueAudit.ArticleID,
				PreviousIssueID: mutation.IssueAudit.PreviousIssueID,
				NewIssueID:      mutation.IssueAudit.NewIssueID,
				ActorID:         mutation.IssueAudit.ActorID,
				ActorRole:       string(mutation.IssueAudit.ActorRole),
				CreatedAt:       mutation.IssueAudit.CreatedAt.UTC(),
			}
			if err := tx.Create(&audit).Error; err != nil {
				return err
			}
		}
		return insertOutboxTx(tx, mutation.Events)
	})
}

// updateArticleTx is the compare-and-set write on the article version.
func updateArticleTx(tx *gorm.DB, article entities.Article, expectedVersion int64) error {
	result := tx.Model(&articleModel{}).
		Where("article_id = ? AND version = ?", strings.TrimSpace(article.ArticleID), expectedVersion).
		Updates(articleUpdates(article))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&articleModel{}).Where("article_id = ?", strings.TrimSpace(article.ArticleID)).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrArticleNotFound
	}
	return fmt.Errorf("%w: article %s changed since version %d", domainerrors.ErrConflict, article.ArticleID, expectedVersion)
}

func (r *Repository) ListTransitions(ctx context.Context, articleID string) ([]entities.StatusTransition, error) {
	var rows []transitionModel
	if err := r.db.WithContext(ctx).
		Where("article_id = ?", strings.TrimSpace(articleID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.StatusTransition, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// AssignReviews locks the article row, rebuilds the ledger from committed
// reviews and re-verifies it before inserting. Both unique indexes on
// reviews back the same invariants at the storage level.
func (r *Repository) AssignReviews(ctx context.Context, mutation ports.AssignmentMutation) error {
	articleID := strings.TrimSpace(mutation.Article.ArticleID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked articleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("article_id = ?", articleID).
			First(&locked).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrArticleNotFound
			}
			return err
		}
		if locked.Version != mutation.ExpectedVersion {
			return fmt.Errorf("%w: article %s changed since version %d", domainerrors.ErrConflict, articleID, mutation.ExpectedVersion)
		}

		var existing []reviewModel
		if err := tx.Where("article_id = ?", articleID).Find(&existing).Error; err != nil {
			return err
		}
		reviews := make([]entities.Review, 0, len(existing)+len(mutation.Reviews))
		for _, row := range existing {
			reviews = append(reviews, row.toEntity())
		}
		reviews = append(reviews, mutation.Reviews...)
		if err := services.NewReviewLedger(reviews).Verify(); err != nil {
			return err
		}

		for _, review := range mutation.Reviews {
			row := reviewModelFromEntity(review)
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return fmt.Errorf("%w: reviewer slot taken concurrently", domainerrors.ErrConflict)
				}
				return err
			}
		}
		if err := updateArticleTx(tx, mutation.Article, mutation.ExpectedVersion); err != nil {
			return err
		}
		if mutation.Transition != nil {
			history := transitionModelFromEntity(*mutation.Transition)
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return insertOutboxTx(tx, mutation.Events)
	})
	if err != nil {
		r.logger.Debug("review assignment transaction aborted",
			"event", "editorial_assign_reviews_aborted",
			"module", "editorial-workflow/manuscript-service",
			"layer", "adapter",
			"article_id", articleID,
			"error", err.Error(),
		)
	}
	return err
}

func (r *Repository) SaveReview(ctx context.Context, mutation ports.ReviewMutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if mutation.ExpectedArticleStatus != "" {
			var article articleModel
			if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
				Select("article_id", "status").
				Where("article_id = ?", strings.TrimSpace(mutation.Review.ArticleID)).
				First(&article).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domainerrors.ErrArticleNotFound
				}
				return err
			}
			if article.Status != string(mutation.ExpectedArticleStatus) {
				return fmt.Errorf("%w: article moved to %s", domainerrors.ErrConflict, article.Status)
			}
		}

		result := tx.Model(&reviewModel{}).
			Where("review_id = ? AND version = ?", strings.TrimSpace(mutation.Review.ReviewID), mutation.ExpectedVersion).
			Updates(reviewUpdates(mutation.Review))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&reviewModel{}).Where("review_id = ?", strings.TrimSpace(mutation.Review.ReviewID)).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrReviewNotFound
			}
			return fmt.Errorf("%w: review %s changed since version %d", domainerrors.ErrConflict, mutation.Review.ReviewID, mutation.ExpectedVersion)
		}
		return insertOutboxTx(tx, mutation.Events)
	})
}

func (r *Repository) GetReview(ctx context.Context, reviewID string) (entities.Review, error) {
	var row reviewModel
	err := r.db.WithContext(ctx).
		Where("review_id = ?", strings.TrimSpace(reviewID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Review{}, domainerrors.ErrReviewNotFound
		}
		return entities.Review{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListReviews(ctx context.Context, filter ports.ReviewFilter) ([]entities.Review, error) {
	tx := r.db.WithContext(ctx).Model(&reviewModel{})
	if strings.TrimSpace(filter.ArticleID) != "" {
		tx = tx.Where("article_id = ?", strings.TrimSpace(filter.ArticleID))
	}
	if strings.TrimSpace(filter.ReviewerID) != "" {
		tx = tx.Where("reviewer_id = ?", strings.TrimSpace(filter.ReviewerID))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		tx = tx.Where("status IN ?", statuses)
	}
	if len(filter.ArticleStatuses) > 0 {
		tx = tx.Where("article_id IN (?)", r.articleIDsIn(ctx, filter.ArticleStatuses))
	}
	if filter.DueBefore != nil {
		tx = tx.Where("due_date <= ?", filter.DueBefore.UTC())
	}
	if filter.NotReminded {
		tx = tx.Where("reminder_sent_at IS NULL")
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []reviewModel
	if err := tx.Order("article_id ASC").Order("reviewer_number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Review, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ActiveReviewLoads(ctx context.Context, reviewerIDs []string) (map[string]int, error) {
	loads := make(map[string]int, len(reviewerIDs))
	if len(reviewerIDs) == 0 {
		return loads, nil
	}
	for _, reviewerID := range reviewerIDs {
		loads[reviewerID] = 0
	}

	var rows []struct {
		ReviewerID  string `gorm:"column:reviewer_id"`
		OpenReviews int    `gorm:"column:open_reviews"`
	}
	if err := r.db.WithContext(ctx).
		Model(&reviewModel{}).
		Select("reviewer_id, COUNT(*) AS open_reviews").
		Where("reviewer_id IN ?", reviewerIDs).
		Where("status IN ?", []string{string(entities.ReviewStatusPending), string(entities.ReviewStatusInProgress)}).
		Where("article_id IN (?)", r.articleIDsIn(ctx, entities.ReviewStatuses)).
		Group("reviewer_id").
		Scan(&rows).
		Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		loads[row.ReviewerID] = row.OpenReviews
	}
	return loads, nil
}

// articleIDsIn is a subquery selecting the ids of articles in the given
// statuses.
func (r *Repository) articleIDsIn(ctx context.Context, statuses []entities.ArticleStatus) *gorm.DB {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	return r.db.WithContext(ctx).Model(&articleModel{}).Select("article_id").Where("status IN ?", values)
}

// isUniqueViolation recognizes duplicate-key failures from either dialect.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
