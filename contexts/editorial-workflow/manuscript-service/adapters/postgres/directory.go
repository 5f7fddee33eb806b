package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

func (r *Repository) CreateUser(ctx context.Context, user entities.User, audit *entities.RoleChangeAudit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := userModel{
			UserID:    strings.TrimSpace(user.UserID),
			Email:     strings.ToLower(strings.TrimSpace(user.Email)),
			FullName:  strings.TrimSpace(user.FullName),
			Role:      string(user.Role),
			IsActive:  user.IsActive,
			CreatedAt: user.CreatedAt.UTC(),
			UpdatedAt: user.UpdatedAt.UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domainerrors.ErrDuplicateUser, row.Email)
			}
			return err
		}
		if audit == nil {
			return nil
		}
		history := roleAuditModelFromEntity(*audit)
		return tx.Create(&history).Error
	})
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUsers(ctx context.Context, filter ports.UserFilter) ([]entities.User, error) {
	tx := r.db.WithContext(ctx).Model(&userModel{})
	if filter.Role != "" {
		tx = tx.Where("role = ?", string(filter.Role))
	}
	if filter.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	var rows []userModel
	if err := tx.Order("created_at ASC").Order("user_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ChangeRole updates the role only while the user still holds the audited
// previous role. Leaving the editorial roles drops every journal binding.
func (r *Repository) ChangeRole(ctx context.Context, audit entities.RoleChangeAudit, events []ports.EventEnvelope) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&userModel{}).
			Where("user_id = ? AND role = ?", strings.TrimSpace(audit.UserID), string(audit.PreviousRole)).
			Updates(map[string]any{
				"role":       string(audit.NewRole),
				"updated_at": audit.ChangedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&userModel{}).Where("user_id = ?", strings.TrimSpace(audit.UserID)).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domainerrors.ErrUserNotFound
			}
			return fmt.Errorf("%w: user %s role changed concurrently", domainerrors.ErrConflict, audit.UserID)
		}
		history := roleAuditModelFromEntity(audit)
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		if !audit.NewRole.IsEditorial() {
			if err := tx.Where("user_id = ?", strings.TrimSpace(audit.UserID)).Delete(&editorshipModel{}).Error; err != nil {
				return err
			}
		}
		return insertOutboxTx(tx, events)
	})
}

func (r *Repository) ListEditorJournals(ctx context.Context, userID string) ([]string, error) {
	var journalIDs []string
	if err := r.db.WithContext(ctx).
		Model(&editorshipModel{}).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("journal_id ASC").
		Pluck("journal_id", &journalIDs).
		Error; err != nil {
		return nil, err
	}
	return journalIDs, nil
}

func (r *Repository) BindEditor(ctx context.Context, editorship entities.Editorship) error {
	row := editorshipModel{
		UserID:    strings.TrimSpace(editorship.UserID),
		JournalID: strings.TrimSpace(editorship.JournalID),
		BoundBy:   strings.TrimSpace(editorship.BoundBy),
		CreatedAt: editorship.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "journal_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) CreateJournal(ctx context.Context, journal entities.Journal) error {
	row := journalModel{
		JournalID: strings.TrimSpace(journal.JournalID),
		Code:      strings.TrimSpace(journal.Code),
		Name:      strings.TrimSpace(journal.Name),
		CreatedAt: journal.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: code %s", domainerrors.ErrDuplicateJournal, row.Code)
		}
		return err
	}
	return nil
}

func (r *Repository) GetJournal(ctx context.Context, journalID string) (entities.Journal, error) {
	var row journalModel
	err := r.db.WithContext(ctx).
		Where("journal_id = ?", strings.TrimSpace(journalID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Journal{}, domainerrors.ErrJournalNotFound
		}
		return entities.Journal{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateIssue(ctx context.Context, issue entities.Issue) error {
	row := issueModel{
		IssueID:     strings.TrimSpace(issue.IssueID),
		JournalID:   strings.TrimSpace(issue.JournalID),
		Volume:      issue.Volume,
		IssueNumber: issue.IssueNumber,
		Year:        issue.Year,
		IsSpecial:   issue.IsSpecial,
		Title:       strings.TrimSpace(issue.Title),
		CreatedAt:   issue.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var journalCount int64
		if err := tx.Model(&journalModel{}).Where("journal_id = ?", row.JournalID).Count(&journalCount).Error; err != nil {
			return err
		}
		if journalCount == 0 {
			return domainerrors.ErrJournalNotFound
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateIssue
			}
			return err
		}
		return nil
	})
}

func (r *Repository) GetIssue(ctx context.Context, issueID string) (entities.Issue, error) {
	var row issueModel
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", strings.TrimSpace(issueID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Issue{}, domainerrors.ErrIssueNotFound
		}
		return entities.Issue{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListIssues(ctx context.Context, journalID string) ([]entities.Issue, error) {
	var rows []issueModel
	if err := r.db.WithContext(ctx).
		Where("journal_id = ?", strings.TrimSpace(journalID)).
		Order("volume ASC").
		Order("issue_number ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && !row.ExpiresAt.UTC().After(now.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("idempotency_key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:             row.Key,
		Operation:       row.Operation,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		Operation:       strings.TrimSpace(record.Operation),
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash || !bytes.Equal(existing.ResponsePayload, row.ResponsePayload) {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox row %s", domainerrors.ErrConflict, outboxID)
	}
	return nil
}

func (r *Repository) MarkOutboxFailed(ctx context.Context, outboxID string, reason string, failedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ? AND status = ?", strings.TrimSpace(outboxID), outboxStatusPending).
		Updates(map[string]any{
			"status":     outboxStatusFailed,
			"last_error": reason,
			"failed_at":  failedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: outbox row %s", domainerrors.ErrConflict, outboxID)
	}
	return nil
}

func insertOutboxTx(tx *gorm.DB, events []ports.EventEnvelope) error {
	for _, envelope := range events {
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
	}
	return nil
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	createResult := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected == 0 {
		var existing outboxModel
		if err := tx.Select("payload").Where("outbox_id = ?", row.OutboxID).First(&existing).Error; err != nil {
			return err
		}
		if !bytes.Equal(existing.Payload, row.Payload) {
			return fmt.Errorf("%w: outbox event %s already queued", domainerrors.ErrConflict, row.OutboxID)
		}
	}
	return nil
}
