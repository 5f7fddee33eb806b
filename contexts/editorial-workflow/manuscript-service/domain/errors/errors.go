package errors

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrAuthorization          = errors.New("actor is not authorized")
	ErrUnauthenticated        = errors.New("actor is not authenticated")
	ErrInvalidTransition      = errors.New("invalid article status transition")
	ErrPrecondition           = errors.New("transition precondition not met")
	ErrReviewerCapExceeded    = errors.New("reviewer cap exceeded")
	ErrDuplicateReviewer      = errors.New("reviewer already assigned to article")
	ErrDuplicateIssue         = errors.New("issue already exists for journal volume and number")
	ErrIssueLocked            = errors.New("article issue binding is locked")
	ErrPaymentRequired        = errors.New("article processing charge has not been paid")
	ErrNoEligibleReviewers    = errors.New("no eligible reviewers available")
	ErrConflict               = errors.New("concurrent modification conflict")
	ErrReviewAlreadyCompleted = errors.New("review already completed")
	ErrReviewClosed           = errors.New("review is no longer open")

	ErrArticleNotFound  = errors.New("article not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrJournalNotFound  = errors.New("journal not found")
	ErrIssueNotFound    = errors.New("issue not found")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrDuplicateJournal = errors.New("journal already exists")

	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
)
