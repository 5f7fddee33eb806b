package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ijaism/contexts/editorial-workflow/manuscript-service/domain/entities"
	domainerrors "ijaism/contexts/editorial-workflow/manuscript-service/domain/errors"
)

// MinRevisionCommentLength is the minimum comments-to-author length, in
// characters, for any revision request.
const MinRevisionCommentLength = 50

// EditorDecision is the explicit decision input of an editor.
type EditorDecision string

const (
	DecisionSendToReview EditorDecision = "send_to_review"
	DecisionAccept       EditorDecision = "accept"
	DecisionRevise       EditorDecision = "revise"
	DecisionReject       EditorDecision = "reject"
	DecisionPublish      EditorDecision = "publish"
)

func ParseEditorDecision(value string) (EditorDecision, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(DecisionSendToReview), "under_review":
		return DecisionSendToReview, true
	case string(DecisionAccept), "accepted":
		return DecisionAccept, true
	case string(DecisionRevise), "revision_requested":
		return DecisionRevise, true
	case string(DecisionReject), "rejected":
		return DecisionReject, true
	case string(DecisionPublish), "published":
		return DecisionPublish, true
	default:
		return "", false
	}
}

func (d EditorDecision) Target() entities.ArticleStatus {
	switch d {
	case DecisionSendToReview:
		return entities.ArticleStatusUnderReview
	case DecisionAccept:
		return entities.ArticleStatusAccepted
	case DecisionRevise:
		return entities.ArticleStatusRevisionRequested
	case DecisionReject:
		return entities.ArticleStatusRejected
	case DecisionPublish:
		return entities.ArticleStatusPublished
	default:
		return ""
	}
}

var transitionTable = map[entities.ArticleStatus][]entities.ArticleStatus{
	entities.ArticleStatusSubmitted: {
		entities.ArticleStatusUnderReview,
		entities.ArticleStatusRevisionRequested,
		entities.ArticleStatusAccepted,
		entities.ArticleStatusRejected,
	},
	entities.ArticleStatusUnderReview: {
		entities.ArticleStatusRevisionRequested,
		entities.ArticleStatusAccepted,
		entities.ArticleStatusRejected,
	},
	entities.ArticleStatusRevisionRequested: {
		entities.ArticleStatusResubmitted,
	},
	entities.ArticleStatusResubmitted: {
		entities.ArticleStatusRevisionRequested,
		entities.ArticleStatusAccepted,
		entities.ArticleStatusRejected,
	},
	entities.ArticleStatusAccepted: {
		entities.ArticleStatusPublished,
	},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from entities.ArticleStatus, to entities.ArticleStatus) bool {
	for _, target := range transitionTable[from] {
		if target == to {
			return true
		}
	}
	return false
}

// TransitionRequest carries the actor, the requested target and the payload
// the target's precondition reads.
type TransitionRequest struct {
	Actor            entities.Principal
	Facts            AccessFacts
	Target           entities.ArticleStatus
	Decision         EditorDecision
	CommentsToAuthor string
	CommentsToEditor string
	Reason           string
	DOI              string
	DOIPrefix        string
	Now              time.Time
}

// StatusChange describes an applied transition.
type StatusChange struct {
	From entities.ArticleStatus
	To   entities.ArticleStatus
	At   time.Time
}

type precondition func(article entities.Article, req TransitionRequest) error

var preconditions = map[entities.ArticleStatus]precondition{
	entities.ArticleStatusUnderReview:       func(entities.Article, TransitionRequest) error { return nil },
	entities.ArticleStatusAccepted:          requireAcceptDecision,
	entities.ArticleStatusPublished:         requirePayment,
	entities.ArticleStatusRevisionRequested: requireRevisionComments,
	entities.ArticleStatusRejected:          requireRejectionReason,
	entities.ArticleStatusResubmitted:       func(entities.Article, TransitionRequest) error { return nil },
}

func requireAcceptDecision(_ entities.Article, req TransitionRequest) error {
	if req.Decision != DecisionAccept {
		return fmt.Errorf("%w: explicit accept decision is required", domainerrors.ErrPrecondition)
	}
	return nil
}

func requirePayment(article entities.Article, req TransitionRequest) error {
	if article.IsAPCPaid || Can(req.Actor, ActionBypassPayment, req.Facts) {
		return nil
	}
	return domainerrors.ErrPaymentRequired
}

func requireRevisionComments(_ entities.Article, req TransitionRequest) error {
	return ValidateRevisionComments(req.CommentsToAuthor, req.CommentsToEditor, domainerrors.ErrPrecondition)
}

func requireRejectionReason(_ entities.Article, req TransitionRequest) error {
	if strings.TrimSpace(req.Reason) == "" {
		return fmt.Errorf("%w: rejection reason is required", domainerrors.ErrPrecondition)
	}
	return nil
}

// ValidateRevisionComments enforces that a revision request is justified.
// The comments to the author are measured as sent, in characters, and must
// not be blank. kind selects the sentinel the caller reports.
func ValidateRevisionComments(commentsToAuthor string, commentsToEditor string, kind error) error {
	if strings.TrimSpace(commentsToAuthor) == "" {
		return fmt.Errorf("%w: comments to author are required", kind)
	}
	if utf8.RuneCountInString(commentsToAuthor) < MinRevisionCommentLength {
		return fmt.Errorf("%w: comments to author must be at least %d characters", kind, MinRevisionCommentLength)
	}
	if strings.TrimSpace(commentsToEditor) == "" {
		return fmt.Errorf("%w: comments to editor are required", kind)
	}
	return nil
}

func actionFor(target entities.ArticleStatus) Action {
	switch target {
	case entities.ArticleStatusUnderReview:
		return ActionAssignReviewers
	case entities.ArticleStatusResubmitted:
		return ActionResubmitArticle
	case entities.ArticleStatusPublished:
		return ActionPublish
	default:
		return ActionDecide
	}
}

// ApplyTransition is the single place an article status changes. It checks
// the transition table, then the role authority, then the target's
// precondition, and returns the next article state with its version bumped.
func ApplyTransition(article entities.Article, req TransitionRequest) (entities.Article, StatusChange, error) {
	from := article.Status
	if !CanTransition(from, req.Target) {
		return entities.Article{}, StatusChange{}, fmt.Errorf("%w: %s -> %s", domainerrors.ErrInvalidTransition, from, req.Target)
	}
	if !Can(req.Actor, actionFor(req.Target), req.Facts) {
		return entities.Article{}, StatusChange{}, domainerrors.ErrAuthorization
	}
	if check, ok := preconditions[req.Target]; ok {
		if err := check(article, req); err != nil {
			return entities.Article{}, StatusChange{}, err
		}
	}

	now := req.Now.UTC()
	next := article
	next.Status = req.Target
	next.UpdatedAt = now
	next.Version = article.Version + 1

	switch req.Target {
	case entities.ArticleStatusAccepted:
		next.AcceptedAt = &now
		next.DecisionCommentsToAuthor = strings.TrimSpace(req.CommentsToAuthor)
		next.DecisionCommentsToEditor = strings.TrimSpace(req.CommentsToEditor)
	case entities.ArticleStatusPublished:
		next.PublishedAt = &now
		if strings.TrimSpace(next.DOI) == "" {
			next.DOI = strings.TrimSpace(req.DOI)
		}
		if next.DOI == "" {
			next.DOI = BuildDOI(req.DOIPrefix, article, now)
		}
	case entities.ArticleStatusRevisionRequested:
		next.DecisionCommentsToAuthor = strings.TrimSpace(req.CommentsToAuthor)
		next.DecisionCommentsToEditor = strings.TrimSpace(req.CommentsToEditor)
	case entities.ArticleStatusRejected:
		next.RejectionReason = strings.TrimSpace(req.Reason)
		next.DecisionCommentsToEditor = strings.TrimSpace(req.CommentsToEditor)
	case entities.ArticleStatusResubmitted:
		next.ReviewRound = article.ReviewRound + 1
	}

	return next, StatusChange{From: from, To: req.Target, At: now}, nil
}

// BuildDOI derives a DOI from the registrant prefix, the publication year and
// the article id.
func BuildDOI(prefix string, article entities.Article, publishedAt time.Time) string {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "10.5555"
	}
	suffix := strings.ReplaceAll(article.ArticleID, "-", "")
	if len(suffix) > 12 {
		suffix = suffix[:12]
	}
	return fmt.Sprintf("%s/ijaism.%d.%s", prefix, publishedAt.UTC().Year(), strings.ToLower(suffix))
}
