package manuscriptservice

import (
	"log/slog"
	"time"

	httpadapter "ijaism/contexts/editorial-workflow/manuscript-service/adapters/http"
	"ijaism/contexts/editorial-workflow/manuscript-service/adapters/memory"
	"ijaism/contexts/editorial-workflow/manuscript-service/application/commands"
	"ijaism/contexts/editorial-workflow/manuscript-service/application/queries"
	"ijaism/contexts/editorial-workflow/manuscript-service/ports"
)

type Module struct {
	Handler        httpadapter.Handler
	BootstrapAdmin commands.BootstrapAdminUseCase
	Store          *memory.Store
}

type Dependencies struct {
	Articles           ports.ArticleRepository
	Reviews            ports.ReviewRepository
	Users              ports.UserRepository
	Journals           ports.JournalRepository
	Idempotency        ports.IdempotencyStore
	Clock              ports.Clock
	IDGenerator        ports.IDGenerator
	ReviewPeriod       time.Duration
	AutoAssignAttempts int
	IdempotencyTTL     time.Duration
	DOIPrefix          string
	Logger             *slog.Logger
}

func NewModule(deps Dependencies) Module {
	submitArticle := commands.SubmitArticleUseCase{
		Articles:       deps.Articles,
		Journals:       deps.Journals,
		Users:          deps.Users,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	resubmitArticle := commands.ResubmitArticleUseCase{
		Articles: deps.Articles,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	assignReviewers := commands.AssignReviewersUseCase{
		Articles:     deps.Articles,
		Reviews:      deps.Reviews,
		Users:        deps.Users,
		Clock:        deps.Clock,
		IDGen:        deps.IDGenerator,
		ReviewPeriod: deps.ReviewPeriod,
		Logger:       deps.Logger,
	}
	autoAssign := commands.AutoAssignReviewersUseCase{
		Articles:       deps.Articles,
		Reviews:        deps.Reviews,
		Users:          deps.Users,
		Idempotency:    deps.Idempotency,
		Clock:          deps.Clock,
		IDGen:          deps.IDGenerator,
		ReviewPeriod:   deps.ReviewPeriod,
		MaxAttempts:    deps.AutoAssignAttempts,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	reviewActions := commands.ReviewActionsUseCase{
		Articles: deps.Articles,
		Reviews:  deps.Reviews,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	decide := commands.DecideUseCase{
		Articles:  deps.Articles,
		Users:     deps.Users,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		DOIPrefix: deps.DOIPrefix,
		Logger:    deps.Logger,
	}
	assignIssue := commands.AssignIssueUseCase{
		Articles: deps.Articles,
		Journals: deps.Journals,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	recordPayment := commands.RecordAPCPaymentUseCase{
		Articles: deps.Articles,
		Users:    deps.Users,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	createJournal := commands.CreateJournalUseCase{
		Journals: deps.Journals,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	createIssue := commands.CreateIssueUseCase{
		Journals: deps.Journals,
		Users:    deps.Users,
		Clock:    deps.Clock,
		IDGen:    deps.IDGenerator,
		Logger:   deps.Logger,
	}
	bindEditor := commands.BindEditorUseCase{
		Journals: deps.Journals,
		Users:    deps.Users,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	createUser := commands.CreateUserUseCase{
		Users:  deps.Users,
		Clock:  deps.Clock,
		IDGen:  deps.IDGenerator,
		Logger: deps.Logger,
	}
	changeRole := commands.ChangeRoleUseCase{
		Users:  deps.Users,
		Clock:  deps.Clock,
		IDGen:  deps.IDGenerator,
		Logger: deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			SubmitArticle:    submitArticle,
			ResubmitArticle:  resubmitArticle,
			AssignReviewers:  assignReviewers,
			AutoAssign:       autoAssign,
			ReviewActions:    reviewActions,
			Decide:           decide,
			AssignIssue:      assignIssue,
			RecordAPCPayment: recordPayment,
			CreateJournal:    createJournal,
			CreateIssue:      createIssue,
			BindEditor:       bindEditor,
			CreateUser:       createUser,
			ChangeRole:       changeRole,
			GetArticle: queries.GetArticleUseCase{
				Articles: deps.Articles,
				Reviews:  deps.Reviews,
				Users:    deps.Users,
				Logger:   deps.Logger,
			},
			ListArticles: queries.ListArticlesUseCase{
				Articles: deps.Articles,
				Reviews:  deps.Reviews,
				Users:    deps.Users,
				Logger:   deps.Logger,
			},
			History: queries.HistoryUseCase{
				Articles: deps.Articles,
				Reviews:  deps.Reviews,
				Users:    deps.Users,
				Logger:   deps.Logger,
			},
			ListReviews: queries.ListReviewsUseCase{
				Articles: deps.Articles,
				Reviews:  deps.Reviews,
				Users:    deps.Users,
				Logger:   deps.Logger,
			},
			Recommendation: queries.RecommendationUseCase{
				Articles: deps.Articles,
				Reviews:  deps.Reviews,
				Users:    deps.Users,
				Logger:   deps.Logger,
			},
			ReviewerQueue: queries.ReviewerQueueUseCase{
				Reviews: deps.Reviews,
				Users:   deps.Users,
				Logger:  deps.Logger,
			},
			ListIssues: queries.ListIssuesUseCase{
				Journals: deps.Journals,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
		BootstrapAdmin: commands.BootstrapAdminUseCase{
			Users:  deps.Users,
			Clock:  deps.Clock,
			IDGen:  deps.IDGenerator,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Articles:           store,
		Reviews:            store,
		Users:              store,
		Journals:           store,
		Idempotency:        store,
		Clock:              store,
		IDGenerator:        store,
		ReviewPeriod:       commands.DefaultReviewPeriod,
		AutoAssignAttempts: 3,
		IdempotencyTTL:     7 * 24 * time.Hour,
		DOIPrefix:          "10.5555",
		Logger:             logger,
	})
	module.Store = store
	return module
}
