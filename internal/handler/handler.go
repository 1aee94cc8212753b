package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/ledger"
	"github.com/worksync-dev/worksync/backend/internal/token"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	DeleteUsersExcept(ctx context.Context, email string) ([]int64, error)
	GetMaxEmployeeNumber(ctx context.Context) (int, error)
}

type PasswordResetStore interface {
	CreatePasswordReset(ctx context.Context, req *domain.PasswordResetRequest) error
	GetPasswordResetByID(ctx context.Context, id int64) (*domain.PasswordResetRequest, error)
	ListPasswordResets(ctx context.Context, status *domain.PasswordResetStatus, page domain.PageRequest) ([]*domain.PasswordResetWithUser, int64, error)
	CompletePasswordReset(ctx context.Context, req *domain.PasswordResetRequest, passwordHash string) error
}

type SessionStore interface {
	Version(ctx context.Context, userID int64) (int64, error)
	Revoke(ctx context.Context, userID int64) error
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Dependencies struct {
	Users           UserStore
	PasswordResets  PasswordResetStore
	AttendanceStore ledger.AttendanceStore
	LeaveStore      ledger.LeaveStore
	Sessions        SessionStore
	Mailer          MailPublisher
}

type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	translator ut.Translator

	users      UserStore
	resets     PasswordResetStore
	attendance *ledger.Attendance
	leaves     *ledger.Leaves
	tokens     *token.Service
	sessions   SessionStore
	mailer     MailPublisher

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, deps Dependencies) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	loc, err := cfg.AttendanceLocation()
	if err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,

		users:      deps.Users,
		resets:     deps.PasswordResets,
		attendance: ledger.NewAttendance(deps.AttendanceStore, loc),
		leaves:     ledger.NewLeaves(deps.LeaveStore),
		tokens:     token.NewService(cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Second),
		sessions:   deps.Sessions,
		mailer:     deps.Mailer,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)
	h.Mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", TokenHeader},
		ExposedHeaders:   []string{TokenHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h.Mux.Get("/healthz", h.Health)

	// 头像文件
	h.Mux.Handle("/uploads/profiles/*", http.StripPrefix("/uploads/profiles/", http.FileServer(http.Dir(h.config.Upload.Dir))))

	h.Mux.Route("/api", func(r chi.Router) {
		// 认证相关
		r.Route("/auth", func(r chi.Router) {
			r.With(h.optionalAuth).Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/forgot-password", h.ForgotPassword)

			r.Group(func(r chi.Router) {
				r.Use(h.auth)
				r.Post("/logout", h.Logout)
				r.Route("/user", func(r chi.Router) {
					r.Use(h.myInfo)
					r.Get("/", h.GetMyInfo)
					r.Patch("/", h.UpdateMyInfo)
					r.Patch("/password", h.UpdateMyPassword)
				})
			})
		})

		// 以下 API 必须要在登录后才允许调用
		r.Group(func(r chi.Router) {
			r.Use(h.auth)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/mark", h.MarkAttendance)
				r.With(h.selfOrAdmin).Get("/today/{userId}", h.GetTodayAttendance)
				r.With(h.selfOrAdmin).Get("/user/{userId}", h.GetUserAttendance)
				r.With(h.RequiredRole(domain.RoleAdmin)).Get("/", h.GetAllAttendance)
				r.With(h.RequiredRole(domain.RoleAdmin)).Put("/{id}", h.CorrectAttendance)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.SubmitLeave)
				r.Get("/", h.GetLeaves)
				r.With(h.RequiredRole(domain.RoleAdmin)).Put("/{id}", h.DecideLeave)
				r.Delete("/{id}", h.CancelLeave)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.RequiredRole(domain.RoleAdmin))

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.GetAllUsers)
					r.Delete("/", h.DeleteAllUsers)
					r.Route("/{id}", func(r chi.Router) {
						r.Use(h.userInfo)
						r.Get("/", h.GetUserInfo)
						r.With(h.protectSuperAdmin).Put("/", h.UpdateUser)
						r.With(h.protectSuperAdmin).Delete("/", h.DeleteUser)
						r.With(h.protectSuperAdmin).Put("/reset-password", h.ResetUserPassword)
						r.With(h.protectSuperAdmin).Post("/upload-image", h.UploadProfileImage)
						r.With(h.protectSuperAdmin).Post("/image", h.UploadProfileImage)
					})
				})

				r.Get("/next-employee-id", h.GetNextEmployeeID)
				r.Delete("/attendance", h.DeleteAllAttendance)
				r.Delete("/leaves", h.DeleteAllLeaves)

				r.Route("/password-resets", func(r chi.Router) {
					r.Get("/", h.GetPasswordResets)
					r.Put("/{id}/complete", h.CompletePasswordReset)
				})
			})
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, r, "ok", nil)
}
