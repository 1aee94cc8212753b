package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"github.com/worksync-dev/worksync/backend/internal/token"
)

// TokenHeader 携带原始令牌，不使用 Authorization 的 Bearer 方案
const TokenHeader = "auth-token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authenticate 校验令牌签名以及会话版本，任何失败都不向客户端说明原因
func (h *Handler) authenticate(r *http.Request) (domain.Identity, error) {
	id, version, err := h.tokens.Verify(r.Header.Get(TokenHeader))
	if err != nil {
		return domain.Identity{}, err
	}

	current, err := h.sessions.Version(r.Context(), id.UserID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("load session version: %w", err)
	}
	if current != version {
		return domain.Identity{}, errRevoked
	}

	return id, nil
}

var errRevoked = errors.New("token revoked")

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.authenticate(r)
		if err != nil {
			if isAuthFailure(err) {
				h.unauthorized(w, r)
			} else {
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), IdentityCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuth 在带有有效令牌时附加身份，否则按匿名请求继续处理
func (h *Handler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(TokenHeader) == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := h.authenticate(r)
		if err != nil {
			if isAuthFailure(err) {
				h.unauthorized(w, r)
			} else {
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), IdentityCtxKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		myInfo, err := h.users.GetUserByID(r.Context(), identity(r).UserID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// 账户已被删除
				h.unauthorized(w, r)
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, identity(r).Role) {
				h.forbidden(w, r, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// selfOrAdmin 要求 {userId} 是调用者本人，管理员除外
func (h *Handler) selfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "userId")
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
			return
		}

		id := identity(r)
		if !id.IsAdmin() && id.UserID != userID {
			h.forbidden(w, r, "Access denied")
			return
		}

		ctx := context.WithValue(r.Context(), TargetUserIDCtx, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "id")
		if err != nil {
			h.errorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
			return
		}

		user, err := h.users.GetUserByID(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				h.notFound(w, r, "User not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// protectSuperAdmin 禁止普通管理员修改超级管理员账户
func (h *Handler) protectSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if h.isSuperAdminAccount(user) && !identity(r).SuperAdmin {
			h.forbidden(w, r, "Only the super admin can modify the super admin account")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) isSuperAdminAccount(user *domain.User) bool {
	return user.Role == domain.RoleAdmin && user.Email == domain.NormalizeEmail(h.config.SuperAdminEmail)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func isAuthFailure(err error) bool {
	return errors.Is(err, errRevoked) || errors.Is(err, token.ErrInvalidToken)
}
