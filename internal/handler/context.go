package handler

import (
	"net/http"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

type ContextKey string

var (
	IdentityCtxKey ContextKey = "identity"
	MyInfoCtx      ContextKey = "myInfo"
	UserInfoCtx    ContextKey = "userInfo"

	// 路由参数 {userId} 解析后的值
	TargetUserIDCtx ContextKey = "targetUserID"
)

// identity 只能在 auth 中间件之后调用
func identity(r *http.Request) domain.Identity {
	return r.Context().Value(IdentityCtxKey).(domain.Identity)
}

func optionalIdentity(r *http.Request) (domain.Identity, bool) {
	id, ok := r.Context().Value(IdentityCtxKey).(domain.Identity)
	return id, ok
}
