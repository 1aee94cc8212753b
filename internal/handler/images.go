package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/worksync-dev/worksync/backend/internal/domain"
)

const profileImageURLPrefix = "/uploads/profiles/"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadProfileImage 保存新头像并删除旧文件
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxBytes)
	file, _, err := r.FormFile("profileImage")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorResponse(w, r, http.StatusBadRequest, "Image is too large")
			return
		}
		h.errorResponse(w, r, http.StatusBadRequest, "profileImage file is required")
		return
	}
	defer file.Close()

	// 按内容判断类型，不信任客户端提供的文件名
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		h.errorResponse(w, r, http.StatusBadRequest, "Invalid image file")
		return
	}
	ext, ok := imageExtensions[http.DetectContentType(head[:n])]
	if !ok {
		h.errorResponse(w, r, http.StatusBadRequest, "Only JPEG, PNG, GIF and WebP images are allowed")
		return
	}

	if err := os.MkdirAll(h.config.Upload.Dir, 0o755); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	name := uuid.NewString() + ext
	path := filepath.Join(h.config.Upload.Dir, name)
	dst, err := os.Create(path)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if _, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), file)); err != nil {
		dst.Close()
		os.Remove(path)
		h.internalServerError(w, r, err)
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		h.internalServerError(w, r, err)
		return
	}

	old := user.ProfileImage
	url := profileImageURLPrefix + name
	user.ProfileImage = &url

	if err := h.users.UpdateUser(r.Context(), user); err != nil {
		os.Remove(path)
		h.domainError(w, r, err)
		return
	}

	if old != nil && strings.HasPrefix(*old, profileImageURLPrefix) {
		oldPath := filepath.Join(h.config.Upload.Dir, filepath.Base(*old))
		if err := os.Remove(oldPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("删除旧头像失败", "path", oldPath, "error", err)
		}
	}

	h.successResponse(w, r, "Profile image uploaded successfully", user)
}
