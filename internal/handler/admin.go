package handler

import (
	"fmt"
	"net/http"
)

func pluralDeleted(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("Deleted 1 %s.", noun)
	}
	return fmt.Sprintf("Deleted %d %ss.", n, noun)
}

func (h *Handler) DeleteAllAttendance(w http.ResponseWriter, r *http.Request) {
	n, err := h.attendance.DeleteAll(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, pluralDeleted(int(n), "attendance record"), map[string]any{"deletedCount": n})
}

func (h *Handler) DeleteAllLeaves(w http.ResponseWriter, r *http.Request) {
	n, err := h.leaves.DeleteAll(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, pluralDeleted(int(n), "leave request"), map[string]any{"deletedCount": n})
}
