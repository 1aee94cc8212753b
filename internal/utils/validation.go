package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/domain"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD or RFC 3339")

// ParseDate 接受 YYYY-MM-DD 或 RFC 3339 格式，前者按 UTC 解释
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDate
}

// ParseEndDate 用于区间的结束边界，只有日期时取当天的最后一刻
func ParseEndDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Microsecond), nil
	}
	return ParseDate(s)
}

// ParsePageRequest 对非法或缺省的分页参数使用默认值，limit 不超过 maxLimit
func ParsePageRequest(pageParam, limitParam string, defaultLimit, maxLimit int) domain.PageRequest {
	page, err := strconv.Atoi(pageParam)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return domain.PageRequest{Page: page, Limit: limit}
}
