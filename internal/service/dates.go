package service

import (
	"strings"
	"time"
)

const (
	// DateLayout 当前日期格式 YYYY-MM-DD
	DateLayout = "2006-01-02"
	// LegacyDateLayout 旧版日期格式 DD-MM-YYYY
	LegacyDateLayout = "02-01-2006"
	// DisplayDateLayout 展示格式
	DisplayDateLayout = "02 Jan 2006"
)

// ParseDate 解析两种输入格式的日期
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{DateLayout, LegacyDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationError("invalid date %q: expected YYYY-MM-DD or DD-MM-YYYY", value)
}

// FormatDisplay 按展示格式输出日期
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DisplayDateLayout)
}

// ParseDisplay 解析展示格式的日期
func ParseDisplay(value string) (time.Time, error) {
	return time.Parse(DisplayDateLayout, value)
}
