package utils

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ParseDate aceita datas completas (RFC3339) ou apenas a data (2006-01-02).
// Uma string vazia retorna a data zero.
func ParseDate(dateStr string) (*time.Time, error) {
	var date time.Time

	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return &date, nil
	}

	for _, layout := range dateLayouts {
		incomingDate, err := time.ParseInLocation(layout, dateStr, time.Local)
		if err == nil {
			date = incomingDate
			return &date, nil
		}
	}

	return nil, fmt.Errorf("data em formato inválido: %q", dateStr)
}
