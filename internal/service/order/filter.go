package order

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/contoso/burger-api/internal/domain/model"
)

// ListFilter narrows an order listing. Statuses match case-insensitively.
// Last is a recency window of the form "<integer><m|h>"; anything else is
// ignored rather than rejected, so a bad value degrades to no time filter.
type ListFilter struct {
	Statuses []string
	Last     string
}

var lastPattern = regexp.MustCompile(`(?i)^(\d+)([mh])$`)

// ParseLastWindow converts a "<integer><m|h>" string to a duration. The
// boolean is false for malformed input.
func ParseLastWindow(last string) (time.Duration, bool) {
	m := lastPattern.FindStringSubmatch(last)
	if m == nil {
		return 0, false
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "m":
		return time.Duration(value) * time.Minute, true
	case "h":
		return time.Duration(value) * time.Hour, true
	}
	return 0, false
}

// FilterOrders applies the filter in memory; the inclusive cutoff keeps an
// order created exactly at the window boundary.
func FilterOrders(orders []model.Order, filter ListFilter) []model.Order {
	out := orders

	if len(filter.Statuses) > 0 {
		wanted := make(map[model.OrderStatus]bool, len(filter.Statuses))
		for _, raw := range filter.Statuses {
			if status, ok := model.ParseOrderStatus(raw); ok {
				wanted[status] = true
			}
		}
		filtered := make([]model.Order, 0, len(out))
		for _, o := range out {
			if wanted[o.Status] {
				filtered = append(filtered, o)
			}
		}
		out = filtered
	}

	if filter.Last != "" {
		if window, ok := ParseLastWindow(filter.Last); ok {
			cutoff := time.Now().Add(-window)
			filtered := make([]model.Order, 0, len(out))
			for _, o := range out {
				if !o.CreatedAt.Before(cutoff) {
					filtered = append(filtered, o)
				}
			}
			out = filtered
		}
	}

	return out
}
