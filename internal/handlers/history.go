package handlers

import (
	"sort"
	"strings"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/tracker"
)

// HistoryItem represents an expense in the history view.
type HistoryItem struct {
	tracker.HistoryEntry
	CategoryStyle CategoryStyle
}

// CategorySummary is a category with its spending statistics.
type CategorySummary struct {
	Category      string
	Total         float64
	Count         int
	Percentage    float64
	CategoryStyle CategoryStyle
}

// HistoryViewModel is the data passed to the history template.
type HistoryViewModel struct {
	UserID     string
	Total      float64
	Expenses   []HistoryItem
	Categories []CategorySummary
}

func newHistoryViewModel(result *tracker.HistoryResult) HistoryViewModel {
	vm := HistoryViewModel{
		UserID:   result.UserID,
		Expenses: make([]HistoryItem, 0, len(result.Expenses)),
	}

	// Categories are grouped case-insensitively under the first spelling seen.
	byKey := make(map[string]*CategorySummary)
	var order []string
	for _, e := range result.Expenses {
		vm.Total += e.Amount
		vm.Expenses = append(vm.Expenses, HistoryItem{
			HistoryEntry:  e,
			CategoryStyle: getCategoryStyle(e.Category),
		})

		key := strings.ToLower(e.Category)
		s, ok := byKey[key]
		if !ok {
			s = &CategorySummary{Category: e.Category, CategoryStyle: getCategoryStyle(e.Category)}
			byKey[key] = s
			order = append(order, key)
		}
		s.Total += e.Amount
		s.Count++
	}

	vm.Categories = make([]CategorySummary, 0, len(order))
	for _, key := range order {
		s := byKey[key]
		if vm.Total > 0 {
			s.Percentage = (s.Total / vm.Total) * 100
		}
		vm.Categories = append(vm.Categories, *s)
	}
	sort.SliceStable(vm.Categories, func(i, j int) bool {
		return vm.Categories[i].Total > vm.Categories[j].Total
	})
	return vm
}
