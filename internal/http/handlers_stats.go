package http

import (
	"fmt"
	"net/http"

	"saldo/internal/core"
)

type monthDTO struct {
	Month   string   `json:"month"` // YYYY-MM
	Income  moneyDTO `json:"income"`
	Expense moneyDTO `json:"expense"`
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r, "months", 6, 1, 24)
	if err != nil {
		writeServiceError(w, r, "monthly_stats", err)
		return
	}
	totals := s.state.MonthlyTotals(months)
	out := make([]monthDTO, 0, len(totals))
	for _, m := range totals {
		out = append(out, monthDTO{
			Month:   fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)),
			Income:  s.money(m.Income),
			Expense: s.money(m.Expense),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

type categoryShareDTO struct {
	Label   string   `json:"label"`
	Amount  moneyDTO `json:"amount"`
	Percent string   `json:"percent"`
	Icon    string   `json:"icon"`
	Color   string   `json:"color"`
}

func (s *Server) handleExpenseStats(w http.ResponseWriter, r *http.Request) {
	dist := s.state.ExpenseDistribution()
	out := make([]categoryShareDTO, 0, len(dist))
	for _, c := range dist {
		out = append(out, categoryShareDTO{
			Label:   c.Label,
			Amount:  s.money(c.Amount),
			Percent: c.Percent.StringFixed(1),
			Icon:    c.Icon,
			Color:   c.Color,
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

type categoryDTO struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Other bool   `json:"other,omitempty"`
}

type categoriesResponse struct {
	Income  []categoryDTO `json:"income"`
	Expense []categoryDTO `json:"expense"`
	Targets []categoryDTO `json:"targets"`
}

func handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, categoriesResponse{
		Income:  categoryDTOs(core.Categories(core.Credit)),
		Expense: categoryDTOs(core.Categories(core.Debit)),
		Targets: categoryDTOs(core.TargetPresets()),
	})
}

func categoryDTOs(cs []core.Category) []categoryDTO {
	out := make([]categoryDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryDTO{ID: c.ID, Label: c.Label, Icon: c.Icon, Color: c.Color, Other: c.Other})
	}
	return out
}
