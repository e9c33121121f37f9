package http

import (
	"net/http"
	"slices"
	"time"

	"saldo/internal/core"
	"saldo/internal/services"
	"saldo/internal/targets"
)

type moneyDTO struct {
	Minor     int64  `json:"minor"`
	Formatted string `json:"formatted"`
}

func (s *Server) money(m core.Money) moneyDTO {
	return moneyDTO{Minor: m.Minor, Formatted: core.FormatMoney(m, s.exponent)}
}

type summaryResponse struct {
	Balance      moneyDTO   `json:"balance"`
	TotalExpense moneyDTO   `json:"totalExpense"`
	TotalSavings moneyDTO   `json:"totalSavings"`
	Count        int        `json:"transactionCount"`
	Version      uint64     `json:"version"`
	RefreshedAt  *time.Time `json:"refreshedAt,omitempty"`
	Loading      bool       `json:"loading"`
	LastError    string     `json:"lastError,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	st := s.state.Current()
	resp := summaryResponse{
		Balance:      s.money(st.Snapshot.Balance),
		TotalExpense: s.money(st.Snapshot.TotalExpense),
		TotalSavings: s.money(st.Snapshot.TotalSavings),
		Count:        st.Snapshot.Count,
		Version:      st.Version,
		Loading:      s.state.Loading(),
	}
	if !st.RefreshedAt.IsZero() {
		resp.RefreshedAt = &st.RefreshedAt
	}
	if err := s.state.Err(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type transactionDTO struct {
	ID             string    `json:"id"`
	Kind           core.Kind `json:"kind"`
	Amount         moneyDTO  `json:"amount"`
	CategoryID     int       `json:"categoryId"`
	CategoryLabel  string    `json:"categoryLabel"`
	CategoryDetail string    `json:"categoryDetail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (s *Server) transactionDTO(tx core.Transaction) transactionDTO {
	return transactionDTO{
		ID:             tx.ID,
		Kind:           tx.Kind,
		Amount:         s.money(tx.Amount),
		CategoryID:     tx.CategoryID,
		CategoryLabel:  tx.CategoryLabel,
		CategoryDetail: tx.CategoryDetail,
		CreatedAt:      tx.CreatedAt,
	}
}

// handleListTransactions returns transactions newest first, up to ?limit.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50, 1, 1000)
	if err != nil {
		writeServiceError(w, r, "list_transactions", err)
		return
	}
	txs := s.state.Current().Transactions
	out := make([]transactionDTO, 0, min(limit, len(txs)))
	for _, tx := range slices.Backward(txs) {
		if len(out) == limit {
			break
		}
		out = append(out, s.transactionDTO(tx))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create_transaction", err)
		return
	}
	amount, err := parseAmount(req.Amount, s.exponent)
	if err != nil {
		writeServiceError(w, r, "create_transaction", err)
		return
	}
	tx, err := s.transactions.CreateTransaction(r.Context(), services.NewTransaction{
		Kind:       core.Kind(sanitizeInput(req.Kind)),
		Amount:     amount,
		CategoryID: req.CategoryID,
		Detail:     sanitizeInput(req.Detail),
	})
	if err != nil {
		writeServiceError(w, r, "create_transaction", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, s.transactionDTO(tx))
}

type targetDTO struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Icon         string      `json:"icon,omitempty"`
	Color        string      `json:"color,omitempty"`
	TargetAmount moneyDTO    `json:"targetAmount"`
	Status       core.Status `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	Percent      int         `json:"percent"`
	CanComplete  bool        `json:"canComplete"`
}

func (s *Server) targetDTO(t core.Target, progress targets.Result) targetDTO {
	dto := targetDTO{
		ID:           t.ID,
		Name:         t.Name,
		Icon:         t.Icon,
		Color:        t.Color,
		TargetAmount: s.money(t.TargetAmount),
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		Percent:      progress.Percent,
		CanComplete:  progress.IsComplete,
	}
	if !t.CompletedAt.IsZero() {
		completed := t.CompletedAt
		dto.CompletedAt = &completed
	}
	return dto
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	views := s.targets.List()
	out := make([]targetDTO, 0, len(views))
	for _, v := range views {
		out = append(out, s.targetDTO(v.Target, v.Progress))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleCreateTarget(w http.ResponseWriter, r *http.Request) {
	var req createTargetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, "create_target", err)
		return
	}
	amount, err := parseAmount(req.Amount, s.exponent)
	if err != nil {
		writeServiceError(w, r, "create_target", err)
		return
	}
	t, err := s.targets.Create(r.Context(), req.PresetID, targets.NewTarget{
		Name:         sanitizeInput(req.Name),
		Icon:         sanitizeInput(req.Icon),
		Color:        sanitizeInput(req.Color),
		TargetAmount: amount,
	})
	if err != nil {
		writeServiceError(w, r, "create_target", err)
		return
	}
	progress, _ := targets.Progress(t, s.state.Current().Snapshot.Balance)
	writeJSON(w, r, http.StatusCreated, s.targetDTO(t, progress))
}

func (s *Server) handleCompleteTarget(w http.ResponseWriter, r *http.Request) {
	t, err := s.targets.Complete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, "complete_target", err)
		return
	}
	progress, _ := targets.Progress(t, s.state.Current().Snapshot.Balance)
	writeJSON(w, r, http.StatusOK, s.targetDTO(t, progress))
}

func (s *Server) handleDeleteTarget(w http.ResponseWriter, r *http.Request) {
	if err := s.targets.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, "delete_target", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
