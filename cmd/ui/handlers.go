package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"trading-journal/internal/journal"
	"trading-journal/internal/table"
	"trading-journal/internal/tasks"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	store  journal.Store
	runner *tasks.Runner
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, store journal.Store, runner *tasks.Runner) *APIHandler {
	return &APIHandler{log: log, store: store, runner: runner}
}

// statusSheets are the sheets reported by the status endpoint.
var statusSheets = []string{
	journal.SheetJournal, journal.SheetTradeLog, journal.SheetRetro,
	journal.SheetIdeas, journal.SheetOnePager,
}

// StatusHandler reports per-sheet row counts.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int, len(statusSheets))
	for _, sheet := range statusSheets {
		t, err := h.store.ReadAll(sheet)
		if err != nil {
			h.log.Error("Failed to read sheet", zap.String("sheet", sheet), zap.Error(err))
			http.Error(w, "Failed to read workbook", http.StatusInternalServerError)
			return
		}
		counts[sheet] = len(t.Rows)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(counts)
}

// RetroEntry is one pending retrospective in the /api/retros response.
type RetroEntry struct {
	TradeID  string `json:"trade_id"`
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy"`
	DueDate  string `json:"due_date"`
	Overdue  bool   `json:"overdue"`
}

// RetrosHandler returns every scheduled retrospective, overdue first.
func (h *APIHandler) RetrosHandler(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.ReadAll(journal.SheetRetro)
	if err != nil {
		h.log.Error("Failed to read retros", zap.Error(err))
		http.Error(w, "Failed to read retros", http.StatusInternalServerError)
		return
	}

	entries := make([]RetroEntry, 0, len(t.Rows))
	var overdue []RetroEntry
	for _, row := range t.Rows {
		e := RetroEntry{
			TradeID:  table.String(t.Value(row, "Trade ID")),
			Symbol:   table.String(t.Value(row, "Symbol")),
			Strategy: table.String(t.Value(row, "Strategy")),
			DueDate:  table.String(t.Value(row, "Retro Due Date")),
		}
		e.Overdue = e.DueDate == journal.DueSentinel
		if e.Overdue {
			overdue = append(overdue, e)
		} else {
			entries = append(entries, e)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(append(overdue, entries...))
}

// TaskHandler runs a named task. Tasks are serialized by the runner, so a
// long import blocks a concurrent digest rather than corrupting the file.
func (h *APIHandler) TaskHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/tasks/")

	if err := h.runner.Run(name); err != nil {
		if errors.Is(err, tasks.ErrUnknownTask) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("Task failed", zap.String("task", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"task": name, "status": "completed"})
}
