package web

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aynu/chartcore/internal/domain"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Store().Snapshot()
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListPairs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.Pairs())
}

func (s *Server) handlePairConfig(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	cfg, ok := domain.LookupPair(symbol)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown pair")
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSetPair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.engine.SetPair(r.Context(), req.Symbol); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.viewports.Load(r.Context(), req.Symbol)
	s.logger.Info("pair switched", zap.String("pair", req.Symbol))
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pair":     req.Symbol,
		"viewport": s.viewports.State(),
	})
}

func (s *Server) handleSetTimeframe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Timeframe string `json:"timeframe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := s.engine.SetTimeframe(r.Context(), req.Timeframe); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Info("timeframe switched", zap.String("timeframe", req.Timeframe))
	s.writeJSON(w, http.StatusOK, map[string]string{"timeframe": req.Timeframe})
}

func (s *Server) handleListDrawings(w http.ResponseWriter, r *http.Request) {
	pair := r.URL.Query().Get("pair")
	if pair == "" {
		pair = s.engine.Store().Pair()
	}
	list, err := s.drawings.ListDrawings(r.Context(), pair)
	if err != nil {
		s.logger.Error("list drawings", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	if list == nil {
		list = []domain.DrawingObject{}
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveDrawing(w http.ResponseWriter, r *http.Request) {
	var d domain.DrawingObject
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if d.Pair == "" {
		d.Pair = s.engine.Store().Pair()
	}
	if _, ok := domain.LookupPair(d.Pair); !ok {
		s.writeError(w, http.StatusBadRequest, "unknown pair")
		return
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := s.drawings.SaveDrawing(r.Context(), &d); err != nil {
		s.logger.Error("save drawing", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDrawing(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "missing id")
		return
	}
	if err := s.drawings.DeleteDrawing(r.Context(), id); err != nil {
		s.logger.Error("delete drawing", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetViewport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.viewports.State())
}

func (s *Server) handlePutViewport(w http.ResponseWriter, r *http.Request) {
	var v domain.ViewportState
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	clamped := s.viewports.Set(v)
	if err := s.viewports.Flush(r.Context()); err != nil {
		s.logger.Error("persist viewport", zap.Error(err))
	}
	s.writeJSON(w, http.StatusOK, clamped)
}
