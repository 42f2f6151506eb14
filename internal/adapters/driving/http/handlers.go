package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fieldline-labs/spechub-core/internal/core/domain"
)

// Search result caps for the GET endpoint
const (
	defaultSearchK = 10
	maxSearchK     = 50
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks database and lock backend connections)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "lock backend unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials or account disabled"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Authenticate(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrUnauthorized):
			writeError(w, http.StatusUnauthorized, "account disabled")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetMe godoc
// @Summary      Get current user
// @Description  Get the identity of the authenticated caller
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AuthContext
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, authCtx)
}

// Ask endpoint

// handleAsk godoc
// @Summary      Ask a question
// @Description  Answer a question against the indexed corpus. Deterministic section and table lookups are tried first; hybrid retrieval plus guarded synthesis handles the rest. Retrieval and synthesis failures degrade to weak answers rather than errors.
// @Tags         Ask
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.AskRequest  true  "Question with optional scope and citation count"
// @Success      200      {object}  domain.AskResult
// @Failure      400      {object}  ErrorResponse  "Empty query or unknown scope"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      503      {object}  ErrorResponse  "Index not built yet"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req domain.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Scope != "" && !domain.ValidScope(req.Scope) {
		writeError(w, http.StatusBadRequest, "unknown scope")
		return
	}

	result, err := s.askService.Ask(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, domain.ErrIndexNotReady):
			writeError(w, http.StatusServiceUnavailable, "index not ready")
		default:
			writeError(w, http.StatusInternalServerError, "ask failed")
		}
		return
	}

	domain.FillOpenURLs(result.Hits)
	if result.Table != nil && result.Table.Filename != "" {
		result.Table.OpenURL = domain.DocumentOpenURL(result.Table.Filename, result.Table.PageNumber)
	}
	writeJSON(w, http.StatusOK, result)
}

// Search endpoint

// searchResponse wraps raw retrieval results
// @Description Search results with an optional confidence grade
type searchResponse struct {
	Query      string            `json:"query"`
	Mode       string            `json:"mode" example:"hybrid" enums:"hybrid,lexical"`
	Confidence domain.Confidence `json:"confidence,omitempty"`
	Hits       []*domain.Hit     `json:"hits"`
}

// handleSearch godoc
// @Summary      Search the corpus
// @Description  Raw retrieval without answer synthesis. Hybrid mode fuses BM25 and vector results; lexical mode queries only the BM25 index.
// @Tags         Search
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  true   "Search query"
// @Param        k       query     int     false  "Result count (max 50)"
// @Param        scope   query     string  false  "Retrieval scope"  Enums(all, standspec, scheduling, mp, mp_only)
// @Param        mp_ids  query     string  false  "Comma-separated measure-pack IDs for mp scopes"
// @Param        mode    query     string  false  "Retrieval mode"  Enums(hybrid, lexical)
// @Success      200     {object}  searchResponse
// @Failure      400     {object}  ErrorResponse  "Missing query or unknown scope"
// @Failure      401     {object}  ErrorResponse  "Unauthorized"
// @Failure      503     {object}  ErrorResponse  "Index not built yet"
// @Failure      500     {object}  ErrorResponse  "Internal server error"
// @Router       /search [get]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	k := defaultSearchK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = parsed
		if k > maxSearchK {
			k = maxSearchK
		}
	}

	scope := domain.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = domain.ScopeAll
	}
	if !domain.ValidScope(scope) {
		writeError(w, http.StatusBadRequest, "unknown scope")
		return
	}

	filter := domain.ScopeFilter{Scope: scope}
	if raw := r.URL.Query().Get("mp_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.MPIDs = append(filter.MPIDs, id)
			}
		}
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "hybrid"
	}

	var (
		hits       []*domain.Hit
		confidence domain.Confidence
		err        error
	)
	switch mode {
	case "hybrid":
		hits, confidence, err = s.searchService.HybridSearch(r.Context(), query, k, filter)
	case "lexical":
		hits, err = s.searchService.LexicalSearch(r.Context(), query, k, filter)
	default:
		writeError(w, http.StatusBadRequest, "mode must be hybrid or lexical")
		return
	}
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotReady) {
			writeError(w, http.StatusServiceUnavailable, "index not ready")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if hits == nil {
		hits = []*domain.Hit{}
	}
	domain.FillOpenURLs(hits)
	writeJSON(w, http.StatusOK, searchResponse{
		Query:      query,
		Mode:       mode,
		Confidence: confidence,
		Hits:       hits,
	})
}

// Document endpoints

// handleListDocuments godoc
// @Summary      List documents
// @Description  List all indexed documents with chunk and table counts
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.DocumentSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	if docs == nil {
		docs = []*domain.DocumentSummary{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleGetDocument godoc
// @Summary      Get document
// @Description  Get a single document by ID
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      400  {object}  ErrorResponse  "Invalid document ID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := s.docService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

// Table endpoints

// handleGetTableMeta godoc
// @Summary      Get table metadata
// @Description  Get an extracted table's metadata, including its document and row count
// @Tags         Tables
// @Produce      json
// @Security     BearerAuth
// @Param        uid  path      string  true  "Table UID"
// @Success      200  {object}  domain.TableMeta
// @Failure      400  {object}  ErrorResponse  "Missing table UID"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "Table not found"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /tables/{uid} [get]
func (s *Server) handleGetTableMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := s.tableService.Meta(r.Context(), r.PathValue("uid"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "missing table uid")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "table not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get table")
		}
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// handleGetTableRows godoc
// @Summary      Get table rows
// @Description  Get one page of a table's rows with display-shaped rendering
// @Tags         Tables
// @Produce      json
// @Security     BearerAuth
// @Param        uid     path      string  true   "Table UID"
// @Param        limit   query     int     false  "Rows per page"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  domain.TableRowsPage
// @Failure      400     {object}  ErrorResponse  "Missing table UID"
// @Failure      401     {object}  ErrorResponse  "Unauthorized"
// @Failure      404     {object}  ErrorResponse  "Table not found"
// @Failure      500     {object}  ErrorResponse  "Internal server error"
// @Router       /tables/{uid}/rows [get]
func (s *Server) handleGetTableRows(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	page, err := s.tableService.Rows(r.Context(), r.PathValue("uid"), limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "missing table uid")
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "table not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to get table rows")
		}
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Index endpoints

// handleRebuildIndex godoc
// @Summary      Rebuild indexes
// @Description  Rebuild chunks, tables, the lexical index and the vector index from stored pages (admin only). Runs to completion; concurrent rebuilds are rejected.
// @Tags         Index
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.RebuildStats
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Failure      409  {object}  ErrorResponse  "Rebuild already in progress"
// @Failure      500  {object}  ErrorResponse  "Internal server error"
// @Router       /index/rebuild [post]
func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	stats, err := s.indexService.RebuildAll(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRebuildInProgress) {
			writeError(w, http.StatusConflict, "rebuild already in progress")
			return
		}
		writeError(w, http.StatusInternalServerError, "rebuild failed")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
