package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orchestrator/pkg/archive"
	"orchestrator/pkg/archive/sqlitemirror"
	"orchestrator/pkg/casestore"
	"orchestrator/pkg/engine"
	"orchestrator/pkg/logx"
	"orchestrator/pkg/proto"
	"orchestrator/pkg/transport/wstransport"
)

// server wires the Case Store, Conversation Archive, LLM Decider, and Agent
// Loop Engine behind an HTTP mux: a REST endpoint opens new cases, and a
// WebSocket endpoint per case id carries the Surface Transport wire protocol
// (spec §4.6/§4.7).
type server struct {
	store *casestore.Store
	eng   *engine.Engine
	log   *logx.Logger

	upgrader websocket.Upgrader
}

func newServer(cfg envConfig, deciderFactory engine.DeciderFactory) (*server, error) {
	arc := archive.New(cfg.ArchiveRoot)
	archiveFn := arc.Write

	log := logx.NewLogger("caseagentd")
	if cfg.SQLiteMirrorPath != "" {
		mirror, err := sqlitemirror.Open(cfg.SQLiteMirrorPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite mirror: %w", err)
		}
		archiveFn = func(c *proto.Case) error {
			if err := arc.Write(c); err != nil {
				log.Warn("archive write failed for case %s: %v", c.ID, err)
			}
			return mirror.Write(c)
		}
	}

	store := casestore.New(archiveFn)
	eng := engine.New(store, deciderFactory)

	return &server{
		store: store,
		eng:   eng,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}, nil
}

func (s *server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/cases", s.handleCreateCase)
	mux.HandleFunc("/cases/", s.handleCaseSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

type createCaseRequest struct {
	CustomerName    string   `json:"customerName"`
	Issue           string   `json:"issue"`
	OrderID         string   `json:"orderId"`
	DesiredOutcome  string   `json:"desiredOutcome"`
	AttachmentPaths []string `json:"attachmentPaths"`
}

func (s *server) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	c := s.store.Create(proto.CaseCreateInput{
		CustomerName:    req.CustomerName,
		Issue:           req.Issue,
		OrderID:         req.OrderID,
		DesiredOutcome:  req.DesiredOutcome,
		AttachmentPaths: req.AttachmentPaths,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(c)
}

// handleCaseSocket upgrades /cases/{id}/socket to a WebSocket carrying the
// Surface Transport protocol and starts the case's Agent Loop session.
func (s *server) handleCaseSocket(w http.ResponseWriter, r *http.Request) {
	caseID := caseIDFromPath(r.URL.Path)
	if caseID == "" {
		http.Error(w, "missing case id", http.StatusBadRequest)
		return
	}

	c, err := s.store.Get(caseID)
	if err != nil {
		http.Error(w, "unknown case", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed for case %s: %v", caseID, err)
		return
	}

	caseCtx := proto.NewCaseContext(c.ID, c.CustomerName, c.Issue, c.DesiredOutcome, c.OrderID, len(c.AttachmentPaths) > 0)
	tr := wstransport.New(conn, s.eng)

	if _, err := s.store.UpdateStatus(c.ID, proto.CaseRunning); err != nil {
		s.log.Warn("update_status(running) failed for case %s: %v", c.ID, err)
	}
	s.eng.StartSession(c.ID, tr, caseCtx)

	if err := tr.Serve(context.Background()); err != nil {
		s.log.Warn("surface transport closed for case %s: %v", caseID, err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func caseIDFromPath(path string) string {
	const prefix = "/cases/"
	if len(path) <= len(prefix) {
		return ""
	}
	rest := path[len(prefix):]
	for i, r := range rest {
		if r == '/' {
			return rest[:i]
		}
	}
	return rest
}
