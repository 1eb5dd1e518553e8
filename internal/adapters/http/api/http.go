// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/ranking"
)

// memberHeader carries the authenticated caller's member id.
const memberHeader = "X-Member-Id"

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	CreatePick(ctx context.Context, cmd service.CreatePickCommand) (service.CreatePickResult, error)
	OpenPick(ctx context.Context, cmd service.OpenPickCommand) (service.OpenPickResult, error)
	ReceivedPicks(ctx context.Context, member model.MemberID, sort ranking.Sort, page, size int) (service.Page[service.ReceivedPick], error)
	ReceivedPickDetail(ctx context.Context, member model.MemberID, question model.QuestionID, page, size int) (service.ReceivedPickDetail, error)
	MySpace(ctx context.Context, member model.MemberID) (service.Space, error)
	FriendSpace(ctx context.Context, friend model.MemberID) (service.Space, error)
	Coin(ctx context.Context, member model.MemberID) (service.Coin, error)
	NextPickTime(ctx context.Context) (time.Time, error)
	NextQuestionSet(ctx context.Context) (model.QuestionSet, error)
	GetStats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	picksHandler   *PicksHandler
	membersHandler *MembersHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		picksHandler:   NewPicksHandler(deps),
		membersHandler: NewMembersHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())

	mux.HandleFunc("POST /picks", MetricsMiddleware(s.picksHandler.HandleCreate, "create_pick"))
	mux.HandleFunc("POST /picks/{pickID}/open", MetricsMiddleware(s.picksHandler.HandleOpen, "open_pick"))
	mux.HandleFunc("GET /picks/received", MetricsMiddleware(s.picksHandler.HandleReceived, "received_picks"))
	mux.HandleFunc("GET /picks/received/questions/{questionID}", MetricsMiddleware(s.picksHandler.HandleReceivedDetail, "received_pick_detail"))
	mux.HandleFunc("GET /picks/next-time", MetricsMiddleware(s.picksHandler.HandleNextTime, "next_pick_time"))
	mux.HandleFunc("GET /question-sets/next", MetricsMiddleware(s.picksHandler.HandleNextQuestionSet, "next_question_set"))

	mux.HandleFunc("GET /members/me/space/picks", MetricsMiddleware(s.membersHandler.HandleMySpace, "my_space"))
	mux.HandleFunc("GET /members/me/coin", MetricsMiddleware(s.membersHandler.HandleCoin, "coin"))
	mux.HandleFunc("GET /members/{memberID}/space/picks", MetricsMiddleware(s.membersHandler.HandleFriendSpace, "friend_space"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service error onto its status and code.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// callerID returns the member id from the identity header.
func callerID(r *http.Request) (model.MemberID, error) {
	id := r.Header.Get(memberHeader)
	if id == "" {
		return "", ErrMissingMember
	}
	return model.MemberID(id), nil
}
