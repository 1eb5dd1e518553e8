package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
	"github.com/okian/dojo/internal/domain/ranking"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// PicksHandler handles pick creation, reveals and received-pick views.
type PicksHandler struct {
	deps Dependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps Dependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// HandleCreate handles POST /picks.
func (h *PicksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	picker, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req createPickRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	if strings.TrimSpace(req.QuestionSetID) == "" || strings.TrimSpace(req.QuestionID) == "" {
		writeServiceError(w, fmt.Errorf("%w: question_set_id and question_id are required", ErrBadRequest))
		return
	}
	res, err := h.deps.CreatePick(r.Context(), service.CreatePickCommand{
		PickerID:        picker,
		QuestionSheetID: model.QuestionSheetID(req.QuestionSheetID),
		QuestionSetID:   model.QuestionSetID(req.QuestionSetID),
		QuestionID:      model.QuestionID(req.QuestionID),
		PickedID:        model.MemberID(req.PickedID),
		Skip:            req.Skip,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createPickResponse{
		PickID:     string(res.Pick.ID),
		PickedID:   string(res.Pick.PickedID),
		CoinEarned: res.CoinEarned,
		Balance:    res.Balance.Amount,
	})
}

// HandleOpen handles POST /picks/{pickID}/open.
func (h *PicksHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	requester, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var req openPickRequest
	if err := decode(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	item, err := model.ParseRevealItem(req.Item)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.OpenPick(r.Context(), service.OpenPickCommand{
		PickID:      model.PickID(r.PathValue("pickID")),
		RequesterID: requester,
		Item:        item,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOpenPickResponse(res))
}

// HandleReceived handles GET /picks/received?sort=&page=&size=.
func (h *PicksHandler) HandleReceived(w http.ResponseWriter, r *http.Request) {
	member, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sort, err := ranking.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.ReceivedPicks(r.Context(), member, sort, page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPageResponse(res, newReceivedPickResponse))
}

// HandleReceivedDetail handles GET /picks/received/questions/{questionID}.
func (h *PicksHandler) HandleReceivedDetail(w http.ResponseWriter, r *http.Request) {
	member, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	page, size, err := pageParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := h.deps.ReceivedPickDetail(r.Context(), member, model.QuestionID(r.PathValue("questionID")), page, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receivedDetailResponse{
		QuestionID:             string(res.QuestionID),
		QuestionContent:        res.QuestionContent,
		QuestionEmojiImageURL:  res.QuestionEmojiImageURL,
		TotalReceivedPickCount: res.TotalReceivedPickCount,
		Picks:                  newPageResponse(res.Picks, newPickDetailResponse),
	})
}

// HandleNextTime handles GET /picks/next-time.
func (h *PicksHandler) HandleNextTime(w http.ResponseWriter, r *http.Request) {
	next, err := h.deps.NextPickTime(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextTimeResponse{NextPickTime: next})
}

// HandleNextQuestionSet handles GET /question-sets/next.
func (h *PicksHandler) HandleNextQuestionSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.deps.NextQuestionSet(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuestionSetResponse(set))
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// pageParams reads 0-based page and size; absent values mean page 0 and the
// service's default size.
func pageParams(r *http.Request) (page, size int, err error) {
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 0 {
			return 0, 0, fmt.Errorf("%w: invalid page %q", ErrBadRequest, v)
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil || size < 1 {
			return 0, 0, fmt.Errorf("%w: invalid size %q", ErrBadRequest, v)
		}
	}
	return page, size, nil
}
