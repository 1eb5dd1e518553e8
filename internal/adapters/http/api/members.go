package api

import (
	"net/http"

	"github.com/okian/dojo/internal/domain/model"
)

// MembersHandler handles space and coin views.
type MembersHandler struct {
	deps Dependencies
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(deps Dependencies) *MembersHandler {
	return &MembersHandler{deps: deps}
}

// HandleMySpace handles GET /members/me/space/picks.
func (h *MembersHandler) HandleMySpace(w http.ResponseWriter, r *http.Request) {
	member, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	space, err := h.deps.MySpace(r.Context(), member)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpaceResponse(space))
}

// HandleFriendSpace handles GET /members/{memberID}/space/picks.
func (h *MembersHandler) HandleFriendSpace(w http.ResponseWriter, r *http.Request) {
	if _, err := callerID(r); err != nil {
		writeServiceError(w, err)
		return
	}
	space, err := h.deps.FriendSpace(r.Context(), model.MemberID(r.PathValue("memberID")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSpaceResponse(space))
}

// HandleCoin handles GET /members/me/coin.
func (h *MembersHandler) HandleCoin(w http.ResponseWriter, r *http.Request) {
	member, err := callerID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	coin, err := h.deps.Coin(r.Context(), member)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCoinResponse(coin))
}
