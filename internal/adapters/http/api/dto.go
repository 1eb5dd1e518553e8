package api

import (
	"time"

	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/domain/model"
)

type createPickRequest struct {
	QuestionSheetID string `json:"question_sheet_id"`
	QuestionSetID   string `json:"question_set_id"`
	QuestionID      string `json:"question_id"`
	PickedID        string `json:"picked_id"`
	Skip            bool   `json:"skip"`
}

type createPickResponse struct {
	PickID     string `json:"pick_id"`
	PickedID   string `json:"picked_id"`
	CoinEarned int64  `json:"coin_earned"`
	Balance    int64  `json:"balance"`
}

type openPickRequest struct {
	Item string `json:"item"`
}

type openPickResponse struct {
	PickID   string   `json:"pick_id"`
	Item     string   `json:"item"`
	Value    string   `json:"value"`
	ImageURL string   `json:"image_url,omitempty"`
	Cost     int64    `json:"cost"`
	Balance  int64    `json:"balance"`
	Opened   []string `json:"opened"`
}

func newOpenPickResponse(res service.OpenPickResult) openPickResponse {
	opened := make([]string, 0, len(model.RevealItems))
	for _, item := range res.Pick.Opened.Items() {
		opened = append(opened, item.String())
	}
	return openPickResponse{
		PickID:   string(res.Pick.ID),
		Item:     res.Revealed.Item.String(),
		Value:    res.Revealed.Value,
		ImageURL: res.Revealed.ImageURL,
		Cost:     res.Cost,
		Balance:  res.Balance.Amount,
		Opened:   opened,
	}
}

type pageResponse[T any] struct {
	Items         []T  `json:"items"`
	Page          int  `json:"page"`
	Size          int  `json:"size"`
	TotalPage     int  `json:"total_page"`
	TotalElements int  `json:"total_elements"`
	IsFirst       bool `json:"is_first"`
	IsLast        bool `json:"is_last"`
}

func newPageResponse[S, T any](p service.Page[S], conv func(S) T) pageResponse[T] {
	items := make([]T, len(p.Items))
	for i, it := range p.Items {
		items[i] = conv(it)
	}
	return pageResponse[T]{
		Items:         items,
		Page:          p.Page,
		Size:          p.Size,
		TotalPage:     p.TotalPages,
		TotalElements: p.TotalElements,
		IsFirst:       p.IsFirst,
		IsLast:        p.IsLast,
	}
}

type receivedPickResponse struct {
	PickID                 string    `json:"pick_id"`
	QuestionID             string    `json:"question_id"`
	QuestionContent        string    `json:"question_content"`
	QuestionEmojiImageURL  string    `json:"question_emoji_image_url"`
	LatestPickedAt         time.Time `json:"latest_picked_at"`
	TotalReceivedPickCount int       `json:"total_received_pick_count"`
}

func newReceivedPickResponse(p service.ReceivedPick) receivedPickResponse {
	return receivedPickResponse{
		PickID:                 string(p.PickID),
		QuestionID:             string(p.QuestionID),
		QuestionContent:        p.QuestionContent,
		QuestionEmojiImageURL:  p.QuestionEmojiImageURL,
		LatestPickedAt:         p.LatestPickedAt,
		TotalReceivedPickCount: p.TotalReceivedPickCount,
	}
}

type pickDetailResponse struct {
	PickID                string          `json:"pick_id"`
	PickerID              string          `json:"picker_id"`
	PickerIDOpen          bool            `json:"picker_id_open"`
	PickerOrdinal         int             `json:"picker_ordinal"`
	PickerProfileImageURL string          `json:"picker_profile_image_url"`
	PickerGenderOpen      bool            `json:"picker_gender_open"`
	PickerGender          *model.Gender   `json:"picker_gender"`
	PickerPlatformOpen    bool            `json:"picker_platform_open"`
	PickerPlatform        *model.Platform `json:"picker_platform"`
	PickerMidInitialOpen  bool            `json:"picker_mid_initial_name_open"`
	PickerMidInitialName  *string         `json:"picker_mid_initial_name"`
	PickerFullNameOpen    bool            `json:"picker_full_name_open"`
	PickerFullName        *string         `json:"picker_full_name"`
	CreatedAt             time.Time       `json:"created_at"`
}

func newPickDetailResponse(d service.PickDetail) pickDetailResponse {
	return pickDetailResponse{
		PickID:                string(d.PickID),
		PickerID:              string(d.PickerID),
		PickerIDOpen:          d.PickerIDOpen,
		PickerOrdinal:         d.PickerOrdinal,
		PickerProfileImageURL: d.PickerProfileImageURL,
		PickerGenderOpen:      d.GenderOpen,
		PickerGender:          d.Gender,
		PickerPlatformOpen:    d.PlatformOpen,
		PickerPlatform:        d.Platform,
		PickerMidInitialOpen:  d.MidInitialNameOpen,
		PickerMidInitialName:  d.SecondInitialName,
		PickerFullNameOpen:    d.FullNameOpen,
		PickerFullName:        d.FullName,
		CreatedAt:             d.CreatedAt,
	}
}

type receivedDetailResponse struct {
	QuestionID             string                           `json:"question_id"`
	QuestionContent        string                           `json:"question_content"`
	QuestionEmojiImageURL  string                           `json:"question_emoji_image_url"`
	TotalReceivedPickCount int                              `json:"total_received_pick_count"`
	Picks                  pageResponse[pickDetailResponse] `json:"picks"`
}

type spacePickResponse struct {
	PickID                string    `json:"pick_id"`
	Rank                  int       `json:"rank"`
	QuestionID            string    `json:"question_id"`
	QuestionContent       string    `json:"question_content"`
	QuestionEmojiImageURL string    `json:"question_emoji_image_url"`
	Count                 int       `json:"count"`
	LatestPickedAt        time.Time `json:"latest_picked_at"`
}

type spaceResponse struct {
	MemberID    string              `json:"member_id"`
	PickedCount int                 `json:"picked_count"`
	Picks       []spacePickResponse `json:"picks"`
}

func newSpaceResponse(s service.Space) spaceResponse {
	picks := make([]spacePickResponse, len(s.Picks))
	for i, p := range s.Picks {
		picks[i] = spacePickResponse{
			PickID:                string(p.PickID),
			Rank:                  p.Rank,
			QuestionID:            string(p.QuestionID),
			QuestionContent:       p.QuestionContent,
			QuestionEmojiImageURL: p.QuestionEmojiImageURL,
			Count:                 p.Count,
			LatestPickedAt:        p.LatestPickedAt,
		}
	}
	return spaceResponse{MemberID: string(s.MemberID), PickedCount: s.PickedCount, Picks: picks}
}

type ledgerEntryResponse struct {
	ID        string    `json:"id"`
	Delta     int64     `json:"delta"`
	Balance   int64     `json:"balance"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type coinResponse struct {
	MemberID string                `json:"member_id"`
	Amount   int64                 `json:"amount"`
	Entries  []ledgerEntryResponse `json:"entries"`
}

func newCoinResponse(c service.Coin) coinResponse {
	entries := make([]ledgerEntryResponse, len(c.Entries))
	for i, e := range c.Entries {
		entries[i] = ledgerEntryResponse{
			ID:        e.ID,
			Delta:     e.Delta,
			Balance:   e.Balance,
			Reason:    string(e.Reason),
			CreatedAt: e.CreatedAt,
		}
	}
	return coinResponse{MemberID: string(c.Balance.MemberID), Amount: c.Balance.Amount, Entries: entries}
}

type nextTimeResponse struct {
	NextPickTime time.Time `json:"next_pick_time"`
}

type questionSetResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	QuestionIDs []string  `json:"question_ids"`
	PublishedAt time.Time `json:"published_at"`
}

func newQuestionSetResponse(s model.QuestionSet) questionSetResponse {
	ids := make([]string, len(s.QuestionIDs))
	for i, id := range s.QuestionIDs {
		ids[i] = string(id)
	}
	return questionSetResponse{ID: string(s.ID), Status: string(s.Status), QuestionIDs: ids, PublishedAt: s.PublishedAt}
}
