package presenter

import (
	meetingDTO "github.com/meetingledger/ledger/internal/adapter/dto/meeting"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/usecase/meetings"
)

// ToMeetingResponse converts a Meeting entity to its response DTO
func ToMeetingResponse(m *entities.Meeting) *meetingDTO.MeetingResponse {
	if m == nil {
		return nil
	}

	return &meetingDTO.MeetingResponse{
		ID:        m.ID.String(),
		AccountID: m.AccountID.String(),
		Title:     m.Title,
		StartedAt: m.StartedAt,
		CreatedAt: m.CreatedAt,
	}
}

// ToTranscriptResponse converts a Transcript entity to its metadata DTO.
// The full content is deliberately left out of list and view payloads.
func ToTranscriptResponse(t *entities.Transcript) *meetingDTO.TranscriptResponse {
	if t == nil {
		return nil
	}

	return &meetingDTO.TranscriptResponse{
		ID:        t.ID.String(),
		MeetingID: t.MeetingID.String(),
		WordCount: t.WordCount,
		CreatedAt: t.CreatedAt,
	}
}

// ToMeetingViewResponse converts a usecase MeetingView to its response DTO
func ToMeetingViewResponse(view *meetings.MeetingView) *meetingDTO.MeetingViewResponse {
	if view == nil {
		return nil
	}

	return &meetingDTO.MeetingViewResponse{
		Meeting:     ToMeetingResponse(view.Meeting),
		Transcript:  ToTranscriptResponse(view.Transcript),
		Decisions:   view.Decisions,
		ActionItems: view.ActionItems,
		Risks:       view.Risks,
		LatestRun:   view.LatestRun,
	}
}

// ToMeetingListResponse converts a slice of Meeting entities to a list DTO
func ToMeetingListResponse(list []*entities.Meeting) *meetingDTO.MeetingListResponse {
	responses := make([]*meetingDTO.MeetingResponse, len(list))
	for i, m := range list {
		responses[i] = ToMeetingResponse(m)
	}

	return &meetingDTO.MeetingListResponse{
		Meetings: responses,
		Total:    len(responses),
	}
}
