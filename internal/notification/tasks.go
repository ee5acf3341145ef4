package notification

import (
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeInvitationEmail = "notify:invitation"
	TypeReportSubmitted = "notify:report_submitted"
)

// InvitationEmailPayload carries only the invitation id: everything else
// is re-read at delivery time so the email reflects current state.
type InvitationEmailPayload struct {
	InvitationID snowflake.ID `json:"invitation_id"`
}

func NewInvitationEmailTask(invitationID snowflake.ID) (*asynq.Task, error) {
	data, err := json.Marshal(InvitationEmailPayload{InvitationID: invitationID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvitationEmail, data), nil
}

// ReportSubmittedPayload identifies the report to notify about.
type ReportSubmittedPayload struct {
	ReportID snowflake.ID `json:"report_id"`
}

func NewReportSubmittedTask(reportID snowflake.ID) (*asynq.Task, error) {
	data, err := json.Marshal(ReportSubmittedPayload{ReportID: reportID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeReportSubmitted, data), nil
}
