package bot

import "git.skobk.in/skobkin/telegram-meeting-bot/conversation"

const (
	FlowRegistration     conversation.Flow = "registration"
	FlowCreateMeeting    conversation.Flow = "create_meeting"
	FlowDeleteMeeting    conversation.Flow = "delete_meeting"
	FlowCreateNote       conversation.Flow = "create_note"
	FlowCreateReminder   conversation.Flow = "create_reminder"
	FlowFeedback         conversation.Flow = "feedback"
	FlowFeedbackResponse conversation.Flow = "feedback_response"
	FlowInvite           conversation.Flow = "invite"
)

const (
	StepAwaitRole          conversation.Step = "await_role"
	StepAwaitTitle         conversation.Step = "await_title"
	StepAwaitDescription   conversation.Step = "await_description"
	StepAwaitScheduledTime conversation.Step = "await_scheduled_time"
	StepAwaitChoice        conversation.Step = "await_choice"
	StepAwaitMeetingChoice conversation.Step = "await_meeting_choice"
	StepAwaitUserChoice    conversation.Step = "await_user_choice"
	StepAwaitText          conversation.Step = "await_text"
	StepAwaitMinutes       conversation.Step = "await_minutes"
	StepAwaitQuestion      conversation.Step = "await_question"
	StepAwaitSelection     conversation.Step = "await_selection"
	StepAwaitResponseText  conversation.Step = "await_response_text"
)

type stepKey struct {
	flow conversation.Flow
	step conversation.Step
}
