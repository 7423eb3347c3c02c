package bot

import (
	"fmt"

	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

// Reply menu labels double as text commands
const (
	CommandCreateMeeting  = "Create meeting"
	CommandDeleteMeeting  = "Delete meeting"
	CommandListMeetings   = "View meetings"
	CommandAddReminder    = "Add reminder"
	CommandAddNote        = "Add note"
	CommandAskQuestion    = "Ask a question"
	CommandRemoveStaff    = "Remove staff member"
	CommandRestoreStaff   = "Restore staff member"
	CommandInviteStaff    = "Invite staff to a meeting"
	CommandViewInvitees   = "Staff by meeting"
	CommandAnswerFeedback = "Answer questions"
	CommandBack           = "🔙 Back"
)

const dateTimeLayout = "2006-01-02 15:04"

const (
	msgGreeting        = "Hello, %s 👋\nI am a meeting planning assistant. Let's get started!"
	msgProfile         = "About you:\nName: %s\nUsername: %s\nTelegram ID: %d"
	msgAskRole         = "One more thing. Are you a manager or their deputy?"
	msgRoleOrganizer   = "Your role is now: organizer"
	msgRoleStaff       = "Your role is now: staff member"
	msgRoleAlreadySet  = "You have already answered the role question."
	msgChooseAction    = "Choose an action:"
	msgNoAccess        = "You have no access."
	msgNotRegistered   = "Please press /start to register first."
	msgNoPermission    = "You don't have permission to do that."
	msgUnknown         = "Sorry, I didn't understand you. Choose a command from the menu."
	msgIntegrityError  = "A data integrity error occurred. Please try again later."
	msgStoreError      = "A database error occurred. Please try again later."
	msgUnexpectedError = "An unexpected error occurred. Please try again later."
	msgMalformedButton = "This button is no longer valid."
	msgMeetingMenu     = "Choose a meeting management action:"
	msgStaffMenu       = "Choose a staff management action:"
	msgUseButtons      = "Please choose one of the buttons above."

	msgAskTitle       = "Enter the meeting title:"
	msgAskDescription = "Enter the meeting description:"
	msgAskScheduledAt = "Enter the meeting date and time (YYYY-MM-DD HH:MM):"
	msgEmptyTitle     = "The title cannot be empty. Try again."
	msgBadDateTime    = "Invalid date format. Please use YYYY-MM-DD HH:MM."
	msgMeetingCreated = "Meeting created."
	msgNoOwnMeetings  = "You have no meetings."
	msgChooseDelete   = "Choose the meeting you want to delete:"
	msgMeetingDeleted = "Meeting deleted."
	msgNoMeetings     = "No meetings found."
	msgMeetingList    = "Meetings:\n"
	msgMeetingEntry   = "Title: %s\nDescription: %s\nDate and time: %s\n"
	msgMeetingNotes   = "Notes:\n"
	msgMeetingAlerts  = "Reminders:\n"
	msgMeetingMissing = "Meeting not found."

	msgChooseNoteMeeting = "Choose the meeting you want to add a note to:"
	msgNoNoteMeetings    = "There are no meetings available for notes."
	msgAskNote           = "Enter the note text:"
	msgEmptyNote         = "The note text cannot be empty. Try again."
	msgNoteAdded         = "Note added."

	msgChooseReminderMeeting = "Choose the meeting you want to be reminded about:"
	msgNoReminderMeetings    = "There are no meetings available for reminders."
	msgAskMinutes            = "How many minutes before the meeting should the reminder arrive?"
	msgBadMinutes            = "Invalid number. Please enter the number of minutes before the meeting."
	msgReminderAdded         = "Reminder added. You will be notified %d minutes before the meeting."
	msgReminder              = "Reminder:\nMeeting '%s' starts in a few minutes."

	msgNoInviteMeetings      = "There are no meetings to invite to."
	msgChooseInviteMeeting   = "Choose a meeting to invite to:"
	msgNoStaffToInvite       = "There are no staff members to invite."
	msgChooseInvitee         = "Choose a staff member to invite:"
	msgInvitation            = "You have been invited to the meeting '%s'. Accept the invitation?"
	msgInvited               = "%s has been invited to the meeting '%s'."
	msgInvitationAccepted    = "Your invitation to the meeting '%s' has been confirmed."
	msgInvitationDeclined    = "Your invitation to the meeting '%s' has been declined."
	msgNoInvitees            = "Nobody has accepted the invitation to this meeting."
	msgInviteeList           = "Staff invited to the meeting:\n"
	msgChooseInviteesMeeting = "Choose a meeting to see the invited staff:"
	msgNoMeetingsAvailable   = "There are no meetings."
	msgUserNotFound          = "User not found."
	msgInvitationNotFound    = "Invitation not found."

	msgNoStaff          = "There are no staff members."
	msgStaffList        = "Staff members:"
	msgNoRemovedStaff   = "There are no removed staff members."
	msgRemovedStaffList = "Removed staff members:"
	msgStaffRemoved     = "%s has been marked as removed."
	msgStaffRestored    = "%s has been restored."
	msgYouWereRemoved   = "You have been blocked."
	msgYouWereRestored  = "You have been restored."
	msgAlreadyRemoved   = "User not found or already removed."
	msgAlreadyRestored  = "User not found or already restored."

	msgAskQuestion     = "🟢 Write your question:"
	msgQuestionNotText = "The message must be text. Try again."
	msgQuestionThanks  = "🟢 Thank you for the question!\nYou will get an answer soon."
	msgNewQuestion     = "🟢 New question from %s: %s"
	msgNoQuestions     = "❌ There are no questions to answer."
	msgChooseQuestion  = "Choose a question to answer:"
	msgAlreadyAnswered = "This question has already been answered."
	msgAskAnswer       = "🟢 Write your answer to the selected question."
	msgAnswer          = "❔ '%s'\n❕ %s"
	msgAnswerSent      = "🟢 Your answer has been sent."
	msgEmptyAnswer     = "The answer cannot be empty. Try again."
	msgQuestionMissing = "Question not found."
)

var (
	organizerMenu = messenger.Text(msgChooseAction).WithButtons(
		messenger.Button{Text: "Manage meetings", Data: Callback{Action: ActionMeetingMenu}.Encode()},
		messenger.Button{Text: "Add reminder", Data: Callback{Action: ActionCreateReminder}.Encode()},
		messenger.Button{Text: "Add note", Data: Callback{Action: ActionCreateNote}.Encode()},
		messenger.Button{Text: "Manage staff", Data: Callback{Action: ActionStaffMenu}.Encode()},
	)

	staffMenu = messenger.Text(msgChooseAction).WithMenu(
		CommandListMeetings,
		CommandAddReminder,
		CommandAddNote,
		CommandAskQuestion,
	)

	meetingMenu = messenger.Text(msgMeetingMenu).WithMenu(
		CommandCreateMeeting,
		CommandDeleteMeeting,
		CommandListMeetings,
		CommandBack,
	)

	staffManagementMenu = messenger.Text(msgStaffMenu).WithMenu(
		CommandRemoveStaff,
		CommandRestoreStaff,
		CommandInviteStaff,
		CommandViewInvitees,
		CommandAnswerFeedback,
		CommandBack,
	)

	startButton = messenger.Button{Text: "Get started", Data: Callback{Action: ActionStart}.Encode()}
)

// MainMenu is the role specific menu shown after registration
func MainMenu(role storage.Role) messenger.Reply {
	if role == storage.RoleOrganizer {
		return organizerMenu
	}
	return staffMenu
}

// RoleAnnouncement tells a user about their new role and shows the matching menu
func RoleAnnouncement(role storage.Role) messenger.Reply {
	if role == storage.RoleOrganizer {
		return MainMenu(role).WithText(msgRoleOrganizer)
	}
	return MainMenu(role).WithText(msgRoleStaff)
}

// ReminderText is the notification sent when a reminder fires
func ReminderText(meetingTitle string) messenger.Reply {
	return messenger.Text(fmt.Sprintf(msgReminder, meetingTitle))
}
