package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

// Event is a single inbound interaction: a text message or an inline button press
type Event struct {
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	Text      string

	// Data is the raw payload of a pressed inline button
	Data     string
	IsButton bool
}

type request struct {
	Event
	user     *storage.User
	callback Callback
	state    conversation.State
}

type handlerFunc func(ctx context.Context, req *request) error

type route struct {
	// allow is checked before the handler runs; nil lets any active user through
	allow   func(*storage.User) bool
	restart bool
	handle  handlerFunc
}

// Dialogue turns inbound events into replies and conversation state transitions
type Dialogue struct {
	storage *storage.Storage
	states  conversation.Store
	sender  messenger.Sender
	now     func() time.Time
	loc     *time.Location
	locks   userLocks

	commands  map[string]route
	callbacks map[Action]route
	steps     map[stepKey]route
}

type Option func(*Dialogue)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(d *Dialogue) {
		d.now = now
	}
}

// WithLocation sets the time zone meeting times are entered and shown in
func WithLocation(loc *time.Location) Option {
	return func(d *Dialogue) {
		d.loc = loc
	}
}

func NewDialogue(store *storage.Storage, states conversation.Store, sender messenger.Sender, opts ...Option) *Dialogue {
	d := &Dialogue{
		storage: store,
		states:  states,
		sender:  sender,
		now:     time.Now,
		loc:     time.Local,
		locks:   userLocks{locks: make(map[int64]*userLock)},
	}
	for _, opt := range opts {
		opt(d)
	}

	organizer := (*storage.User).IsOrganizer
	meetingCreator := func(u *storage.User) bool {
		return u.IsOrganizer() && u.IsMeetingCreator
	}

	d.commands = map[string]route{
		CommandCreateMeeting:  {allow: organizer, handle: d.startCreateMeeting},
		CommandDeleteMeeting:  {allow: organizer, handle: d.startDeleteMeeting},
		CommandListMeetings:   {handle: d.listMeetings},
		CommandAddReminder:    {handle: d.startReminder},
		CommandAddNote:        {handle: d.startNote},
		CommandAskQuestion:    {handle: d.startQuestion},
		CommandRemoveStaff:    {allow: organizer, handle: d.startRemoveStaff},
		CommandRestoreStaff:   {allow: organizer, handle: d.startRestoreStaff},
		CommandInviteStaff:    {allow: meetingCreator, handle: d.startInvite},
		CommandViewInvitees:   {allow: organizer, handle: d.startViewInvitees},
		CommandAnswerFeedback: {allow: organizer, handle: d.startAnswerFeedback},
		CommandBack:           {handle: d.showMainMenu},
	}
	for label, r := range d.commands {
		r.restart = true
		d.commands[label] = r
	}

	d.callbacks = map[Action]route{
		ActionRoleOrganizer:     {handle: d.answerRole},
		ActionRoleStaff:         {handle: d.answerRole},
		ActionMeetingMenu:       {allow: organizer, restart: true, handle: d.showMeetingMenu},
		ActionStaffMenu:         {allow: organizer, restart: true, handle: d.showStaffMenu},
		ActionCreateReminder:    {restart: true, handle: d.startReminder},
		ActionCreateNote:        {restart: true, handle: d.startNote},
		ActionListMeetings:      {restart: true, handle: d.listMeetings},
		ActionDeleteMeeting:     {allow: organizer, handle: d.deleteMeeting},
		ActionNoteMeeting:       {handle: d.selectNoteMeeting},
		ActionReminderMeeting:   {handle: d.selectReminderMeeting},
		ActionInviteMeeting:     {allow: meetingCreator, handle: d.selectInviteMeeting},
		ActionInviteUser:        {allow: meetingCreator, handle: d.inviteUser},
		ActionRespondInvitation: {handle: d.respondInvitation},
		ActionRespondFeedback:   {allow: organizer, handle: d.selectFeedback},
		ActionRemoveStaff:       {allow: organizer, handle: d.removeStaff},
		ActionRestoreStaff:      {allow: organizer, handle: d.restoreStaff},
		ActionViewInvitees:      {allow: organizer, handle: d.viewInvitees},
	}

	d.steps = map[stepKey]route{
		{FlowRegistration, StepAwaitRole}:             {handle: d.repeatRoleQuestion},
		{FlowCreateMeeting, StepAwaitTitle}:           {allow: organizer, handle: d.enterTitle},
		{FlowCreateMeeting, StepAwaitDescription}:     {allow: organizer, handle: d.enterDescription},
		{FlowCreateMeeting, StepAwaitScheduledTime}:   {allow: organizer, handle: d.enterScheduledTime},
		{FlowDeleteMeeting, StepAwaitChoice}:          {handle: d.awaitButton},
		{FlowCreateNote, StepAwaitMeetingChoice}:      {handle: d.awaitButton},
		{FlowCreateNote, StepAwaitText}:               {handle: d.enterNote},
		{FlowCreateReminder, StepAwaitMeetingChoice}:  {handle: d.awaitButton},
		{FlowCreateReminder, StepAwaitMinutes}:        {handle: d.enterMinutes},
		{FlowFeedback, StepAwaitQuestion}:             {handle: d.enterQuestion},
		{FlowFeedbackResponse, StepAwaitSelection}:    {handle: d.awaitButton},
		{FlowFeedbackResponse, StepAwaitResponseText}: {allow: organizer, handle: d.enterAnswer},
		{FlowInvite, StepAwaitMeetingChoice}:          {handle: d.awaitButton},
		{FlowInvite, StepAwaitUserChoice}:             {handle: d.awaitButton},
	}

	return d
}

// Handle processes one event to completion. Events of the same user are
// handled one at a time.
func (d *Dialogue) Handle(ctx context.Context, ev Event) {
	unlock := d.locks.lock(ev.UserID)
	defer unlock()

	req := &request{Event: ev}
	if err := d.dispatch(ctx, req); err != nil {
		d.fail(ctx, req, err)
	}
}

func (d *Dialogue) dispatch(ctx context.Context, req *request) error {
	if req.IsButton {
		cb, err := DecodeCallback(req.Data)
		if err != nil {
			return invalid(msgMalformedButton, err)
		}
		req.callback = cb

		loggerFrom(ctx).Debug("bot: Button pressed", "user_id", req.UserID, "action", cb.Action, "id", cb.ID)

		if cb.Action == ActionStart {
			return d.register(ctx, req)
		}
		r, ok := d.callbacks[cb.Action]
		if !ok {
			return invalid(msgMalformedButton, ErrMalformedCallback)
		}
		return d.run(ctx, req, r)
	}

	text := strings.TrimSpace(req.Text)
	if isStartCommand(text) {
		return d.start(ctx, req)
	}
	if r, ok := d.commands[text]; ok {
		loggerFrom(ctx).Debug("bot: Command received", "user_id", req.UserID, "command", text)
		return d.run(ctx, req, r)
	}

	state, ok, err := d.states.Get(ctx, req.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return d.run(ctx, req, route{handle: d.unknown})
	}
	req.state = state

	r, ok := d.steps[stepKey{state.Flow, state.Step}]
	if !ok {
		loggerFrom(ctx).Warn("bot: Dropping unknown conversation state", "user_id", req.UserID, "flow", state.Flow, "step", state.Step)
		r = route{restart: true, handle: d.unknown}
	}
	return d.run(ctx, req, r)
}

func (d *Dialogue) run(ctx context.Context, req *request, r route) error {
	user, err := d.activeUser(ctx, req.UserID)
	if err != nil {
		return err
	}
	req.user = user

	if r.allow != nil && !r.allow(user) {
		return ErrUnauthorized
	}
	if r.restart {
		if err := d.clearState(ctx, req); err != nil {
			return err
		}
	}
	return r.handle(ctx, req)
}

func (d *Dialogue) activeUser(ctx context.Context, telegramID int64) (*storage.User, error) {
	user, err := d.storage.FindUserByTelegramID(ctx, telegramID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	if user.Deleted {
		return nil, ErrUserRemoved
	}
	return user, nil
}

// fail reports an error to the user. Conversation state is left untouched.
func (d *Dialogue) fail(ctx context.Context, req *request, err error) {
	log := loggerFrom(ctx).With("user_id", req.UserID, "error", err)

	var (
		validation *ValidationError
		missing    *NotFoundError
		text       string
	)
	switch {
	case errors.As(err, &validation):
		log.Debug("bot: Invalid input")
		text = validation.Message
	case errors.As(err, &missing):
		log.Info("bot: Referenced entity not found")
		text = missing.Message
	case errors.Is(err, ErrNotRegistered):
		log.Info("bot: Unregistered user")
		text = msgNotRegistered
	case errors.Is(err, ErrUserRemoved):
		log.Info("bot: Removed user denied")
		text = msgNoAccess
	case errors.Is(err, ErrUnauthorized):
		log.Warn("bot: Unauthorized action")
		text = msgNoPermission
	case errors.Is(err, storage.ErrConflict):
		log.Error("bot: Integrity error")
		text = msgIntegrityError
	case errors.Is(err, storage.ErrStore), errors.Is(err, conversation.ErrStateBackend):
		log.Error("bot: Storage error")
		text = msgStoreError
	default:
		log.Error("bot: Unexpected error")
		text = msgUnexpectedError
	}

	d.send(ctx, req.ChatID, messenger.Text(text))
}

// send delivers a reply. Delivery failures are logged by the sender and dropped.
func (d *Dialogue) send(ctx context.Context, chatID int64, reply messenger.Reply) {
	if err := d.sender.Send(ctx, chatID, reply); err != nil {
		loggerFrom(ctx).Warn("bot: Reply not delivered", "chat_id", chatID, "error", err)
	}
}

func (d *Dialogue) setState(ctx context.Context, req *request, state conversation.State) error {
	return d.states.Set(ctx, req.UserID, state)
}

func (d *Dialogue) clearState(ctx context.Context, req *request) error {
	return d.states.Clear(ctx, req.UserID)
}

func (d *Dialogue) unknown(ctx context.Context, req *request) error {
	d.send(ctx, req.ChatID, messenger.Text(msgUnknown))
	return nil
}

func (d *Dialogue) awaitButton(ctx context.Context, req *request) error {
	d.send(ctx, req.ChatID, messenger.Text(msgUseButtons))
	return nil
}

func (d *Dialogue) formatTime(t time.Time) string {
	return t.In(d.loc).Format(dateTimeLayout)
}

func isStartCommand(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	command, _, _ := strings.Cut(fields[0], "@")
	return command == "/start"
}

type userLock struct {
	sync.Mutex
	refs int
}

// userLocks is a keyed mutex that forgets users nobody is waiting on
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

func (l *userLocks) lock(userID int64) (unlock func()) {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.Lock()

	return func() {
		ul.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

func userAttrs(user *storage.User) slog.Attr {
	return slog.Group("user",
		slog.Uint64("id", uint64(user.ID)),
		slog.Int64("telegram_id", user.TelegramID),
		slog.String("username", user.Username),
	)
}
