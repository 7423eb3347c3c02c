package bot

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

// brokenStates fails every call
type brokenStates struct{}

func (brokenStates) Get(context.Context, int64) (conversation.State, bool, error) {
	return conversation.State{}, false, conversation.ErrStateBackend
}

func (brokenStates) Set(context.Context, int64, conversation.State) error {
	return conversation.ErrStateBackend
}

func (brokenStates) Clear(context.Context, int64) error {
	return conversation.ErrStateBackend
}

var _ = Describe("Dialogue", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
	})

	It("asks unregistered users to register", func() {
		h.text(1, CommandCreateMeeting)
		Expect(h.last(1)).To(Equal(msgNotRegistered))

		h.press(1, Callback{Action: ActionCreateNote})
		Expect(h.last(1)).To(Equal(msgNotRegistered))
	})

	It("does not understand free text outside of a flow", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		h.text(1, "hello")
		Expect(h.last(1)).To(Equal(msgUnknown))
	})

	It("rejects malformed buttons", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		h.pressRaw(1, "delete_meeting_x")
		Expect(h.last(1)).To(Equal(msgMalformedButton))
	})

	It("keeps organizer commands away from staff without touching their state", func() {
		h.register(2, "bob", storage.RoleStaff)
		h.text(2, CommandAskQuestion)

		h.text(2, CommandCreateMeeting)
		Expect(h.last(2)).To(Equal(msgNoPermission))
		Expect(h.state(2)).To(Equal(conversation.State{Flow: FlowFeedback, Step: StepAwaitQuestion}))

		h.press(2, Callback{Action: ActionDeleteMeeting, ID: 1})
		Expect(h.last(2)).To(Equal(msgNoPermission))
		Expect(h.state(2).Flow).To(Equal(FlowFeedback))
	})

	It("restarts the flow when another command arrives mid-flow", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		h.text(1, CommandCreateMeeting)
		h.text(1, "Sync")
		Expect(h.state(1).Step).To(Equal(StepAwaitDescription))

		h.text(1, CommandAskQuestion)
		Expect(h.state(1)).To(Equal(conversation.State{Flow: FlowFeedback, Step: StepAwaitQuestion}))
	})

	It("drops a state it does not know", func() {
		h.register(1, "alice", storage.RoleOrganizer)
		Expect(h.states.Set(h.ctx, 1, conversation.State{Flow: "gone", Step: "away"})).To(Succeed())

		h.text(1, "hello")
		Expect(h.last(1)).To(Equal(msgUnknown))
		Expect(h.state(1)).To(BeZero())
	})

	It("asks for a button while a choice is pending", func() {
		h.register(1, "alice", storage.RoleOrganizer)
		h.createMeeting(1, "Sync", "Weekly", "2025-03-01 10:00")

		h.text(1, CommandDeleteMeeting)
		h.text(1, "the first one")
		Expect(h.last(1)).To(Equal(msgUseButtons))
		Expect(h.state(1)).To(Equal(conversation.State{Flow: FlowDeleteMeeting, Step: StepAwaitChoice}))
	})

	It("reports state backend failures as storage errors", func() {
		h.register(1, "alice", storage.RoleOrganizer)
		broken := NewDialogue(h.store, brokenStates{}, h.sender)

		broken.Handle(h.ctx, Event{UserID: 1, ChatID: 1, Text: CommandCreateMeeting})
		Expect(h.last(1)).To(Equal(msgStoreError))
	})

	It("serializes events of the same user", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				h.text(1, CommandAskQuestion)
			}()
		}
		wg.Wait()

		Expect(h.sender.To(1)).To(HaveLen(20))
		Expect(h.dialogue.locks.locks).To(BeEmpty())
	})

	Describe("error mapping", func() {
		It("wraps missing entities as not found", func() {
			err := notFound(storage.ErrNotFound, msgMeetingMissing)

			var nf *NotFoundError
			Expect(errors.As(err, &nf)).To(BeTrue())
			Expect(nf.Message).To(Equal(msgMeetingMissing))
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("passes other errors through", func() {
			Expect(notFound(storage.ErrStore, msgMeetingMissing)).To(BeIdenticalTo(storage.ErrStore))
		})

		It("keeps the validation cause in the chain", func() {
			cause := errors.New("parse failure")
			err := invalid(msgBadDateTime, cause)

			Expect(err).To(MatchError(cause))
			Expect(err.Error()).To(ContainSubstring("parse failure"))
		})
	})
})
