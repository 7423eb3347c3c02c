package bot

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var _ = Describe("Registration", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
	})

	It("greets on /start with a start button", func() {
		h.text(1, "/start")

		reply := h.lastReply(1)
		Expect(reply.Text).To(Equal(fmt.Sprintf(msgGreeting, "User")))
		Expect(buttons(reply)).To(Equal([]Callback{{Action: ActionStart}}))
	})

	It("accepts /start with a bot mention or payload", func() {
		Expect(isStartCommand("/start@meeting_bot")).To(BeTrue())
		Expect(isStartCommand("/start ref42")).To(BeTrue())
		Expect(isStartCommand("/stop")).To(BeFalse())
		Expect(isStartCommand("")).To(BeFalse())
	})

	It("registers a new user and asks the role question", func() {
		h.text(1, "/start")
		h.press(1, Callback{Action: ActionStart})

		user, err := h.store.FindUserByTelegramID(h.ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Role).To(Equal(storage.RoleUnset))

		Expect(h.last(1)).To(Equal(msgAskRole))
		Expect(buttons(h.lastReply(1))).To(Equal([]Callback{{Action: ActionRoleOrganizer}, {Action: ActionRoleStaff}}))
		Expect(h.state(1)).To(Equal(conversation.State{Flow: FlowRegistration, Step: StepAwaitRole}))
	})

	It("sets the role only once", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		h.press(1, Callback{Action: ActionRoleStaff})
		Expect(h.last(1)).To(Equal(msgRoleAlreadySet))

		user, err := h.store.FindUserByTelegramID(h.ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Role).To(Equal(storage.RoleOrganizer))
	})

	It("announces the chosen role with the matching menu and ends the flow", func() {
		h.text(2, "/start")
		h.press(2, Callback{Action: ActionStart})
		h.press(2, Callback{Action: ActionRoleStaff})

		Expect(h.lastReply(2)).To(Equal(RoleAnnouncement(storage.RoleStaff)))
		Expect(h.lastReply(2).Menu).NotTo(BeEmpty())
		Expect(h.state(2)).To(BeZero())
	})

	It("repeats the role question on free text", func() {
		h.text(1, "/start")
		h.press(1, Callback{Action: ActionStart})

		h.text(1, "maybe")
		Expect(h.last(1)).To(Equal(msgAskRole))
		Expect(h.state(1).Step).To(Equal(StepAwaitRole))
	})

	It("shows the main menu to a returning user", func() {
		h.register(1, "alice", storage.RoleOrganizer)

		h.text(1, "/start")
		h.press(1, Callback{Action: ActionStart})

		Expect(h.lastReply(1)).To(Equal(MainMenu(storage.RoleOrganizer)))
		Expect(h.state(1)).To(BeZero())
	})
})
