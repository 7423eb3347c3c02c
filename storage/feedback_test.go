package storage_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var _ = Describe("Feedback and notes", func() {
	var (
		ctx   context.Context
		store *storage.Storage
		user  *storage.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStorage()

		var err error
		user, err = store.CreateUser(ctx, 100, "alice", "Alice")
		Expect(err).NotTo(HaveOccurred())
	})

	It("marks a question answered exactly once", func() {
		feedback, err := store.CreateFeedback(ctx, user.ID, "When is lunch?")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.ListUnansweredFeedback(ctx)).To(HaveLen(1))

		marked, err := store.MarkFeedbackAnswered(ctx, feedback.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(BeTrue())

		marked, err = store.MarkFeedbackAnswered(ctx, feedback.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(marked).To(BeFalse())

		Expect(store.ListUnansweredFeedback(ctx)).To(BeEmpty())

		stored, err := store.GetFeedback(ctx, feedback.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Answered).To(BeTrue())
	})

	It("stores note text verbatim", func() {
		meeting, err := store.CreateMeeting(ctx, user.ID, "Sync", "", time.Now())
		Expect(err).NotTo(HaveOccurred())

		_, err = store.CreateNote(ctx, meeting.ID, user.ID, "  hello  world  ")
		Expect(err).NotTo(HaveOccurred())

		notes, err := store.ListNotes(ctx, meeting.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Text).To(Equal("  hello  world  "))
	})
})
