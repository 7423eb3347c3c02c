package scheduler_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/scheduler"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var _ = Describe("ReminderDispatcher", func() {
	var (
		ctx        context.Context
		store      *storage.Storage
		sender     *fakeSender
		now        time.Time
		dispatcher *scheduler.ReminderDispatcher
		user       *storage.User
		meeting    *storage.Meeting
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStorage()
		sender = newFakeSender()
		now = time.Date(2025, 3, 1, 9, 46, 0, 0, time.UTC)

		dispatcher = scheduler.NewReminderDispatcher(store, sender, reminderText, time.Minute, 3,
			scheduler.WithClock(func() time.Time { return now }),
		)

		var err error
		user, err = store.CreateUser(ctx, 100, "bob", "Bob")
		Expect(err).NotTo(HaveOccurred())
		meeting, err = store.CreateMeeting(ctx, user.ID, "Sync", "Weekly", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())
	})

	It("delivers a due reminder once and deletes it", func() {
		_, err := store.CreateReminder(ctx, meeting.ID, user.ID, time.Date(2025, 3, 1, 9, 45, 0, 0, time.UTC))
		Expect(err).NotTo(HaveOccurred())

		delivered, err := dispatcher.Dispatch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(delivered).To(Equal(1))
		Expect(sender.Sent()).To(Equal([]sentMessage{{ChatID: 100, Reply: messenger.Text("reminder: Sync")}}))
		Expect(store.ListReminders(ctx, meeting.ID)).To(BeEmpty())

		delivered, err = dispatcher.Dispatch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(delivered).To(BeZero())
		Expect(sender.Sent()).To(HaveLen(1))
	})

	It("leaves reminders that are not due yet", func() {
		_, err := store.CreateReminder(ctx, meeting.ID, user.ID, now.Add(time.Minute))
		Expect(err).NotTo(HaveOccurred())

		delivered, err := dispatcher.Dispatch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(delivered).To(BeZero())
		Expect(sender.Sent()).To(BeEmpty())
		Expect(store.ListReminders(ctx, meeting.ID)).To(HaveLen(1))
	})

	It("retries a failed delivery and dead-letters it at the ceiling", func() {
		_, err := store.CreateReminder(ctx, meeting.ID, user.ID, now.Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())
		sender.Fail(100, true)

		for i := 0; i < 3; i++ {
			delivered, err := dispatcher.Dispatch(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(delivered).To(BeZero())
		}

		reminders, err := store.ListReminders(ctx, meeting.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(reminders).To(HaveLen(1))
		Expect(reminders[0].Attempts).To(Equal(3))
		Expect(reminders[0].DeadLettered).To(BeTrue())

		sender.Fail(100, false)
		delivered, err := dispatcher.Dispatch(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(delivered).To(BeZero())
		Expect(sender.Sent()).To(BeEmpty())
	})

	It("delivers after a transient failure", func() {
		_, err := store.CreateReminder(ctx, meeting.ID, user.ID, now.Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())

		sender.Fail(100, true)
		Expect(dispatcher.Dispatch(ctx)).To(BeZero())

		sender.Fail(100, false)
		Expect(dispatcher.Dispatch(ctx)).To(Equal(1))
		Expect(store.ListReminders(ctx, meeting.ID)).To(BeEmpty())
	})

	It("counts a reminder of a missing user as a failed attempt", func() {
		_, err := store.CreateReminder(ctx, meeting.ID, 404, now.Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())

		Expect(dispatcher.Dispatch(ctx)).To(BeZero())

		reminders, err := store.ListReminders(ctx, meeting.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(reminders).To(HaveLen(1))
		Expect(reminders[0].Attempts).To(Equal(1))
	})

	It("keeps delivering other reminders when one fails", func() {
		other, err := store.CreateUser(ctx, 200, "carol", "Carol")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.CreateReminder(ctx, meeting.ID, user.ID, now.Add(-2*time.Minute))
		Expect(err).NotTo(HaveOccurred())
		_, err = store.CreateReminder(ctx, meeting.ID, other.ID, now.Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())
		sender.Fail(100, true)

		Expect(dispatcher.Dispatch(ctx)).To(Equal(1))
		Expect(sender.Sent()).To(ConsistOf(sentMessage{ChatID: 200, Reply: messenger.Text("reminder: Sync")}))
	})

	It("stops with the context", func() {
		ctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			Expect(dispatcher.Run(ctx)).To(Succeed())
		}()

		cancel()
		Eventually(done).Should(BeClosed())
	})
})
