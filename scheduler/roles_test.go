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

var _ = Describe("RoleNotifier", func() {
	var (
		ctx      context.Context
		store    *storage.Storage
		sender   *fakeSender
		notifier *scheduler.RoleNotifier
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStorage()
		sender = newFakeSender()
		notifier = scheduler.NewRoleNotifier(store, sender, announce, 15*time.Second)

		user, err := store.CreateUser(ctx, 100, "bob", "Bob")
		Expect(err).NotTo(HaveOccurred())
		_, err = store.SetRoleOnce(ctx, user.ID, storage.RoleStaff)
		Expect(err).NotTo(HaveOccurred())
	})

	It("announces the latest role once", func() {
		Expect(store.AssignRole(ctx, 100, storage.RoleOrganizer)).To(Succeed())
		Expect(store.AssignRole(ctx, 100, storage.RoleStaff)).To(Succeed())

		Expect(notifier.Notify(ctx)).To(Equal(1))
		Expect(sender.Sent()).To(Equal([]sentMessage{{ChatID: 100, Reply: messenger.Text("role: staff")}}))

		Expect(notifier.Notify(ctx)).To(BeZero())
		Expect(sender.Sent()).To(HaveLen(1))
	})

	It("keeps the flag when the announcement cannot be delivered", func() {
		Expect(store.AssignRole(ctx, 100, storage.RoleOrganizer)).To(Succeed())
		sender.Fail(100, true)

		Expect(notifier.Notify(ctx)).To(BeZero())
		Expect(store.ListUsersWithChangedRole(ctx)).To(HaveLen(1))

		sender.Fail(100, false)
		Expect(notifier.Notify(ctx)).To(Equal(1))
		Expect(store.ListUsersWithChangedRole(ctx)).To(BeEmpty())
	})

	It("does nothing without role changes", func() {
		Expect(notifier.Notify(ctx)).To(BeZero())
		Expect(sender.Sent()).To(BeEmpty())
	})
})
