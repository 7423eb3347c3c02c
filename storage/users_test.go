package storage_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

var _ = Describe("Users", func() {
	var (
		ctx   context.Context
		store *storage.Storage
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newStorage()
	})

	It("creates a user with an unset role", func() {
		user, err := store.CreateUser(ctx, 100, "alice", "Alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Role).To(Equal(storage.RoleUnset))

		found, err := store.FindUserByTelegramID(ctx, 100)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(user.ID))
		Expect(found.Username).To(Equal("alice"))
	})

	It("rejects a second user with the same telegram id", func() {
		_, err := store.CreateUser(ctx, 100, "alice", "Alice")
		Expect(err).NotTo(HaveOccurred())

		_, err = store.CreateUser(ctx, 100, "alice2", "Alice")
		Expect(err).To(MatchError(storage.ErrConflict))
	})

	It("reports unknown users as not found", func() {
		_, err := store.FindUserByTelegramID(ctx, 404)
		Expect(err).To(MatchError(storage.ErrNotFound))

		_, err = store.GetUser(ctx, 404)
		Expect(err).To(MatchError(storage.ErrNotFound))
	})

	Describe("SetRoleOnce", func() {
		It("sets the role only the first time", func() {
			user, err := store.CreateUser(ctx, 100, "alice", "Alice")
			Expect(err).NotTo(HaveOccurred())

			set, err := store.SetRoleOnce(ctx, user.ID, storage.RoleOrganizer)
			Expect(err).NotTo(HaveOccurred())
			Expect(set).To(BeTrue())

			set, err = store.SetRoleOnce(ctx, user.ID, storage.RoleStaff)
			Expect(err).NotTo(HaveOccurred())
			Expect(set).To(BeFalse())

			user, err = store.GetUser(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Role).To(Equal(storage.RoleOrganizer))
		})
	})

	Describe("AssignRole", func() {
		It("changes the role and raises the role changed flag until cleared", func() {
			user, err := store.CreateUser(ctx, 100, "alice", "Alice")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.SetRoleOnce(ctx, user.ID, storage.RoleStaff)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.AssignRole(ctx, 100, storage.RoleOrganizer)).To(Succeed())

			changed, err := store.ListUsersWithChangedRole(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(HaveLen(1))
			Expect(changed[0].Role).To(Equal(storage.RoleOrganizer))

			Expect(store.ClearRoleChanged(ctx, user.ID, storage.RoleOrganizer)).To(Succeed())

			changed, err = store.ListUsersWithChangedRole(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeEmpty())
		})

		It("keeps the flag raised when the role changed again before clearing", func() {
			user, err := store.CreateUser(ctx, 100, "alice", "Alice")
			Expect(err).NotTo(HaveOccurred())

			Expect(store.AssignRole(ctx, 100, storage.RoleOrganizer)).To(Succeed())
			Expect(store.AssignRole(ctx, 100, storage.RoleStaff)).To(Succeed())

			Expect(store.ClearRoleChanged(ctx, user.ID, storage.RoleOrganizer)).To(Succeed())

			changed, err := store.ListUsersWithChangedRole(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(HaveLen(1))
			Expect(changed[0].Role).To(Equal(storage.RoleStaff))
		})

		It("fails for an unknown user", func() {
			Expect(store.AssignRole(ctx, 404, storage.RoleStaff)).To(MatchError(storage.ErrNotFound))
		})
	})

	Describe("staff removal", func() {
		var staff *storage.User

		BeforeEach(func() {
			var err error
			staff, err = store.CreateUser(ctx, 200, "bob", "Bob")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.SetRoleOnce(ctx, staff.ID, storage.RoleStaff)
			Expect(err).NotTo(HaveOccurred())
		})

		It("moves a staff member between the active and removed lists", func() {
			removed, err := store.SetStaffDeleted(ctx, staff.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed.Deleted).To(BeTrue())

			active, err := store.ListStaff(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(BeEmpty())

			inactive, err := store.ListStaff(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(inactive).To(HaveLen(1))

			restored, err := store.SetStaffDeleted(ctx, staff.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(restored.Deleted).To(BeFalse())
		})

		It("refuses to remove a staff member twice", func() {
			_, err := store.SetStaffDeleted(ctx, staff.ID, true)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.SetStaffDeleted(ctx, staff.ID, true)
			Expect(err).To(MatchError(storage.ErrNotFound))
		})

		It("never touches organizers", func() {
			organizer, err := store.CreateUser(ctx, 300, "carol", "Carol")
			Expect(err).NotTo(HaveOccurred())
			_, err = store.SetRoleOnce(ctx, organizer.ID, storage.RoleOrganizer)
			Expect(err).NotTo(HaveOccurred())

			_, err = store.SetStaffDeleted(ctx, organizer.ID, true)
			Expect(err).To(MatchError(storage.ErrNotFound))

			organizers, err := store.ListOrganizers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(organizers).To(HaveLen(1))
		})
	})
})
