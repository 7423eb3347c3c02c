package messenger

import (
	"errors"

	"github.com/mymmrac/telego"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SendParams", func() {
	It("sends plain text without markup", func() {
		params := SendParams(10, Text("hello"))

		Expect(params.ChatID.ID).To(Equal(int64(10)))
		Expect(params.Text).To(Equal("hello"))
		Expect(params.ReplyMarkup).To(BeNil())
	})

	It("lays out inline buttons one per row", func() {
		reply := Text("pick").WithButtons(
			Button{Text: "Sync", Data: "delete_meeting_1"},
			Button{Text: "Retro", Data: "delete_meeting_2"},
		)

		markup, ok := SendParams(10, reply).ReplyMarkup.(*telego.InlineKeyboardMarkup)
		Expect(ok).To(BeTrue())
		Expect(markup.InlineKeyboard).To(HaveLen(2))
		Expect(markup.InlineKeyboard[1][0].Text).To(Equal("Retro"))
		Expect(markup.InlineKeyboard[1][0].CallbackData).To(Equal("delete_meeting_2"))
	})

	It("keeps a two-choice row together", func() {
		reply := Text("accept?").WithButtonRow(
			Button{Text: "Accept", Data: "respond_invitation_3_accepted"},
			Button{Text: "Decline", Data: "respond_invitation_3_declined"},
		)

		markup, ok := SendParams(10, reply).ReplyMarkup.(*telego.InlineKeyboardMarkup)
		Expect(ok).To(BeTrue())
		Expect(markup.InlineKeyboard).To(HaveLen(1))
		Expect(markup.InlineKeyboard[0]).To(HaveLen(2))
	})

	It("builds a resizable reply menu", func() {
		markup, ok := SendParams(10, Text("menu").WithMenu("View meetings", "Add note")).ReplyMarkup.(*telego.ReplyKeyboardMarkup)
		Expect(ok).To(BeTrue())
		Expect(markup.ResizeKeyboard).To(BeTrue())
		Expect(markup.Keyboard).To(HaveLen(2))
		Expect(markup.Keyboard[0][0].Text).To(Equal("View meetings"))
	})

	It("removes the menu when asked", func() {
		markup, ok := SendParams(10, Text("bye").WithoutMenu()).ReplyMarkup.(*telego.ReplyKeyboardRemove)
		Expect(ok).To(BeTrue())
		Expect(markup.RemoveKeyboard).To(BeTrue())
	})

	It("prefers inline buttons over a menu", func() {
		reply := Text("both").WithMenu("Back").WithButtons(Button{Text: "Go", Data: "start_bot"})

		_, ok := SendParams(10, reply).ReplyMarkup.(*telego.InlineKeyboardMarkup)
		Expect(ok).To(BeTrue())
	})
})

var _ = DescribeTable("parseRetryAfter",
	func(err error, expected int) {
		Expect(parseRetryAfter(err)).To(Equal(expected))
	},
	Entry("nil error", nil, 0),
	Entry("unrelated error", errors.New("telego: sendMessage: api: 400 \"Bad Request\""), 0),
	Entry("flood wait", errors.New("telego: sendMessage: api: 429 \"Too Many Requests: retry after 5\", migrate to chat ID: 0, retry after: 5"), 5),
	Entry("flood wait without delay", errors.New("telego: sendMessage: api: 429 \"Too Many Requests\""), 0),
)
