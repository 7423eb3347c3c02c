package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"git.skobk.in/skobkin/telegram-meeting-bot/conversation"
	"git.skobk.in/skobkin/telegram-meeting-bot/messenger"
	"git.skobk.in/skobkin/telegram-meeting-bot/storage"
)

const questionPreviewLength = 20

func (d *Dialogue) startQuestion(ctx context.Context, req *request) error {
	if err := d.setState(ctx, req, conversation.State{Flow: FlowFeedback, Step: StepAwaitQuestion}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskQuestion))
	return nil
}

// enterQuestion stores the question and forwards it to every organizer
func (d *Dialogue) enterQuestion(ctx context.Context, req *request) error {
	if strings.TrimSpace(req.Text) == "" {
		return invalid(msgQuestionNotText, nil)
	}

	feedback, err := d.storage.CreateFeedback(ctx, req.user.ID, req.Text)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}

	loggerFrom(ctx).Info("bot: Question asked", userAttrs(req.user), "feedback_id", feedback.ID)
	d.send(ctx, req.ChatID, messenger.Text(msgQuestionThanks))

	organizers, err := d.storage.ListOrganizers(ctx)
	if err != nil {
		loggerFrom(ctx).Error("bot: Cannot notify organizers about a question", "feedback_id", feedback.ID, "error", err)
		return nil
	}
	notice := messenger.Text(fmt.Sprintf(msgNewQuestion, req.user.FirstName, feedback.Message)).WithButtons(
		messenger.Button{Text: "Reply", Data: Callback{Action: ActionRespondFeedback, ID: feedback.ID}.Encode()},
	)
	for _, o := range organizers {
		d.send(ctx, o.TelegramID, notice)
	}
	return nil
}

func (d *Dialogue) startAnswerFeedback(ctx context.Context, req *request) error {
	questions, err := d.storage.ListUnansweredFeedback(ctx)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		d.send(ctx, req.ChatID, messenger.Text(msgNoQuestions))
		return nil
	}

	buttons := make([]messenger.Button, 0, len(questions))
	for _, q := range questions {
		author := "Unknown"
		if u, err := d.storage.GetUser(ctx, q.UserID); err == nil {
			author = u.FirstName
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		buttons = append(buttons, messenger.Button{
			Text: fmt.Sprintf("%s: %s", author, preview(q.Message, questionPreviewLength)),
			Data: Callback{Action: ActionRespondFeedback, ID: q.ID}.Encode(),
		})
	}

	if err := d.setState(ctx, req, conversation.State{Flow: FlowFeedbackResponse, Step: StepAwaitSelection}); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgChooseQuestion).WithButtons(buttons...))
	return nil
}

func (d *Dialogue) selectFeedback(ctx context.Context, req *request) error {
	feedback, err := d.storage.GetFeedback(ctx, req.callback.ID)
	if err != nil {
		return notFound(err, msgQuestionMissing)
	}
	if feedback.Answered {
		d.send(ctx, req.ChatID, messenger.Text(msgAlreadyAnswered))
		return nil
	}

	state := conversation.State{Flow: FlowFeedbackResponse, Step: StepAwaitResponseText, FeedbackID: feedback.ID}
	if err := d.setState(ctx, req, state); err != nil {
		return err
	}
	d.send(ctx, req.ChatID, messenger.Text(msgAskAnswer))
	return nil
}

// enterAnswer delivers the answer to the author. A question is answered at
// most once even when several organizers reply at the same time.
func (d *Dialogue) enterAnswer(ctx context.Context, req *request) error {
	answer := strings.TrimSpace(req.Text)
	if answer == "" {
		return invalid(msgEmptyAnswer, nil)
	}

	feedback, err := d.storage.GetFeedback(ctx, req.state.FeedbackID)
	if err != nil {
		return notFound(err, msgQuestionMissing)
	}
	author, err := d.storage.GetUser(ctx, feedback.UserID)
	if err != nil {
		return notFound(err, msgUserNotFound)
	}

	marked, err := d.storage.MarkFeedbackAnswered(ctx, feedback.ID)
	if err != nil {
		return err
	}
	if err := d.clearState(ctx, req); err != nil {
		return err
	}
	if !marked {
		d.send(ctx, req.ChatID, messenger.Text(msgAlreadyAnswered))
		return nil
	}

	loggerFrom(ctx).Info("bot: Question answered", userAttrs(req.user), "feedback_id", feedback.ID)
	d.send(ctx, author.TelegramID, messenger.Text(fmt.Sprintf(msgAnswer, feedback.Message, answer)))
	d.send(ctx, req.ChatID, messenger.Text(msgAnswerSent))
	return nil
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
