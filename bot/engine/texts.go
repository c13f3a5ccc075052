package engine

import (
	"fmt"
	"strings"

	"askrelay/bot/storage"
)

const (
	msgAdminWelcome = "Welcome, you are the administrator. Available commands:\n" +
		"/see_questions - view questions\n" +
		"/answer - answer a question\n" +
		"/see_answers - view your answers."
	msgNoPending  = "No new questions."
	msgNoAnswered = "No answered questions."
	msgAskID      = "Please provide the ID of the question you want to answer."
	msgInvalidID  = "Please enter a valid numeric ID."
	msgIDNotFound = "No question found with that ID."
	msgAnswered   = "That question has already been answered."
	msgAskAnswer  = "Please enter the message to send to the user."
	msgAnswerSent = "Your message has been sent to the user."

	msgAdminUnknown = "Unknown command.\nAvailable commands:\n" +
		"/see_questions\n/see_answers\n/answer"

	msgUserWelcome = "Hello! Available commands:\n" +
		"/contact - contact the administrator\n" +
		"/see_questions - view your questions."
	msgAskMessage = "Write the message you want to send to the administrator."
	msgUserSaved  = "Your message has been sent to the administrator."

	msgUserUnknown = "Unknown command. Available commands:\n" +
		"/contact - contact the administrator\n" +
		"/see_questions - view your questions."

	msgNoUserQuestions = "You have no questions."
)

func formatPendingList(questions []storage.Question) string {
	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "ID: %d\nUser: %s\nMessage: %s\nReply: /answer_%d\n\n",
			q.ID, q.Username, q.Question, q.ID)
	}
	return b.String()
}

func formatAnsweredList(questions []storage.Question) string {
	var b strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&b, "ID: %d\nUser: %s\nQuestion:\n%s\nAnswer:\n%s\n\n",
			q.ID, q.Username, q.Question, q.Answer)
	}
	return b.String()
}

func formatUserHistory(questions []storage.Question) string {
	if len(questions) == 0 {
		return msgNoUserQuestions
	}
	var b strings.Builder
	b.WriteString("Your questions\n\n")
	for _, q := range questions {
		fmt.Fprintf(&b, "Question:\n%s\nAnswer:\n%s\n\n", q.Question, q.Answer)
	}
	return b.String()
}

func formatAnswerDelivery(question, answer string) string {
	return fmt.Sprintf("You received a new answer!\nYour question:\n%s\nAdministrator's reply:\n%s\n",
		question, answer)
}

func formatAdminNotification(username, question string, id int64) string {
	return fmt.Sprintf("New question\nFrom: @%s\nQuestion:\n%s\nReply: /answer_%d",
		username, question, id)
}
