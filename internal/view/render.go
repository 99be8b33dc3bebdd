// Package view renders a session snapshot as terminal text.
package view

import (
	"fmt"
	"io"
	"os"
	"strings"

	"german-reading-quiz/internal/quiz"
	"german-reading-quiz/internal/session"
	"github.com/mattn/go-isatty"
)

const (
	Header            = "German Reading for Mira!"
	LoadingMessage    = "Loading a new story for you..."
	CongratsTitle     = "Congratulations!"
	CongratsMessage   = "You have completed all the readings at this level. You are amazing!"
	NoReadingMessage  = "No story could be loaded. Type 'next' to try again."
	submitHint        = "All questions answered. Type 'submit' to send your answers."
	nextHint          = "Type 'next' for the next reading."
	answerHint        = "Answer with <question> <letter>, e.g. '1 a'."
	missingQuizNotice = "The questions for this story could not be loaded. Type 'next' to try another."
)

// Renderer writes snapshots to a terminal or plain stream.
type Renderer struct {
	Color bool
}

// ForFile enables color only when f is a terminal.
func ForFile(f *os.File) Renderer {
	return Renderer{Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// Render writes the full view for snap.
func (r Renderer) Render(w io.Writer, snap session.Snapshot) error {
	var b strings.Builder

	if snap.Phase == session.Loading {
		b.WriteString(LoadingMessage + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s\n\n", r.bold(Header))

	switch {
	case snap.Phase == session.Completed:
		fmt.Fprintf(&b, "%s\n%s\n", r.bold(CongratsTitle), CongratsMessage)
		_, err := io.WriteString(w, b.String())
		return err
	case snap.Reading == nil:
		b.WriteString(NoReadingMessage + "\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "== %s ==\n%s\n\n", snap.Reading.Title, Passage(snap.Reading.Text, r.Color))

	if snap.Results != nil {
		fmt.Fprintf(&b, "%s\nYou scored %d out of %d!\n\n", r.bold("Your Results!"), snap.Results.Score, snap.Results.Total)
	}

	if len(snap.Questions) > 0 {
		r.renderQuiz(&b, snap)
	} else if snap.Phase == session.InProgress {
		b.WriteString(missingQuizNotice + "\n")
	}

	if snap.ShowNext {
		b.WriteString("\n[ Next Reading ] " + nextHint + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r Renderer) renderQuiz(b *strings.Builder, snap session.Snapshot) {
	b.WriteString(r.bold("Quiz"))
	if snap.Results == nil {
		fmt.Fprintf(b, "    %d / %d Answered", snap.Answered, snap.Total)
	}
	b.WriteString("\n")

	for _, q := range snap.Questions {
		fmt.Fprintf(b, "%d. %s\n", q.Number, q.Prompt)
		for _, opt := range q.Options {
			mark := "( )"
			if opt.Selected {
				mark = "(x)"
			}
			fmt.Fprintf(b, "   %s %s. %s\n", mark, opt.Letter, r.label(opt.Text, opt.Label))
		}
	}

	if snap.Results == nil {
		if snap.CanSubmit {
			b.WriteString("\n[ Submit Answers ] " + submitHint + "\n")
		} else {
			b.WriteString("\n" + answerHint + "\n")
		}
	}
}

func (r Renderer) label(text string, l quiz.Label) string {
	if !r.Color {
		if l == quiz.LabelCorrect || l == quiz.LabelUserIncorrect {
			return fmt.Sprintf("%s [%s]", text, l)
		}
		return text
	}
	switch l {
	case quiz.LabelCorrect:
		return ansiGreen + text + ansiReset
	case quiz.LabelUserIncorrect:
		return ansiRed + text + ansiReset
	default:
		return text
	}
}

func (r Renderer) bold(s string) string {
	if !r.Color {
		return s
	}
	return ansiBold + s + ansiReset
}
