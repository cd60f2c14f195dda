package widget

import (
	"fmt"

	"github.com/indieinfra/dropper/dropzone"
	"github.com/indieinfra/dropper/notify"
)

// Messages holds the notification texts. Titles for rejections are
// format strings taking the file type or name.
type Messages struct {
	SuccessTitle       string
	SuccessDescription string
	FailureTitle       string
	FailureFallback    string

	InvalidTypeTitle       string
	InvalidTypeDescription string
	TooLargeTitle          string
	TooSmallTitle          string
	TooManyTitle           string
}

func DefaultMessages() Messages {
	return Messages{
		SuccessTitle:       "Upload successful!",
		SuccessDescription: "Your files have been uploaded.",
		FailureTitle:       "Upload failed.",
		FailureFallback:    "Something went wrong.",

		InvalidTypeTitle:       "%s type is not supported.",
		InvalidTypeDescription: "Please choose a %s image instead",
		TooLargeTitle:          "%s is too large.",
		TooSmallTitle:          "%s is too small.",
		TooManyTitle:           "Too many files.",
	}
}

// withDefaults fills every empty field from DefaultMessages.
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	fill(&m.SuccessTitle, d.SuccessTitle)
	fill(&m.SuccessDescription, d.SuccessDescription)
	fill(&m.FailureTitle, d.FailureTitle)
	fill(&m.FailureFallback, d.FailureFallback)
	fill(&m.InvalidTypeTitle, d.InvalidTypeTitle)
	fill(&m.InvalidTypeDescription, d.InvalidTypeDescription)
	fill(&m.TooLargeTitle, d.TooLargeTitle)
	fill(&m.TooSmallTitle, d.TooSmallTitle)
	fill(&m.TooManyTitle, d.TooManyTitle)

	return m
}

func (m Messages) success() notify.Notification {
	return notify.Notification{
		Title:       m.SuccessTitle,
		Description: m.SuccessDescription,
		Variant:     notify.Default,
	}
}

func (m Messages) failure(description string) notify.Notification {
	return notify.Notification{
		Title:       m.FailureTitle,
		Description: description,
		Variant:     notify.Destructive,
	}
}

// rejection describes only the first rejected entry.
func (m Messages) rejection(first dropzone.Rejection, accept dropzone.Accept) notify.Notification {
	n := notify.Notification{Variant: notify.Destructive}

	switch {
	case first.Has(dropzone.FileInvalidType):
		n.Title = fmt.Sprintf(m.InvalidTypeTitle, first.File.Type)
		n.Description = fmt.Sprintf(m.InvalidTypeDescription, accept.Phrase())
	case first.Has(dropzone.TooManyFiles):
		n.Title = m.TooManyTitle
		n.Description = firstMessage(first)
	case first.Has(dropzone.FileTooLarge):
		n.Title = fmt.Sprintf(m.TooLargeTitle, first.File.Name)
		n.Description = firstMessage(first)
	case first.Has(dropzone.FileTooSmall):
		n.Title = fmt.Sprintf(m.TooSmallTitle, first.File.Name)
		n.Description = firstMessage(first)
	default:
		n.Title = m.FailureTitle
		n.Description = firstMessage(first)
	}

	return n
}

func firstMessage(r dropzone.Rejection) string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}
