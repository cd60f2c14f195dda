package widget

import (
	"fmt"
	"strings"

	"github.com/indieinfra/dropper/dropzone"
)

type Icon string

const (
	IconDragOver Icon = "drag"
	IconLoading  Icon = "loading"
	IconImage    Icon = "image"
)

// View is what a front end should draw for a given State.
type View struct {
	Icon         Icon
	Message      string
	Hint         string
	ShowProgress bool
	Progress     int
}

func Render(s State, accept dropzone.Accept) View {
	v := View{Icon: IconImage}

	switch {
	case s.DragOver:
		v.Icon = IconDragOver
	case s.Uploading || s.Pending:
		v.Icon = IconLoading
	}

	switch {
	case s.Uploading:
		v.Message = "Uploading..."
		v.ShowProgress = true
		v.Progress = s.Progress
	case s.Pending:
		v.Message = "Redirecting, Please wait..."
	case s.DragOver:
		v.Message = "Drop file to upload"
	default:
		v.Message = "Click to upload or drag and drop"
	}

	if !s.Pending {
		v.Hint = accept.Hint()
	}

	return v
}

const barWidth = 20

// String renders the view as a single terminal line.
func (v View) String() string {
	var b strings.Builder
	b.WriteString(v.Message)

	if v.ShowProgress {
		filled := v.Progress * barWidth / 100
		filled = max(0, min(filled, barWidth))
		fmt.Fprintf(&b, " [%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", barWidth-filled), v.Progress)
	}

	if v.Hint != "" {
		fmt.Fprintf(&b, " (%s)", v.Hint)
	}

	return b.String()
}
