package worker

import (
	"context"
	"os/exec"

	"github.com/dmitrijs2005/storyshare/internal/logging"
	"github.com/dmitrijs2005/storyshare/internal/worker/push"
)

// Notifier presents a notification to the user.
type Notifier interface {
	Show(ctx context.Context, n push.Notification) error
}

// LogNotifier writes notifications to the log. Used headless and as the
// fallback when no desktop notification tool is available.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notify")}
}

func (l *LogNotifier) Show(ctx context.Context, n push.Notification) error {
	l.log.Info(ctx, "notification", "title", n.Title, "body", n.Body, "tag", n.Tag, "storyId", n.Data.StoryID)
	return nil
}

// ExecNotifier shells out to notify-send for desktop notifications.
type ExecNotifier struct {
	bin string
}

// NewDesktopNotifier returns an ExecNotifier when notify-send is installed,
// otherwise the log fallback.
func NewDesktopNotifier(log logging.Logger) Notifier {
	bin, err := exec.LookPath("notify-send")
	if err != nil {
		return NewLogNotifier(log)
	}
	return &ExecNotifier{bin: bin}
}

func (e *ExecNotifier) Show(ctx context.Context, n push.Notification) error {
	args := []string{"--app-name", push.DefaultTitle}
	if n.Icon != "" {
		args = append(args, "--icon", n.Icon)
	}
	args = append(args, n.Title, n.Body)
	return exec.CommandContext(ctx, e.bin, args...).Run()
}
