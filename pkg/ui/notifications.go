package ui

import (
	"fmt"
	"os/exec"
	"runtime"

	"feedscraper/pkg/models"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	return exec.Command("osascript", "-e", script).Run()
}

// Notifier announces finished watch runs on the desktop
type Notifier struct {
	sender NotificationSender
}

// NewNotifier creates a Notifier for the current platform. Unsupported
// platforms get a notifier that only prints.
func NewNotifier() *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	}
	return &Notifier{sender: sender}
}

// NewNotifierWithSender creates a Notifier over a custom sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

// SendNotification prints the message and forwards it to the desktop
func (n *Notifier) SendNotification(title, message string) {
	if !quiet {
		fmt.Fprintf(out, "\n%s: %s\n", Cyan(title), Yellow(message))
	}
	if n.sender != nil {
		// Ignore errors as notifications are not critical
		_ = n.sender.Send(title, message)
	}
}

// SendError prints and forwards a failure message
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(out, "\n%s: %s\n", Red(title), Red(message))
	if n.sender != nil {
		_ = n.sender.Send(title, message)
	}
}

// NotifyRun reports the outcome of one collection run
func (n *Notifier) NotifyRun(result models.CollectionResult) {
	total := result.TotalItems()
	if total == 0 {
		return
	}
	n.SendNotification("feedscraper", fmt.Sprintf("%d item(s) across %d account(s)", total, len(result)))
}
