package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"igdm/pkg/table"
)

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender uses notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name=igdm", title, message).Run()
}

// MacOSNotificationSender uses osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
	return exec.Command("osascript", "-e", script).Run()
}

func appleScriptString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// WindowsNotificationSender raises a toast through PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		$template = [Windows.UI.Notifications.ToastTemplateType]::ToastText02
		$xml = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent($template)
		$text = $xml.GetElementsByTagName("text")
		$text.Item(0).AppendChild($xml.CreateTextNode('%s')) | Out-Null
		$text.Item(1).AppendChild($xml.CreateTextNode('%s')) | Out-Null
		$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("igdm").Show($toast)
	`, powerShellString(title), powerShellString(message))

	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

func powerShellString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// RunSummary is what a finished run reports
type RunSummary struct {
	Rows   int
	Failed int
	Path   string
}

// SummarizeRun counts the rows of a finished table. path is empty when the
// table was not saved.
func SummarizeRun(t *table.Table, path string) RunSummary {
	if t == nil {
		return RunSummary{Path: path}
	}
	return RunSummary{Rows: t.Len(), Failed: t.Failed(), Path: path}
}

func (s RunSummary) Title() string {
	if s.Failed > 0 {
		return "Batch finished with errors"
	}
	return "Batch finished"
}

func (s RunSummary) Message() string {
	msg := fmt.Sprintf("%d messages generated", s.Rows-s.Failed)
	if s.Path != "" {
		msg += ", saved to " + s.Path
	}
	if s.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", s.Failed)
	}
	return msg
}

// Notifier reports finished runs on the console and the desktop
type Notifier struct {
	sender NotificationSender
}

// NewNotifier picks the sender for the current platform. Unsupported
// platforms only get the console line.
func NewNotifier() *Notifier {
	return NewNotifierWithSender(platformSender(runtime.GOOS))
}

// NewNotifierWithSender creates a Notifier that delivers through sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender}
}

func platformSender(goos string) NotificationSender {
	switch goos {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	}
	return nil
}

// NotifyRunComplete prints the summary and forwards it to the desktop.
// Delivery failures are ignored.
func (n *Notifier) NotifyRunComplete(s RunSummary) {
	color := Green
	if s.Failed > 0 {
		color = Red
	}
	fmt.Fprintf(Output, "\n%s: %s\n", color(s.Title()), color(s.Message()))

	if n.sender != nil {
		_ = n.sender.Send(s.Title(), s.Message())
	}
}
