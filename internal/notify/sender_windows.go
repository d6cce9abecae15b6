//go:build windows

package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// windowsSender implements Sender for Windows using PowerShell toast notifications
type windowsSender struct{}

func newWindowsSender() Sender { return &windowsSender{} }

// newDarwinSender returns an unsupported sender on windows
func newDarwinSender() Sender { return &unsupportedSender{} }

// newLinuxSender returns an unsupported sender on windows
func newLinuxSender() Sender { return &unsupportedSender{} }

func (s *windowsSender) Available() error {
	if !toolAvailable("powershell") {
		return errors.New("powershell not found")
	}
	return nil
}

// Send shows a toast notification through the Windows Runtime toast API.
func (s *windowsSender) Send(ctx context.Context, title, message string, _ Status) error {
	script := fmt.Sprintf(`
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$textNodes = $template.GetElementsByTagName('text')
$textNodes.Item(0).AppendChild($template.CreateTextNode('%s')) | Out-Null
$textNodes.Item(1).AppendChild($template.CreateTextNode('%s')) | Out-Null
$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('jobdone').Show($toast)
`, escapeForPowerShell(title), escapeForPowerShell(message))

	return exec.CommandContext(ctx, "powershell", "-ExecutionPolicy", "Bypass", "-NoProfile", "-Command", script).Run()
}

func (s *windowsSender) Tool() string { return "powershell" }

// escapeForPowerShell escapes special characters for PowerShell strings
func escapeForPowerShell(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '\'':
			b.WriteString("''")
		case '`', '$':
			b.WriteByte('`')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
