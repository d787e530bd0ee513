package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Notifier sends alert notifications to external channels.
type Notifier interface {
	Notify(ctx context.Context, alerts []Alert) error
}

// slackNotifier posts alert summaries to a Slack incoming webhook.
type slackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlackNotifier creates a Notifier that sends alerts to the given Slack webhook URL.
func NewSlackNotifier(webhookURL string) Notifier {
	return &slackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify posts one message covering all alerts, grouped by task. It returns
// nil without making a request if the alerts slice is empty.
func (s *slackNotifier) Notify(ctx context.Context, alerts []Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	body, err := json.Marshal(buildSlackMessage(alerts))
	if err != nil {
		return fmt.Errorf("marshaling slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// buildSlackMessage renders a header, a severity tally, and one section per
// task listing that task's alerts in the order given.
func buildSlackMessage(alerts []Alert) slackMessage {
	summary := fmt.Sprintf("pulse: %d task alert(s)", len(alerts))

	var order []string
	byTask := make(map[string][]Alert)
	tally := make(map[AlertSeverity]int)
	for _, a := range alerts {
		if _, ok := byTask[a.TaskID]; !ok {
			order = append(order, a.TaskID)
		}
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
		tally[a.Severity]++
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: summary}},
		{Type: "context", Elements: []slackText{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("%s %d high   %s %d medium   %s %d low   _%s_",
				severityEmoji(SeverityHigh), tally[SeverityHigh],
				severityEmoji(SeverityMedium), tally[SeverityMedium],
				severityEmoji(SeverityLow), tally[SeverityLow],
				alerts[0].TriggeredAt.Format("2006-01-02 15:04 MST")),
		}}},
	}

	for i, taskID := range order {
		if i > 0 {
			blocks = append(blocks, slackBlock{Type: "divider"})
		}
		var b strings.Builder
		fmt.Fprintf(&b, "*%s*", taskID)
		for _, a := range byTask[taskID] {
			fmt.Fprintf(&b, "\n%s *[%s]* `%s` %s",
				severityEmoji(a.Severity),
				strings.ToUpper(string(a.Severity)),
				a.Condition,
				a.Message,
			)
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: b.String()},
		})
	}

	return slackMessage{Text: summary, Blocks: blocks}
}

func severityEmoji(severity AlertSeverity) string {
	switch severity {
	case SeverityHigh:
		return "\U0001f534"
	case SeverityMedium:
		return "\U0001f7e1"
	case SeverityLow:
		return "\U0001f535"
	default:
		return "❓"
	}
}
