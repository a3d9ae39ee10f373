package domain

// InboundMessage is the transport-agnostic shape of one group or channel
// message handed to ingestion.
type InboundMessage struct {
	Text            string
	Caption         string
	MessageID       int
	ChatID          int64
	ChatTitle       string
	ChatUsername    string
	AuthorID        int64
	AuthorUsername  string
	AuthorFirstName string
}

// Body returns the message text, falling back to the caption.
func (m InboundMessage) Body() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// Link is one actionable URL attached to an outbound notification.
type Link struct {
	Label string
	URL   string
}
