package testutil

import "sync"

// Message is one recorded notification.
type Message struct {
	Title, Text string
	Alert       bool
}

// Notifier records notifications instead of showing them.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
}

func (n *Notifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{Title: title, Text: message})
	return nil
}

func (n *Notifier) Alert(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{Title: title, Text: message, Alert: true})
	return nil
}

// Messages returns a copy of what was recorded.
func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.messages...)
}
