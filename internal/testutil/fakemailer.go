package testutil

import "sync"

// FakeMailer records welcome emails instead of sending them.
type FakeMailer struct {
	mu   sync.Mutex
	sent []SentMail
	Fail error // returned from every send when non-nil
}

type SentMail struct {
	Username string
	Email    string
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{}
}

func (f *FakeMailer) SendWelcomeEmail(username, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Fail != nil {
		return f.Fail
	}
	f.sent = append(f.sent, SentMail{Username: username, Email: email})
	return nil
}

// Sent returns a copy of the recorded sends.
func (f *FakeMailer) Sent() []SentMail {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]SentMail, len(f.sent))
	copy(out, f.sent)
	return out
}
