package email

import (
	"sync"

	"tradehub_backend/internal/logger"
)

// MockProvider логирует письма вместо отправки.
// Используется в development и в тестах.
type MockProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) Send(email *Email) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sent = append(p.Sent, email)
	logger.Info("mock email", "to", email.To, "subject", email.Subject)
	return nil
}

func (p *MockProvider) SendTemplate(to string, templateName string, data TemplateData) error {
	subject, html, err := Render(templateName, data)
	if err != nil {
		return err
	}
	return p.Send(&Email{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: html,
	})
}

func (p *MockProvider) Validate() error { return nil }
func (p *MockProvider) Close() error    { return nil }

// SentTo возвращает письма, адресованные получателю (для тестов)
func (p *MockProvider) SentTo(addr string) []*Email {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []*Email
	for _, e := range p.Sent {
		for _, to := range e.To {
			if to == addr {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
