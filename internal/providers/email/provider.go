package email

import "context"

type Provider interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}

// NoOpProvider drops everything. Used in tests and local development when
// no email backend is configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	return nil
}
