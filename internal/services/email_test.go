package services

import (
	"context"
	"errors"
	"testing"

	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if m.err != nil {
		return m.err
	}
	m.to, m.subject, m.html, m.text = to, subject, html, text
	return nil
}

type fakeRenderer struct {
	name string
	err  error
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	r.name = name
	d := data.(*domain.CourtesyGrantedEmailData)
	return "Your pass for " + d.EventName, "<p>" + d.RecipientName + "</p>", d.RecipientName, nil
}

func TestEmailService_SendCourtesyGranted(t *testing.T) {
	ctx := context.Background()
	data := &domain.CourtesyGrantedEmailData{Email: "ada@example.com", RecipientName: "Ada", EventName: "GopherCon"}

	tests := []struct {
		name     string
		data     *domain.CourtesyGrantedEmailData
		mailer   *fakeMailer
		renderer *fakeRenderer
		wantErr  bool
	}{
		{name: "sends rendered template", data: data, mailer: &fakeMailer{}, renderer: &fakeRenderer{}},
		{name: "nil data", data: nil, mailer: &fakeMailer{}, renderer: &fakeRenderer{}, wantErr: true},
		{name: "no recipient", data: &domain.CourtesyGrantedEmailData{EventName: "X"}, mailer: &fakeMailer{}, renderer: &fakeRenderer{}, wantErr: true},
		{name: "render failure", data: data, mailer: &fakeMailer{}, renderer: &fakeRenderer{err: errors.New("bad template")}, wantErr: true},
		{name: "send failure", data: data, mailer: &fakeMailer{err: errors.New("ses down")}, renderer: &fakeRenderer{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewEmailService(tt.mailer, tt.renderer, discardLogger())
			err := svc.SendCourtesyGranted(ctx, tt.data)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, courtesyGrantedTemplate, tt.renderer.name)
			assert.Equal(t, "ada@example.com", tt.mailer.to)
			assert.Equal(t, "Your pass for GopherCon", tt.mailer.subject)
		})
	}
}
