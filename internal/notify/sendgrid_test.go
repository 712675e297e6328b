package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySendGridResponse(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantKind      ErrorKind
		wantRetriable bool
	}{
		{
			name:          "sandbox testing emails message",
			status:        403,
			body:          `{"errors":[{"message":"You can only send testing emails to your own address"}]}`,
			wantKind:      KindSandboxRestricted,
			wantRetriable: false,
		},
		{
			name:          "sandbox verify domain message",
			status:        400,
			body:          `{"errors":[{"message":"Please verify a domain before sending"}]}`,
			wantKind:      KindSandboxRestricted,
			wantRetriable: false,
		},
		{
			name:          "sandbox unverified domain message",
			status:        403,
			body:          `{"errors":[{"message":"The from domain is not verified"}]}`,
			wantKind:      KindSandboxRestricted,
			wantRetriable: false,
		},
		{
			name:          "rate limited",
			status:        429,
			body:          `{"errors":[{"message":"rate limit exceeded"}]}`,
			wantKind:      KindRateLimited,
			wantRetriable: true,
		},
		{
			name:          "bad credentials",
			status:        401,
			body:          `{"errors":[{"message":"authorization required"}]}`,
			wantKind:      KindAuthOrConfig,
			wantRetriable: false,
		},
		{
			name:          "forbidden without sandbox phrasing",
			status:        403,
			body:          `{"errors":[{"message":"access forbidden"}]}`,
			wantKind:      KindAuthOrConfig,
			wantRetriable: false,
		},
		{
			name:          "server error",
			status:        503,
			body:          "service unavailable",
			wantKind:      KindTransient,
			wantRetriable: true,
		},
		{
			name:          "unclassified client error",
			status:        422,
			body:          `{"errors":[{"message":"invalid payload"}]}`,
			wantKind:      KindUnknown,
			wantRetriable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := classifySendGridResponse(tt.status, tt.body)
			assert.Equal(t, tt.wantKind, cerr.Kind)
			assert.Equal(t, tt.wantRetriable, cerr.Retriable)
		})
	}
}

func TestSandboxDetectionIsCaseInsensitive(t *testing.T) {
	assert.True(t, isSandboxDetail("YOU CAN ONLY SEND TESTING EMAILS"))
	assert.True(t, isSandboxDetail("please Verify A Domain first"))
	assert.False(t, isSandboxDetail("mailbox does not exist"))
}

func TestNewSendGridChannelRequiresAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridChannel(SendGridConfig{FromEmail: "noreply@example.com"}, nil))
	assert.NotNil(t, NewSendGridChannel(SendGridConfig{APIKey: "SG.test", FromEmail: "noreply@example.com"}, nil))
}

func TestTruncateCapsLongBodies(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	got := truncate(string(long), 200)
	assert.Len(t, got, 203)
	assert.Equal(t, "short", truncate("short", 200))
}
