package notify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/stretchr/testify/assert"
)

func TestClassifySESError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
	}{
		{"throttled", &types.TooManyRequestsException{}, KindRateLimited},
		{"message rejected", &types.MessageRejected{}, KindSandboxRestricted},
		{"unverified mail-from domain", &types.MailFromDomainNotVerifiedException{}, KindSandboxRestricted},
		{"account suspended", &types.AccountSuspendedException{}, KindAuthOrConfig},
		{"sending paused", &types.SendingPausedException{}, KindAuthOrConfig},
		{"bad request", &types.BadRequestException{}, KindUnknown},
		{"wrapped rejection", fmt.Errorf("operation error: %w", &types.MessageRejected{}), KindSandboxRestricted},
		{"network failure", errors.New("dial tcp: i/o timeout"), KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := classifySESError(tt.err)
			assert.Equal(t, tt.wantKind, cerr.Kind)
		})
	}
}

func TestNewSESChannelRequiresClient(t *testing.T) {
	assert.Nil(t, NewSESChannel(nil, SESConfig{FromEmail: "noreply@example.com"}, nil))
}
