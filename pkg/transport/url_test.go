package transport_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/transport"
)

func TestBuildURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		apiURL  string
		userID  string
		depts   []string
		want    string
		wantErr error
	}{
		{
			name:   "user only",
			apiURL: "http://x",
			userID: "u1",
			want:   "http://x/notifications/subscribe?userId=u1",
		},
		{
			name:   "trailing slash is stripped",
			apiURL: "http://x/",
			userID: "u1",
			want:   "http://x/notifications/subscribe?userId=u1",
		},
		{
			name:   "base path is kept",
			apiURL: "https://api.example.com/v1/",
			userID: "u1",
			want:   "https://api.example.com/v1/notifications/subscribe?userId=u1",
		},
		{
			name:   "departments are comma joined and encoded",
			apiURL: "http://x",
			userID: "u1",
			depts:  []string{"d1", "d2"},
			want:   "http://x/notifications/subscribe?userId=u1&departmentIds=d1%2Cd2",
		},
		{
			name:   "single comma separated department string",
			apiURL: "http://x",
			userID: "u1",
			depts:  []string{"d1, d2,,"},
			want:   "http://x/notifications/subscribe?userId=u1&departmentIds=d1%2Cd2",
		},
		{
			name:   "user id is escaped",
			apiURL: "http://x",
			userID: "jane doe&x=1",
			want:   "http://x/notifications/subscribe?userId=jane%20doe%26x%3D1",
		},
		{
			name:   "empty departments are omitted",
			apiURL: "http://x",
			userID: "u1",
			depts:  []string{"", " "},
			want:   "http://x/notifications/subscribe?userId=u1",
		},
		{
			name:    "missing api url",
			userID:  "u1",
			wantErr: transport.ErrInvalidURL,
		},
		{
			name:    "unsupported scheme",
			apiURL:  "ftp://x",
			userID:  "u1",
			wantErr: transport.ErrInvalidURL,
		},
		{
			name:    "missing user id",
			apiURL:  "http://x",
			wantErr: transport.ErrMissingUserID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := transport.BuildURL(tt.apiURL, tt.userID, tt.depts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, transport.SplitIDs("a,b", " c "))
	assert.Nil(t, transport.SplitIDs())
	assert.Nil(t, transport.SplitIDs(",", ""))
}
