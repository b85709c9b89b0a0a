// AngelaMos | 2026
// lifetime_test.go

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "30s", want: 30 * time.Second},
		{in: "15m", want: 15 * time.Minute},
		{in: "12h", want: 12 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "", wantErr: true},
		{in: "15", wantErr: true},
		{in: "m", wantErr: true},
		{in: "1w", wantErr: true},
		{in: "-5m", wantErr: true},
		{in: "1.5h", wantErr: true},
		{in: " 15m", wantErr: true},
		{in: "0s", wantErr: true},
		{in: "0d", wantErr: true},
		{in: "106751d", want: 106751 * 24 * time.Hour},
		{in: "106752d", wantErr: true},
		{in: "200000d", wantErr: true},
		{in: "99999999999999999999s", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLifetime(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpiresInSeconds(t *testing.T) {
	assert.Equal(t, 900, ExpiresInSeconds("15m"))
	assert.Equal(t, 3600, ExpiresInSeconds("1h"))
	assert.Equal(t, 900, ExpiresInSeconds("forever"))
	assert.Equal(t, 900, ExpiresInSeconds("0s"))
	assert.Equal(t, 900, ExpiresInSeconds("200000d"))
}
