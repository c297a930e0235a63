package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"gs://reports/Amazon Sale Report.csv", "reports", "Amazon Sale Report.csv", false},
		{"gs://reports/2022/q2/sales.csv", "reports", "2022/q2/sales.csv", false},
		{"gs://reports", "", "", true},
		{"gs://reports/", "", "", true},
		{"s3://reports/sales.csv", "", "", true},
		{"sales.csv", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, object, err := ParseURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestObjectReader_CloseWithoutClient(t *testing.T) {
	r := NewObjectReader()
	assert.NoError(t, r.Close())
}
