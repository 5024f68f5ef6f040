package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpen_RequiresLocation(t *testing.T) {
	testCases := []struct {
		name string
		opts []Option
	}{
		{"no bucket", []Option{WithKey("registries/amici.xlsx")}},
		{"no key", []Option{WithBucket("amici")}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Open(context.Background(), append(tc.opts, WithRegion("us-east-1"))...)
			assert.ErrorContains(t, err, "bucket and a key")
		})
	}
}

func TestOptions(t *testing.T) {
	w := &Workbook{}
	for _, o := range []Option{
		WithRegion("us-east-1"),
		WithBucket("amici"),
		WithKey("registries/amici.xlsx"),
		WithEndpoint("http://localhost:4566"),
		WithForcePathStyle(true),
	} {
		o(w)
	}

	assert.Equal(t, "amici", w.Bucket)
	assert.Equal(t, "registries/amici.xlsx", w.Key)
	assert.Equal(t, "us-east-1", w.conn.Region)
	assert.Equal(t, "http://localhost:4566", w.conn.Endpoint)
	assert.True(t, w.conn.ForcePathStyle)
}
