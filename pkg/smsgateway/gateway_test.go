package smsgateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize("+1 650-253-0000", "")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	got, err = Normalize("(650) 253-0000", "US")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)

	_, err = Normalize("12", "US")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = Normalize("", "US")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestMockGatewayRecordsAndFails(t *testing.T) {
	g := NewMockGateway()
	g.Fail = func(phone string) error {
		if phone == "+10000000000" {
			return errors.New("carrier rejected")
		}
		return nil
	}

	_, err := g.SendSMS(context.Background(), "+16502530000", "hello")
	require.NoError(t, err)
	_, err = g.SendSMS(context.Background(), "+10000000000", "hello")
	assert.EqualError(t, err, "carrier rejected")

	msgs := g.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+16502530000", msgs[0].Phone)
}

func TestMockGatewayHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockGateway().SendSMS(ctx, "+16502530000", "hello")
	assert.ErrorIs(t, err, context.Canceled)
}
