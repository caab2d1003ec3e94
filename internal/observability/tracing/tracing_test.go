package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("email", "a@example.com"),
		attribute.String("customer_id", "ABC123"),
		attribute.String("http.route", strings.Repeat("x", 400)),
	)

	assert.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("customer_id"), attrs[0].Key)
	assert.Len(t, attrs[1].Value.AsString(), maxAttributeLength)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New(" boom\nstack ")), "boom")
}
