package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCodeThroughWrapping(t *testing.T) {
	base := New(CodePaymentRequired, "insufficient tokens")
	wrapped := fmt.Errorf("analyze: %w", base)

	assert.True(t, IsCode(wrapped, CodePaymentRequired))
	assert.False(t, IsCode(wrapped, CodeNotFound))
	assert.Equal(t, CodePaymentRequired, CodeOf(wrapped))
	assert.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusPaymentRequired, HTTPStatus(CodePaymentRequired))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(CodeNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeInvalid))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeInternal))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeUnknown))
}

func TestWrapNil(t *testing.T) {
	e := Wrap(nil, CodeInternal, "boom")
	assert.Nil(t, e.Err)
	assert.Equal(t, "internal: boom", e.Error())
}
