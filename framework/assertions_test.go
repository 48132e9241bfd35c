package framework

import (
	"errors"
	"fmt"
	"testing"

	"github.com/launchdarkly/http-selftest/httpwire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResponse() httpwire.Response {
	return httpwire.Response{
		Status:  201,
		Headers: httpwire.NewHeaders(httpwire.Header{Name: "Content-Type", Value: "text/plain"}),
		Body:    "created item 7",
	}
}

func TestFailfIsAssertionError(t *testing.T) {
	err := Failf("value was %d", 3)
	var ae *AssertionError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "value was 3", ae.Message)
	assert.EqualError(t, err, "value was 3")
}

func TestAssertEqual(t *testing.T) {
	assert.NoError(t, AssertEqual(7, 7, "count"))
	assert.NoError(t, AssertEqual("7", 7, "count"))
	assert.EqualError(t, AssertEqual(7, 8, "count"), "count: expected <7> but was <8>")
}

func TestAssertStatus(t *testing.T) {
	assert.NoError(t, AssertStatus(sampleResponse(), 201))
	assert.EqualError(t, AssertStatus(sampleResponse(), 200), "expected status 200 but was 201")
}

func TestAssertHeader(t *testing.T) {
	resp := sampleResponse()
	assert.NoError(t, AssertHeader(resp, "content-type", "text/plain"))
	assert.EqualError(t, AssertHeader(resp, "Content-Type", "application/json"),
		`expected header Content-Type to be "application/json" but was "text/plain"`)
	assert.EqualError(t, AssertHeader(resp, "Location", "/items/7"),
		`expected header Location to be "/items/7" but it was missing`)
}

func TestAssertBodyContains(t *testing.T) {
	assert.NoError(t, AssertBodyContains(sampleResponse(), "item 7"))
	assert.EqualError(t, AssertBodyContains(sampleResponse(), "item 8"), `expected body to contain "item 8"`)
}

func TestAllReturnsFirstError(t *testing.T) {
	assert.NoError(t, All())
	assert.NoError(t, All(nil, nil))
	first, second := fmt.Errorf("first"), fmt.Errorf("second")
	assert.Equal(t, first, All(nil, first, second))
}
