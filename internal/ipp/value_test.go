package ipp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueTypeName(t *testing.T) {
	assert.Equal(t, "int", IntValue(5).TypeName())
	assert.Equal(t, "bool", BoolValue(true).TypeName())
	assert.Equal(t, "string", StringValue("x").TypeName())
	assert.Equal(t, "nil", NilValue().TypeName())
	assert.Equal(t, "", UnsetValue().TypeName())
}

func TestValueRender(t *testing.T) {
	assert.Equal(t, "42", IntValue(42).Render())
	assert.Equal(t, "true", BoolValue(true).Render())
	assert.Equal(t, "false", BoolValue(false).Render())
	assert.Equal(t, "hi", StringValue("hi").Render())
	assert.Equal(t, "", NilValue().Render())
}

func TestValueRenderPanicsOnUnset(t *testing.T) {
	assert.Panics(t, func() { UnsetValue().Render() })
}

func TestValueIsAssigned(t *testing.T) {
	assert.False(t, UnsetValue().IsAssigned())
	assert.True(t, NilValue().IsAssigned())
	assert.True(t, IntValue(0).IsAssigned())
}

func TestValueEqual(t *testing.T) {
	assert.True(t, IntValue(3).Equal(IntValue(3)))
	assert.False(t, IntValue(3).Equal(IntValue(4)))
	assert.False(t, IntValue(3).Equal(StringValue("3")))
	assert.True(t, NilValue().Equal(NilValue()))
	assert.False(t, NilValue().Equal(IntValue(0)))
}

func TestValueLess(t *testing.T) {
	assert.True(t, IntValue(1).Less(IntValue(2)))
	assert.False(t, IntValue(2).Less(IntValue(1)))
	assert.True(t, BoolValue(false).Less(BoolValue(true)))
	assert.True(t, StringValue("a").Less(StringValue("b")))
}
