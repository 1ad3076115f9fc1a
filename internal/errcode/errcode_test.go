package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Label(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{InvalidInput, "Error: InvalidInput"},
		{InvalidProgramAddress, "Error: InvalidProgramAddress"},
		{ExceededSlippage, "Error: ExceededSlippage"},
		{Unknown, "Error: Unknown"},
		{Code(200), "Error: Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Label())
		})
	}
}

func TestCode_WrappedIs(t *testing.T) {
	err := fmt.Errorf("process swap: %w", ExceededSlippage)

	assert.True(t, errors.Is(err, ExceededSlippage))
	assert.False(t, errors.Is(err, InvalidInput))

	var code Code
	assert.True(t, errors.As(err, &code))
	assert.Equal(t, ExceededSlippage, code)
}

func TestCode_Valid(t *testing.T) {
	assert.True(t, Unknown.Valid())
	assert.False(t, Code(13).Valid())
	assert.Contains(t, Code(13).Error(), "0xd")
}
