package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil error", nil, Unknown},
		{"already known", errors.New("already known"), AlreadyKnown},
		{"replacement underpriced", errors.New("replacement transaction underpriced"), ReplacementUnderpriced},
		{"bare underpriced", errors.New("transaction underpriced"), ReplacementUnderpriced},
		{"nonce too low", errors.New("nonce too low"), NonceTooLow},
		{"insufficient funds", errors.New("insufficient funds for gas * price + value"), InsufficientFunds},
		{"execution reverted", errors.New("execution reverted: custom message"), ExecutionRevert},
		{"always failing", errors.New("always failing transaction"), ExecutionRevert},
		{"gas allowance", errors.New("gas required exceeds allowance (30000000)"), ExecutionRevert},
		{"unrecognized", errors.New("connection refused"), ProviderTransient},
		{"case insensitive", errors.New("NONCE TOO LOW"), NonceTooLow},
	}

	c := Default{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.err))
		})
	}
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "already_known", AlreadyKnown.String())
	assert.Equal(t, "unknown", Unknown.String())
}
