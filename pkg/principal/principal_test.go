// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

package principal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huynhtran/opsboard/pkg/principal"
)

/*
TestNormalize verifies trimming, case folding, and Unicode normalization.
*/
func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already_canonical", "owner", "owner"},
		{"surrounding_whitespace", "  owner \t", "owner"},
		{"mixed_case", "Ops.Admin", "ops.admin"},
		{"fullwidth_compat", "ｏｗｎｅｒ", "owner"}, // ｏｗｎｅｒ
		{"empty", "", ""},
		{"only_whitespace", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, principal.Normalize(tt.input))
		})
	}
}

/*
TestNormalize_Idempotent confirms normalizing twice changes nothing.
*/
func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Owner", "  Night-Shift  ", "ｏｐｓ"}
	for _, input := range inputs {
		once := principal.Normalize(input)
		assert.Equal(t, once, principal.Normalize(once))
	}
}
