// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertToPgx5DSN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"postgres://u:p@localhost:5432/murmur", "pgx5://u:p@localhost:5432/murmur"},
		{"postgresql://u:p@localhost/murmur", "pgx5://u:p@localhost/murmur"},
		{"pgx5://u:p@localhost/murmur", "pgx5://u:p@localhost/murmur"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertToPgx5DSN(tt.input))
		})
	}
}
