package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyNumberNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+1 (555) 010-2030", "15550102030"},
		{"555.010.2030", "5550102030"},
		{"15550102030", "15550102030"},
		{"", ""},
		{"no digits here", ""},
	}

	for _, tc := range cases {
		account := Account{WhatsAppNumber: tc.in}
		assert.Equal(t, tc.want, account.NotifyNumber(), "input %q", tc.in)
	}
}
