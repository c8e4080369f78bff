package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMentionsChildAge(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "10歳", want: true},
		{text: "0歳", want: true},
		{text: "私は9歳です", want: true},
		{text: "11 さい", want: true},
		{text: "９歳だよ", want: true},
		{text: "１１歳", want: true},
		{text: "I am 9 years old", want: true},
		{text: "she is 8 Years Old.", want: true},
		{text: "7yo here", want: true},
		{text: "12歳", want: false},
		{text: "20歳です", want: false},
		{text: "110歳", want: false},
		{text: "I am 15 years old", want: false},
		{text: "9 yolks", want: false},
		{text: "5 years older", want: false},
		{text: "hello", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, mentionsChildAge(tt.text))
		})
	}
}
