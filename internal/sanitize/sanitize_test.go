package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "  just words  ", "just words"},
		{"inline tags stripped", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"entities decoded", "fish &amp; chips", "fish & chips"},
		{"paragraphs become lines", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"line breaks kept", "a<br>b", "a\nb"},
		{"script dropped", "hi<script>alert(1)</script> there", "hi there"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}
