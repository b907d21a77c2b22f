package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no comments", in: "Hello {{ name }}", want: "Hello {{ name }}"},
		{name: "empty", in: "", want: ""},
		{name: "closed comment", in: "a {# note #} b", want: "a {# note #} b"},
		{name: "unterminated at end", in: "a {# note", want: "a {# note#}"},
		{name: "unterminated before newline", in: "a {# note\nb\nc", want: "a {# note#}\nb\nc"},
		{name: "close on later line is honored", in: "{# one\ntwo #}\nthree", want: "{# one\ntwo #}\nthree"},
		{name: "no nesting", in: "{# a {# b #} c", want: "{# a {# b #} c"},
		{name: "two unterminated", in: "{# a\n{# b", want: "{# a#}\n{# b#}"},
		{name: "open immediately before newline", in: "x{#\ny", want: "x{##}\ny"},
		{name: "overlapping marker is not a close", in: "{#}", want: "{#}#}"},
		{name: "closed then unterminated", in: "{# a #}{# b\nc", want: "{# a #}{# b#}\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"{#",
		"{#\n",
		"{# a\n{# b\n{# c",
		"{# a #} {# b\n {{ x }} {# c",
		"x {# y #",
		"{#}{#}{#}",
		"line one {# unterminated\nline two {% if x %}{{ x }}{% endif %}",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no comments", in: "Hello {{ name }}", want: "Hello {{ name }}"},
		{name: "one line", in: "a {# note #} b", want: "a  b"},
		{name: "multi line", in: "a {# multi\nline #} b", want: "a  b"},
		{name: "two comments", in: "{# x #}1{# y\nz #}2", want: "12"},
		{name: "unterminated kept", in: "a {# note", want: "a {# note"},
		{name: "overlapping marker", in: "{#}#}x", want: "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripComments(tt.in))
		})
	}
}
