package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectBoardArgs(t *testing.T) {
	t.Parallel()

	const id = "0b9e5d3c-8f5a-4c55-9a57-5e0f3f1d2a11"

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"lanes"},
			want: []string{"lanes"},
		},
		{
			name: "board id first token",
			in:   []string{"lanes", id},
			want: []string{"lanes", "board", id},
		},
		{
			name: "board id after value flag",
			in:   []string{"lanes", "--server", "http://127.0.0.1:7878", id},
			want: []string{"lanes", "--server", "http://127.0.0.1:7878", "board", id},
		},
		{
			name: "board id after equals flag",
			in:   []string{"lanes", "--actor=act-a", id},
			want: []string{"lanes", "--actor=act-a", "board", id},
		},
		{
			name: "board id after bool flag",
			in:   []string{"lanes", "--pretty", id},
			want: []string{"lanes", "--pretty", "board", id},
		},
		{
			name: "board id after double dash",
			in:   []string{"lanes", "--", id},
			want: []string{"lanes", "--", "board", id},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"lanes", "boards", "show", id},
			want: []string{"lanes", "boards", "show", id},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"lanes", "wat"},
			want: []string{"lanes", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectBoardArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectBoardArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
