package importer

import (
	"reflect"
	"testing"
)

func TestSplitErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want []string
	}{
		{
			name: "single message",
			msg:  "duplicate key value violates unique constraint",
			want: []string{"duplicate key value violates unique constraint"},
		},
		{
			name: "composite message",
			msg:  "first failure-\n-second failure-\n-third failure",
			want: []string{"first failure", "second failure", "third failure"},
		},
		{
			name: "empty fragments dropped",
			msg:  "only failure-\n-",
			want: []string{"only failure"},
		},
		{
			name: "empty message",
			msg:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitErrors(tt.msg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitErrors(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestJoinSplitRoundTrip(t *testing.T) {
	msgs := []string{"a", "b", "c"}
	got := SplitErrors(JoinErrors(msgs))
	if !reflect.DeepEqual(got, msgs) {
		t.Errorf("round trip = %v, want %v", got, msgs)
	}
}
