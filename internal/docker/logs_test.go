package docker

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func frame(stream byte, payload string) []byte {
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))
	return append(header, payload...)
}

func TestDemuxLogs(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"stderr only", frame(2, "broken\n"), "broken\n"},
		{"interleaved", append(append(frame(1, "step 1\n"), frame(2, "oops\n")...), frame(1, "step 2\n")...), "step 1\noops\nstep 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := demuxLogs(bytes.NewReader(tt.in))
			if got != tt.want {
				t.Errorf("demuxLogs() = %q, want %q", got, tt.want)
			}
		})
	}
}
