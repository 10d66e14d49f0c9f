package ipc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vaani.sock")

	var got []ControlMessage
	srv, err := StartServer(path, func(msg ControlMessage) Reply {
		got = append(got, msg)
		if msg.Cmd == CmdText {
			return Reply{OK: true, Label: "TIME", Text: msg.Arg}
		}
		return Reply{OK: false, Error: "unknown command"}
	})
	require.NoError(t, err)

	reply, err := SendCommand(path, ControlMessage{Cmd: CmdText, Arg: "समय"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Reply{OK: true, Label: "TIME", Text: "समय"}, reply)

	reply, err = SendCommand(path, ControlMessage{Cmd: "dance"}, time.Second)
	require.NoError(t, err)
	assert.False(t, reply.OK)

	require.NoError(t, srv.Close())
	assert.Len(t, got, 2)

	_, err = SendCommand(path, ControlMessage{Cmd: CmdListen}, time.Second)
	assert.Error(t, err)
}
