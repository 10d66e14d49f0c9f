package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	cli "github.com/spf13/pflag"

	"vaani/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	timeout := cli.DurationP("timeout", "w", 2*time.Minute, "How long to wait for the reply")
	cli.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: vaani-ctl [flags] listen | stop | text <words...>")
		cli.PrintDefaults()
	}
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		args = []string{ipc.CmdListen}
	}

	msg := ipc.ControlMessage{Cmd: args[0], Arg: strings.Join(args[1:], " ")}

	reply, err := ipc.SendCommand(*socket, msg, *timeout)
	if err != nil {
		fmt.Println("vaani-daemon not running:", err)
		os.Exit(1)
	}

	if !reply.OK {
		fmt.Println("error:", reply.Error)
		os.Exit(1)
	}
	if reply.Label != "" {
		fmt.Printf("%s: %s\n", reply.Label, reply.Text)
	}
}
