package notify

import (
	"context"
	"os/exec"
	"time"
)

// Desktop shows a transient notification through notify-send.
func Desktop(ctx context.Context, summary, body string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	args := []string{"-a", "vaani", "-t", "2000", summary}
	if body != "" {
		args = append(args, body)
	}
	return exec.CommandContext(ctx, "notify-send", args...).Run()
}
