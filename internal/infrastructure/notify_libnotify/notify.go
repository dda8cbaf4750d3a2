package notify_libnotify

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	Urgency string
	Expire  time.Duration
}

// Notifier shells out to notify-send. A soft notifier swallows failures, so
// a machine without libnotify still runs the dashboard.
type Notifier struct {
	soft bool
	opt  Options
	run  func(ctx context.Context, name string, args ...string) error
}

func New(opt Options) *Notifier     { return &Notifier{soft: false, opt: opt, run: execRun} }
func NewSoft(opt Options) *Notifier { return &Notifier{soft: true, opt: opt, run: execRun} }

func (n *Notifier) Notify(ctx context.Context, title, body, url string) error {
	if err := n.run(ctx, "notify-send", n.args(title, body, url)...); err != nil {
		if n.soft {
			return nil
		}
		return err
	}
	return nil
}

func (n *Notifier) args(title, body, url string) []string {
	if strings.TrimSpace(url) != "" {
		if body == "" {
			body = url
		} else {
			body = body + "\n" + url
		}
	}

	args := []string{"--app-name=ci-dashboard"}
	if n.opt.Urgency != "" {
		args = append(args, "--urgency="+n.opt.Urgency)
	}
	if n.opt.Expire > 0 {
		ms := strconv.Itoa(int(n.opt.Expire / time.Millisecond))
		args = append(args, "--expire-time="+ms)
	}
	return append(args, title, body)
}

func execRun(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
