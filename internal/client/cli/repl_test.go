package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) Post(ctx context.Context, text string) error {
	return f.record("post:" + text)
}
func (f *fakeExec) Feed(ctx context.Context) error { return f.record("feed") }
func (f *fakeExec) Show(ctx context.Context, id string) error {
	return f.record("show:" + id)
}
func (f *fakeExec) Mark(ctx context.Context, id, markType string) error {
	return f.record("mark:" + id + ":" + markType)
}
func (f *fakeExec) Marked(ctx context.Context) error { return f.record("marked") }
func (f *fakeExec) Remove(ctx context.Context, id string) error {
	return f.record("rm:" + id)
}
func (f *fakeExec) Verify(ctx context.Context) error  { return f.record("verify") }
func (f *fakeExec) Ping(ctx context.Context) error    { return f.record("ping") }
func (f *fakeExec) Migrate(ctx context.Context) error { return f.record("migrate") }
func (f *fakeExec) Reset(ctx context.Context) error   { return f.record("reset") }

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login",
		"post  a  great idea",
		"feed",
		"show 123",
		"mark 123 spark",
		"marked",
		"rm 123",
		"whoami",
		"ping",
		"migrate",
		"verify",
		"reset",
		"logout",
		"exit",
		"feed",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, rdr(input))

	want := []string{
		"login", "post:a great idea", "feed", "show:123", "mark:123:spark", "marked",
		"rm:123", "whoami", "ping", "migrate", "verify", "reset", "logout",
	}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls mismatch:\n got %v\nwant %v", exec.calls, want)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("show\nmark 1\nrm\nfoobar\nquit\n"))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	out := strings.Join(*lines, "\n")
	for _, want := range []string{"Usage: show <id>", "Usage: mark <id>", "Usage: rm <id>", "Unknown command: foobar", "Bye!"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{failWith: errors.New("invalid credentials")}
	runREPL(context.Background(), exec, func() string { return "s" }, rdr("login\nfeed"))

	if len(exec.calls) != 2 {
		t.Fatalf("expected both commands to run, got %v", exec.calls)
	}
	n := 0
	for _, l := range *lines {
		if l == "Error: invalid credentials" {
			n++
		}
	}
	if n != 2 {
		t.Fatalf("expected two error lines, got %v", *lines)
	}
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := capturePrints(t)

	runREPL(context.Background(), &fakeExec{}, func() string { return "s" }, rdr("help\n"))
	runREPL(context.Background(), &fakeExec{loggedIn: true}, func() string { return "s" }, rdr("help\n"))

	out := strings.Join(*lines, "\n")
	if !strings.Contains(out, helpAnonymous) || !strings.Contains(out, helpLoggedIn) {
		t.Fatalf("help output mismatch:\n%s", out)
	}
}
