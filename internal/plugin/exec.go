package plugin

import (
	"bufio"
	"errors"
	"io"
	"os/exec"
	"sync"
)

// runShell executes a composed command line through the shell, delivering
// output line by line as it becomes available. The call blocks until the
// subprocess exits; callbacks are serialized so callers see single-threaded
// streaming. Returns the exit code, or -1 when the process could not be
// started at all.
func runShell(command string, onStdout, onStderr func(string)) int {
	cmd := exec.Command("sh", "-c", command)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		onStderr("process execution error: " + err.Error())
		return -1
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		onStderr("process execution error: " + err.Error())
		return -1
	}
	if err := cmd.Start(); err != nil {
		onStderr("process execution error: " + err.Error())
		return -1
	}

	var mu sync.Mutex
	serialized := func(fn func(string)) func(string) {
		return func(line string) {
			mu.Lock()
			defer mu.Unlock()
			fn(line)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go scanLines(stdout, serialized(onStdout), &wg)
	go scanLines(stderr, serialized(onStderr), &wg)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		return -1
	}
	return 0
}

func scanLines(r io.Reader, fn func(string), wg *sync.WaitGroup) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	// Compiler diagnostics can produce very long lines.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fn(sc.Text())
	}
}
