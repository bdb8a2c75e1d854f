package shovill

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// runner executes collaborating tools. It exists as an interface so tests can
// substitute fakes and exercise the pipeline without the real executables.
type runner interface {
	// run blocks on the tool, sending its combined output to logPath
	run(stage, tool string, args []string, logPath string) error

	// capture blocks on the tool and returns its combined output for parsing
	capture(tool string, args []string) (string, error)

	// redirect blocks on the tool, sending its stdout to outPath
	redirect(tool string, args []string, outPath string) error
}

// shellRunner runs tools as local subprocesses.
type shellRunner struct {
	// whether to echo tool output to stdout as well as the stage log
	verbose bool
}

// run executes one pipeline stage's tool. The tool's stdout and stderr both
// go to the stage's numbered log file; a non-zero exit aborts the run.
func (s *shellRunner) run(stage, tool string, args []string, logPath string) error {
	logFile, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create stage log %s: %v", logPath, err)
	}
	defer logFile.Close()

	var out io.Writer = logFile
	if s.verbose {
		out = io.MultiWriter(logFile, os.Stdout)
	}

	cmd := exec.Command(tool, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return &StageError{stage: stage, tool: tool, err: err}
	}

	return nil
}

// capture executes a tool whose output the caller parses.
func (s *shellRunner) capture(tool string, args []string) (string, error) {
	cmd := exec.Command(tool, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to execute %s: %v: %s", tool, err, string(output))
	}

	return string(output), nil
}

// redirect executes a tool whose stdout is a data file, not a report.
func (s *shellRunner) redirect(tool string, args []string, outPath string) error {
	outFile, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", outPath, err)
	}
	defer outFile.Close()

	cmd := exec.Command(tool, args...)
	cmd.Stdout = outFile
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to execute %s: %v", tool, err)
	}

	return nil
}

// copyFile duplicates src at dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %v", src, dst, err)
	}

	return out.Close()
}
