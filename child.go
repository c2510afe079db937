package guibridge

import (
	"os/exec"
)

// childHandle tracks the spawned GUI process until it is reaped.
type childHandle struct {
	cmd *exec.Cmd
}

// kill forcibly terminates the child. Used only when bring-up fails
// mid-way; the normal path asks the GUI to destroy itself.
func (h *childHandle) kill() {
	if h.cmd != nil && h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

// wait reaps the child, blocking until it exits. The runtime retries the
// underlying wait on interruption. Must not run on the audio thread.
func (h *childHandle) wait() {
	if h.cmd != nil {
		_ = h.cmd.Wait()
	}
}

// childArgs assembles the GUI executable's command line. The child is
// launched without a shell, so no quoting layer exists or is needed.
func childArgs(cfg *Config, endpointArgs ...string) []string {
	args := []string{"--skin", cfg.SkinDir}
	for _, p := range cfg.QMLImportPaths {
		args = append(args, "--qml-import", p)
	}
	return append(args, endpointArgs...)
}
