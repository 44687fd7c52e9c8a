//go:build !unix

package suite

import "os/exec"

func killGroupOnCancel(cmd *exec.Cmd) {}
