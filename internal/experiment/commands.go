package experiment

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// CommandRunner runs an external command. The production implementation
// shells out; tests substitute a recorder.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands through os/exec, forwarding output to the
// parent process so training progress stays visible.
type ExecRunner struct{}

// Run executes the command, honouring context cancellation.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Scripts locates the external Gaussian Splatting entry points.
type Scripts struct {
	Python  string // python interpreter, default "python3"
	Train   string // path to train.py
	Render  string // path to render.py
	Metrics string // path to metrics.py
}

// DefaultScripts returns script paths under the conventional external
// checkout location.
func DefaultScripts(externalDir string) Scripts {
	return Scripts{
		Python:  "python3",
		Train:   externalDir + "/train.py",
		Render:  externalDir + "/render.py",
		Metrics: externalDir + "/metrics.py",
	}
}

// TrainModel invokes the external training script for sourceDir,
// writing the model into modelDir.
func (s Scripts) TrainModel(ctx context.Context, runner CommandRunner, sourceDir, modelDir string, args map[string]any) error {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	cmdArgs := []string{s.Train, "-s", sourceDir, "-m", modelDir}
	cmdArgs = append(cmdArgs, FlattenArgs(args)...)
	return runner.Run(ctx, s.Python, cmdArgs...)
}

// RenderIteration renders one saved checkpoint.
func (s Scripts) RenderIteration(ctx context.Context, runner CommandRunner, sourceDir, modelDir string, iteration int, args map[string]any) error {
	cmdArgs := []string{s.Render, "-s", sourceDir, "-m", modelDir, "--iteration", strconv.Itoa(iteration)}
	cmdArgs = append(cmdArgs, FlattenArgs(args)...)
	return runner.Run(ctx, s.Python, cmdArgs...)
}

// ComputeMetrics runs the external metrics script over rendered output,
// producing results.json inside modelDir.
func (s Scripts) ComputeMetrics(ctx context.Context, runner CommandRunner, modelDir string, args map[string]any) error {
	cmdArgs := []string{s.Metrics, "-m", modelDir}
	cmdArgs = append(cmdArgs, FlattenArgs(args)...)
	return runner.Run(ctx, s.Python, cmdArgs...)
}
