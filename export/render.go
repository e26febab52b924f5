package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Render lays out dotPath with a Graphviz engine ("dot", "neato", ...) and
// writes outPath in the given format ("png", "svg", ...).
func Render(ctx context.Context, engine, dotPath, outPath, format string) error {
	if engine == "" {
		engine = "neato"
	}
	if format == "" {
		format = "png"
	}
	bin, err := exec.LookPath(engine)
	if err != nil {
		return fmt.Errorf("Render: %s: %w", engine, ErrEngineNotFound)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format, dotPath, "-o", outPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("Render: %s: %v: %s: %w", engine, err, strings.TrimSpace(stderr.String()), ErrRender)
	}
	return nil
}
