package texture

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/logger"
)

// Placeholders substituted in a command template.
const (
	PlaceholderSrc  = "{src}"
	PlaceholderDest = "{dest}"
)

// Command runs an external tool per image, for example
// "maketx --oiio {src} -o {dest}". The template is split like a shell
// command line before substitution, so paths with spaces stay one
// argument.
type Command struct {
	Args []string
	Ext  string // output extension, ".tx" by default
}

// NewCommand parses template. ext may be empty.
func NewCommand(template, ext string) (*Command, error) {
	args, err := shellwords.Parse(template)
	if err != nil {
		return nil, fmt.Errorf("converter command %q: %w", template, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("converter command %q is empty", template)
	}
	if !strings.Contains(template, PlaceholderSrc) || !strings.Contains(template, PlaceholderDest) {
		return nil, fmt.Errorf("converter command %q needs %s and %s", template, PlaceholderSrc, PlaceholderDest)
	}
	if ext == "" {
		ext = ".tx"
	}
	return &Command{Args: args, Ext: ext}, nil
}

// Convert implements Converter.
func (c *Command) Convert(src, destDir string, overwrite bool) (string, error) {
	dest := withExt(src, destDir, c.Ext)
	if skip(dest, overwrite) {
		return dest, nil
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	r := strings.NewReplacer(PlaceholderSrc, src, PlaceholderDest, dest)
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = r.Replace(a)
	}

	var out bytes.Buffer
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	logger.Named(component).Debug("running converter", zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return dest, nil
}
