// Package pdf extracts text from PDF documents using the pdftotext tool
// from poppler-utils. The tool is invoked through an injectable runner so
// tests can supply a double.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor extracts PDF text via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract runs pdftotext over the file at path. "-" sends the layout-free
// text to stdout.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-nopgbrk", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w", path, err)
	}
	return string(out), nil
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftotext.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext (poppler) is required for PDF ingestion:",
		"  macOS:  brew install poppler",
		"  Debian: apt install poppler-utils",
	}, "\n")
}
