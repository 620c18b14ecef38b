package rendering

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// CompilationTimeout is the maximum time to wait for one pdflatex run.
const CompilationTimeout = 30 * time.Second

// Compiler turns a LaTeX source file into a PDF. The pipeline depends on
// this interface so tests can substitute a fake for the external tool.
type Compiler interface {
	Compile(ctx context.Context, texPath, workDir string) (pdfPath string, logOutput string, err error)
}

// PDFLaTeX invokes the pdflatex binary found on PATH.
type PDFLaTeX struct{}

// Compile runs pdflatex on texPath with workDir as the output directory.
// A missing PDF after the run is a CompilationError carrying the full
// compiler log. pdflatex exiting non-zero while still producing a PDF is
// treated as success with warnings, which LaTeX does routinely.
func (PDFLaTeX) Compile(ctx context.Context, texPath, workDir string) (string, string, error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return "", "", &CompilationError{
			Message: "pdflatex not found in PATH; install a LaTeX distribution (TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("failed to create working directory %s", workDir),
			Cause:   err,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdflatex",
		"-interaction=nonstopmode", "-file-line-error",
		"-output-directory", workDir, texPath)

	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output
	runErr := cmd.Run()
	logOutput := output.String()

	texBase := filepath.Base(texPath)
	pdfPath := filepath.Join(workDir, strings.TrimSuffix(texBase, ".tex")+".pdf")
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		return "", logOutput, &CompilationError{
			Message:   "pdflatex did not produce a PDF",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdfPath, logOutput, nil
}

// auxExtensions are the intermediate files pdflatex leaves behind.
var auxExtensions = map[string]bool{
	".aux": true, ".log": true, ".out": true, ".toc": true,
	".fls": true, ".bbl": true, ".blg": true, ".fdb_latexmk": true,
}

// CleanupAuxFiles removes pdflatex intermediates from dir, leaving any
// file named in keep untouched.
func CleanupAuxFiles(dir string, keep map[string]bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || keep[entry.Name()] {
			continue
		}
		name := entry.Name()
		if auxExtensions[filepath.Ext(name)] || strings.HasSuffix(name, ".synctex.gz") {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
