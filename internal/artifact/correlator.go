// Package artifact pairs failed tests with their screenshots and relocates
// the matches next to the report.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"trxr/internal/config"
	"trxr/internal/discovery"
	"trxr/internal/domain"
)

// Progress receives one tick per correlated record
type Progress interface {
	Add(n int)
	Finish()
}

// Result is the outcome of a correlation pass
type Result struct {
	Kept     []*domain.TestRecord // Records to project, in input order
	Excluded int                  // Pending records dropped by excludePending
	Copied   int
}

// Correlator applies pending exclusion and attaches artifacts to failed records
type Correlator struct {
	log         logrus.FieldLogger
	opts        config.ReporterOptions
	filter      *discovery.Filter
	warn        io.Writer
	newProgress func(total int) Progress
}

// NewCorrelator creates a new Correlator writing its warning line to stderr
func NewCorrelator(log logrus.FieldLogger, opts config.ReporterOptions) *Correlator {
	return &Correlator{
		log:    log.WithField("component", "artifact"),
		opts:   opts,
		filter: discovery.NewFilter(),
		warn:   os.Stderr,
	}
}

// WithWarningOutput redirects the excluded-pending warning
func (c *Correlator) WithWarningOutput(w io.Writer) *Correlator {
	c.warn = w
	return c
}

// WithProgress enables progress reporting
func (c *Correlator) WithProgress(fn func(total int) Progress) *Correlator {
	c.newProgress = fn
	return c
}

// Correlate walks records in order. files is the discovery result and
// destDir the directory matched artifacts are copied into.
func (c *Correlator) Correlate(records []*domain.TestRecord, files []string, destDir string) *Result {
	res := &Result{Kept: make([]*domain.TestRecord, 0, len(records))}

	var progress Progress
	if c.newProgress != nil && len(records) > 0 {
		progress = c.newProgress(len(records))
	}

	for _, r := range records {
		c.correlate(r, files, destDir, res)
		if progress != nil {
			progress.Add(1)
		}
	}
	if progress != nil {
		progress.Finish()
	}

	if res.Excluded > 0 && c.opts.WarnExcludedPending {
		fmt.Fprintf(c.warn, "##[warning]%s\n", color.YellowString(ExclusionWarning(res.Excluded)))
	}

	c.log.WithFields(logrus.Fields{
		"records":  len(records),
		"kept":     len(res.Kept),
		"excluded": res.Excluded,
		"copied":   res.Copied,
	}).Debug("Correlation finished")

	return res
}

func (c *Correlator) correlate(r *domain.TestRecord, files []string, destDir string, res *Result) {
	if r.IsPending() && c.opts.ExcludePending {
		res.Excluded++
		return
	}
	res.Kept = append(res.Kept, r)

	if !r.IsFailed() {
		return
	}

	src, ok := c.filter.FirstWithSuffix(files, discovery.ArtifactSuffix(r.FullTitle()))
	if !ok {
		return
	}

	name := filepath.Base(src)
	if err := copyFile(src, filepath.Join(destDir, name)); err != nil {
		c.log.WithError(err).WithField("test", r.FullTitle()).Error("Failed to copy screenshot")
		return
	}
	r.AttachArtifact(name)
	res.Copied++
}

// ExclusionWarning returns the message reported when pending tests were excluded
func ExclusionWarning(n int) string {
	if n == 1 {
		return "Excluded 1 test because it is marked as Pending."
	}
	return fmt.Sprintf("Excluded %d tests because they are marked as Pending.", n)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
