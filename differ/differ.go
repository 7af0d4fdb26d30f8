package differ

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dendrascience/dendra-archive-diff/namespace"
	"github.com/dendrascience/dendra-archive-diff/util"
	"github.com/taigrr/colorhash"
)

// DefaultStageDir is where mismatching files are copied unless WithStageDir
// says otherwise. Relative paths are taken from the working directory.
const DefaultStageDir = "diffs"

// ErrReused is returned when Run or Compare is called on a Differ that has
// already left StateInit.
var ErrReused = errors.New("differ already used")

// State is a step in the life of a Differ.
type State int

const (
	StateInit State = iota
	StateResolved
	StateWalking
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateResolved:
		return "resolved"
	case StateWalking:
		return "walking"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result counts what a run did with the left side's files.
type Result struct {
	// Compared files existed on both sides.
	Compared int
	// Mismatched files were reported and staged.
	Mismatched int
	// Missing files had no regular file counterpart on the right.
	Missing int
}

// Differ walks the left side of a comparison and reports every file whose
// counterpart on the right has different contents. A Differ runs once.
type Differ struct {
	stageDir   string
	bufferSize int
	logger     *slog.Logger
	out        io.Writer
	color      bool

	state State
}

// Option configures a Differ.
type Option func(*Differ)

// WithStageDir sets the directory mismatching files are copied into.
func WithStageDir(dir string) Option {
	return func(d *Differ) {
		if dir != "" {
			d.stageDir = dir
		}
	}
}

// WithBufferSize sets the per-stream comparison buffer.
func WithBufferSize(n int) Option {
	return func(d *Differ) { d.bufferSize = n }
}

// WithLogger sets the logger for state changes and skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Differ) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithOutput sets where mismatching paths are printed. The default is
// standard output.
func WithOutput(w io.Writer) Option {
	return func(d *Differ) {
		if w != nil {
			d.out = w
		}
	}
}

// WithColor colours each printed path by its top-level directory.
func WithColor(enabled bool) Option {
	return func(d *Differ) { d.color = enabled }
}

// New returns a Differ in StateInit.
func New(opts ...Option) *Differ {
	d := &Differ{
		stageDir:   DefaultStageDir,
		bufferSize: util.DefaultBufferSize,
		logger:     slog.New(slog.DiscardHandler),
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State reports where the Differ is in its life cycle.
func (d *Differ) State() State { return d.state }

func (d *Differ) transition(to State) {
	d.logger.Debug("differ state", "from", d.state, "to", to)
	d.state = to
}

// Run resolves both specs and compares them. Both sides are closed before
// Run returns, whatever the outcome.
func (d *Differ) Run(ctx context.Context, leftSpec, rightSpec string) (Result, error) {
	if d.state != StateInit {
		return Result{}, ErrReused
	}
	left, err := namespace.Resolve(leftSpec, namespace.WithLogger(d.logger))
	if err != nil {
		d.transition(StateFailed)
		d.transition(StateClosed)
		return Result{}, err
	}
	right, err := namespace.Resolve(rightSpec, namespace.WithLogger(d.logger))
	if err != nil {
		d.transition(StateFailed)
		err = errors.Join(err, left.Close())
		d.transition(StateClosed)
		return Result{}, err
	}
	return d.Compare(ctx, left, right)
}

// Compare walks left and compares each regular file with the file at the
// same relative path in right. Mismatches are printed in walk order and
// copied into the stage directory before the next file is looked at. The
// first error ends the walk. Compare takes ownership of both roots and
// closes them.
func (d *Differ) Compare(ctx context.Context, left, right *namespace.Root) (res Result, err error) {
	if d.state != StateInit {
		return Result{}, errors.Join(ErrReused, left.Close(), right.Close())
	}
	d.transition(StateResolved)
	defer func() {
		err = errors.Join(err, left.Close(), right.Close())
		if err != nil {
			d.transition(StateFailed)
		}
		d.transition(StateClosed)
		d.logger.Debug("comparison finished",
			"left", left.String(),
			"right", right.String(),
			"compared", res.Compared,
			"mismatched", res.Mismatched,
			"missing", res.Missing,
		)
	}()

	if left.SameRoot(right) {
		d.logger.Debug("both sides are the same root, nothing to compare", "root", left.String())
		return res, nil
	}

	if left.IsEmpty(left.Resolve("")) {
		d.logger.Warn("left side has no entries", "left", left.String())
	}

	stageRel, stageInLeft := left.HostRel(d.stageDir)
	if stageInLeft && stageRel == "" {
		d.logger.Warn("stage directory is the left root, its files are not compared", "stage", d.stageDir)
	}

	d.transition(StateWalking)
	err = left.Walk(func(f namespace.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := f.Rel()
		if stageInLeft && util.Within(rel, stageRel) {
			d.logger.Debug("skipping staged file", "path", rel)
			return nil
		}
		g := right.Resolve(rel)
		if !g.IsRegular() {
			res.Missing++
			return nil
		}
		res.Compared++
		same, err := util.Equal(f, g, util.WithBufferSize(d.bufferSize))
		if err != nil {
			return err
		}
		if same {
			return nil
		}
		res.Mismatched++
		if err := d.report(f); err != nil {
			return err
		}
		return util.Copy(f, d.stagePath(f))
	})
	return res, err
}

// stagePath is where f is copied. A root that is a single file is staged
// under its base name.
func (d *Differ) stagePath(f namespace.Entry) string {
	rel := f.Rel()
	if rel == "" {
		rel = filepath.ToSlash(f.Display())
	}
	return filepath.Join(d.stageDir, filepath.FromSlash(rel))
}

func (d *Differ) report(f namespace.Entry) error {
	line := f.Display()
	if d.color {
		line = colorize(f.Rel(), line)
	}
	_, err := fmt.Fprintln(d.out, line)
	return err
}

// colorize wraps line in a 256-colour escape picked from the first element
// of rel, so files from the same top-level directory share a colour.
func colorize(rel, line string) string {
	top, _, _ := strings.Cut(rel, "/")
	h := colorhash.HashString(top)
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", 16+h%216, line)
}
