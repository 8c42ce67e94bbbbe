// Package preproc locates and prepends the language's prelude source —
// the small set of builtin-adjacent declarations every program is
// compiled against — ahead of a program's own source text. Modeled on
// the teacher's pkg/preproc: an Options struct passed by pointer, one
// exported entry point, I/O errors wrapped with github.com/pkg/errors
// so a failure keeps the call stack that produced it.
package preproc

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PreludeEnvVar is the environment variable SPLC_PRELUDE names: a path to
// a prelude file overriding the default next-to-binary lookup.
const PreludeEnvVar = "SPLC_PRELUDE"

// defaultPreludeName is the file looked up next to the splc binary when
// SPLC_PRELUDE is unset.
const defaultPreludeName = "prelude.splc"

// Options configures prelude resolution, mirroring the teacher's
// pkg/preproc.Options convention of a single pointer-passed options
// struct rather than positional booleans.
type Options struct {
	// NoPrelude suppresses prelude lookup entirely, the CLI's --noPrelude.
	NoPrelude bool
	// Path overrides both SPLC_PRELUDE and the next-to-binary default when
	// non-empty.
	Path string
}

// Load returns the prelude source text to prepend ahead of source, or ""
// when opts.NoPrelude is set or no prelude file can be found. A missing
// default-location prelude is not an error — it's an optional convenience,
// the way the teacher's internal preprocessor falls back silently when no
// system cpp is configured — but a Path or SPLC_PRELUDE naming a file that
// can't be read is.
func Load(opts *Options) (string, error) {
	if opts != nil && opts.NoPrelude {
		return "", nil
	}

	path := resolvePath(opts)
	if path == "" {
		return "", nil
	}

	explicit := (opts != nil && opts.Path != "") || os.Getenv(PreludeEnvVar) != ""
	data, err := os.ReadFile(path)
	if err != nil {
		if explicit {
			return "", errors.Wrapf(err, "preproc: reading prelude %s", path)
		}
		return "", nil
	}
	return string(data), nil
}

// Prepend concatenates the prelude ahead of source with a single newline
// between them. Line numbers in the combined text are offset by the
// prelude's lines; they are not the line numbers of the original file.
func Prepend(prelude, source string) string {
	if prelude == "" {
		return source
	}
	return prelude + "\n" + source
}

func resolvePath(opts *Options) string {
	if opts != nil && opts.Path != "" {
		return opts.Path
	}
	if p := os.Getenv(PreludeEnvVar); p != "" {
		return p
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), defaultPreludeName)
}
