package report

import (
	"context"
	"os"
	"path/filepath"

	"maxflow/pkg/apperror"
)

// Output describes one written report.
type Output struct {
	Format Format
	Path   string
	Bytes  int
}

// Writer renders reports and writes them to disk.
type Writer struct {
	base    string
	formats []Format
}

// NewWriter returns a writer producing formats next to base. The text
// report, if requested, goes to base itself.
func NewWriter(base string, formats ...string) (*Writer, error) {
	if base == "" {
		return nil, apperror.NewWithField(apperror.CodeInvalidArgument, "output path is required", "output_path")
	}
	if len(formats) == 0 {
		formats = []string{string(FormatText)}
	}

	w := &Writer{base: base}
	seen := make(map[Format]bool, len(formats))
	for _, s := range formats {
		f, err := ParseFormat(s)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		w.formats = append(w.formats, f)
	}
	return w, nil
}

// Formats returns the formats the writer produces, in order.
func (w *Writer) Formats() []Format {
	return w.formats
}

// Write renders every format and stages each into a temporary file next
// to its target. Only when all of them are staged are they renamed into
// place. On failure nothing is produced: temporary files are removed, and
// so are targets already renamed by this call.
func (w *Writer) Write(ctx context.Context, data *Data) ([]Output, error) {
	staged := make([]stagedFile, 0, len(w.formats))
	discard := func(files []stagedFile) {
		for _, s := range files {
			os.Remove(s.tmp)
		}
	}

	for _, f := range w.formats {
		if err := ctx.Err(); err != nil {
			discard(staged)
			return nil, apperror.Wrap(err, apperror.CodeTimeout, "report writing interrupted")
		}

		gen, err := New(f)
		if err != nil {
			discard(staged)
			return nil, err
		}
		content, err := gen.Generate(ctx, data)
		if err != nil {
			discard(staged)
			return nil, apperror.Wrap(err, apperror.CodeReportFailed, "failed to render report").
				WithDetails("format", string(f))
		}

		path := PathFor(w.base, f)
		tmp, err := stageFile(path, content)
		if err != nil {
			discard(staged)
			return nil, err
		}
		staged = append(staged, stagedFile{
			out: Output{Format: f, Path: path, Bytes: len(content)},
			tmp: tmp,
		})
	}

	outputs := make([]Output, 0, len(staged))
	for i, s := range staged {
		if err := os.Rename(s.tmp, s.out.Path); err != nil {
			for _, done := range outputs {
				os.Remove(done.Path)
			}
			discard(staged[i:])
			return nil, reportErr(err, s.out.Path, "cannot replace report file")
		}
		outputs = append(outputs, s.out)
	}
	return outputs, nil
}

type stagedFile struct {
	out Output
	tmp string
}

// WriteFile replaces path with content. The content goes to a temporary
// file in the same directory first, so readers never see a partial report.
func WriteFile(path string, content []byte) error {
	tmp, err := stageFile(path, content)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return reportErr(err, path, "cannot replace report file")
	}
	return nil
}

// stageFile writes content to a temporary file beside path and returns its name.
func stageFile(path string, content []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", reportErr(err, path, "cannot create report file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", reportErr(err, path, "cannot write report file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", reportErr(err, path, "cannot write report file")
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", reportErr(err, path, "cannot write report file")
	}
	return tmpName, nil
}

func reportErr(err error, path, msg string) error {
	return apperror.Wrap(err, apperror.CodeReportFailed, msg).WithDetails("path", path)
}
