package report

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/executor"
)

// Result is implemented by payloads that can be saved as a result file.
type Result interface {
	// ResultStem is the file name stem, without trajectory or extension.
	ResultStem() string
	// ResultData is the value serialized to YAML.
	ResultData() any
}

// Sink writes results to <dir>/<stem>.<trajectory>.yaml.
type Sink struct {
	dir string
}

// NewSink creates a sink writing under dir.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

var _ executor.ResultSink = (*Sink)(nil)

// Write saves value if it implements Result and ignores it otherwise.
func (s *Sink) Write(ctx context.Context, trajectory int, object string, value any) error {
	r, ok := value.(Result)
	if !ok {
		ctxlog.FromContext(ctx).Debug("Result payload is not serializable, skipping.", "object", object, "type", fmt.Sprintf("%T", value))
		return nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.%d.yaml", r.ResultStem(), trajectory))
	if err := writeYAML(path, r.ResultData()); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("💾 Result saved.", "object", object, "path", path)
	return nil
}
