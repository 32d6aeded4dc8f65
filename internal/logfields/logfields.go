package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyTarget     = "target"
	KeyModule     = "module"
	KeyOutDir     = "out_dir"
	KeyField      = "field"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyArgs       = "args"
	KeyDurationMS = "duration_ms"
	KeyResult     = "result"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Target(t string) slog.Attr       { return slog.String(KeyTarget, t) }
func Module(m string) slog.Attr       { return slog.String(KeyModule, m) }
func OutDir(d string) slog.Attr       { return slog.String(KeyOutDir, d) }
func Field(f string) slog.Attr        { return slog.String(KeyField, f) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Args(a []string) slog.Attr       { return slog.Any(KeyArgs, a) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Result(r string) slog.Attr       { return slog.String(KeyResult, r) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
