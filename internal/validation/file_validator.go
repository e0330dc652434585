package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedExtension is returned for files outside the allowed extensions
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	// ErrFileTooLarge is returned for input files above the size limit
	ErrFileTooLarge = errors.New("file too large")
)

// FileValidator checks measurement inputs and report outputs on disk
type FileValidator struct {
	extensions []string
	maxBytes   int64
	logger     *slog.Logger
}

// NewFileValidator creates a validator accepting the given extensions (with
// the leading dot) up to maxBytes. A non-positive maxBytes disables the size
// check.
func NewFileValidator(extensions []string, maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	normalized := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	return &FileValidator{
		extensions: normalized,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// ValidateFile stats path and opens it once to prove it is readable
func (v *FileValidator) ValidateFile(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = fmt.Errorf("file %s does not exist", path)
	case err != nil:
		err = fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		err = fmt.Errorf("%s is a directory, not a file", path)
	}
	if err == nil {
		var f *os.File
		if f, err = os.Open(path); err == nil {
			f.Close()
		} else {
			err = fmt.Errorf("file %s is not readable: %w", path, err)
		}
	}
	if err != nil {
		v.logger.Error("Input file rejected", slog.String("file", path), slog.String("error", err.Error()))
		return nil, err
	}
	return info, nil
}

// ValidateMeasurementFile checks that path is a readable measurement export
// with an allowed extension and within the size limit
func (v *FileValidator) ValidateMeasurementFile(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", path))
		return fmt.Errorf("file %s is a temporary Excel file", path)
	}

	if !v.allowed(path) {
		v.logger.Error("Measurement file has unsupported extension",
			slog.String("file", path),
			slog.Any("allowed", v.extensions))
		return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedExtension, base, strings.Join(v.extensions, ", "))
	}

	info, err := v.ValidateFile(path)
	if err != nil {
		return err
	}

	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("Measurement file exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, base, info.Size(), v.maxBytes)
	}

	v.logger.Debug("Measurement file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile checks the extension of an output path against exts and
// makes sure its directory is writable
func (v *FileValidator) ValidateOutputFile(path string, exts ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	ok := false
	for _, allowed := range exts {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s (use %s)", ErrUnsupportedExtension, filepath.Base(path), strings.Join(exts, " or "))
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

// ValidateOutputDirectory creates dir if needed and probes it with a
// temporary file
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Cannot create output directory", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

func (v *FileValidator) allowed(path string) bool {
	if len(v.extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range v.extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
