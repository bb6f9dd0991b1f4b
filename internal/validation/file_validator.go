package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"solarcli/internal/config"
	apierrors "solarcli/internal/errors"
)

// FileValidator checks input and output locations before a command touches them.
// Failures are AppErrors so commands and handlers can classify them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateInputDirectory validates that dir exists. When requiredPattern is set
// it returns the number of files matching it; zero matches is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, requiredPattern string) (int, error) {
	if err := v.requireDirectory(dir); err != nil {
		return 0, err
	}
	if requiredPattern == "" {
		return 0, nil
	}

	count, err := v.CountFiles(dir, requiredPattern)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		v.logger.Warn("No files matching pattern found",
			slog.String("directory", dir),
			slog.String("pattern", requiredPattern))
		return 0, nil
	}

	v.logger.Info("Input directory validated",
		slog.String("directory", dir),
		slog.Int("files_found", count),
		slog.String("pattern", requiredPattern))
	return count, nil
}

// ValidateOutputDirectory checks that dir exists and is writable. It never
// creates the directory; cleaned exports must land in a directory the user made.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := v.requireDirectory(dir); err != nil {
		return err
	}
	if err := v.probeWritable(dir); err != nil {
		return err
	}

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// EnsureOutputDirectory creates dir when missing and checks that it is writable.
// Used for report output, which may create its own directories.
func (v *FileValidator) EnsureOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err).
			WithContext("path", dir)
	}
	return v.probeWritable(dir)
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return apierrors.NewNotFoundError(path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return apierrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path)).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable file with a .csv extension.
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != config.CSVExtension {
		v.logger.Error("File is not a CSV file",
			slog.String("file", path),
			slog.String("extension", ext))
		return apierrors.NewValidationError(fmt.Sprintf("file %s is not a CSV file (extension: %s)", path, ext)).
			WithContext("path", path)
	}

	return nil
}

// CountFiles counts files matching a pattern in a directory
func (v *FileValidator) CountFiles(dir string, pattern string) (int, error) {
	fullPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(fullPattern)
	if err != nil {
		v.logger.Error("Failed to count files",
			slog.String("pattern", fullPattern),
			slog.String("error", err.Error()))
		return 0, apierrors.NewValidationError(fmt.Sprintf("invalid file pattern %q", pattern))
	}

	fileCount := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err == nil && !info.IsDir() {
			fileCount++
		}
	}

	v.logger.Debug("Files counted",
		slog.String("directory", dir),
		slog.String("pattern", pattern),
		slog.Int("count", fileCount))
	return fileCount, nil
}

func (v *FileValidator) requireDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Directory does not exist", slog.String("directory", dir))
		return apierrors.NewNotFoundError(fmt.Sprintf("directory %s", dir)).WithContext("path", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("failed to stat directory %s", dir), err)
	}
	if !info.IsDir() {
		v.logger.Error("Path is not a directory", slog.String("path", dir))
		return apierrors.NewValidationError(fmt.Sprintf("%s is not a directory", dir)).WithContext("path", dir)
	}
	return nil
}

// probeWritable creates and removes a marker file in dir.
func (v *FileValidator) probeWritable(dir string) error {
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apierrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err).
			WithContext("path", dir)
	}
	file.Close()
	os.Remove(testFile)
	return nil
}
