// Package safeio provides the I/O safety primitives the edit service
// relies on before touching source files: path traversal guards, bounded
// reads, and secret validation.
package safeio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MinSecretLen is the minimum acceptable length for API tokens and other
// symmetric secrets. 32 bytes = 256 bits of entropy.
const MinSecretLen = 32

// MaxSourceFile is the default cap for source file reads (4 MiB). Source
// files past this size are not edit targets; something else is going on.
const MaxSourceFile int64 = 4 << 20

// ErrSecretTooShort is returned when a secret does not meet MinSecretLen.
var ErrSecretTooShort = fmt.Errorf("safeio: secret must be at least %d bytes", MinSecretLen)

// ErrPathTraversal is returned when a user-supplied path escapes its base.
var ErrPathTraversal = errors.New("safeio: path traversal detected")

// ErrFileTooLarge is returned when a file exceeds the read cap.
var ErrFileTooLarge = errors.New("safeio: file exceeds size cap")

// ValidateSecret checks that secret is at least MinSecretLen bytes.
func ValidateSecret(secret []byte) error {
	if len(secret) < MinSecretLen {
		return ErrSecretTooShort
	}
	return nil
}

// SafePath validates that joining base and userInput does not escape base.
// Returns the cleaned absolute path or ErrPathTraversal.
func SafePath(base, userInput string) (string, error) {
	if strings.Contains(userInput, "..") {
		return "", ErrPathTraversal
	}
	cleaned := filepath.Join(base, filepath.Clean("/"+userInput))
	if !strings.HasPrefix(cleaned, filepath.Clean(base)+string(filepath.Separator)) &&
		cleaned != filepath.Clean(base) {
		return "", ErrPathTraversal
	}
	return cleaned, nil
}

// ReadFileMax reads the file at path, failing with ErrFileTooLarge when it
// exceeds maxBytes.
func ReadFileMax(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := LimitedReadAll(f, maxBytes)
	if err != nil {
		return nil, fmt.Errorf("safeio: read %s: %w", path, err)
	}
	return data, nil
}

// LimitedReadAll reads at most maxBytes from r, returning ErrFileTooLarge
// when the limit is exceeded.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	lr := io.LimitReader(r, maxBytes+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
