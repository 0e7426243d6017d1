package csvio

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cobmax/batimento/internal/domain/dataset"
)

// extractArchive returns the content of the single data file inside a zip
// archive. The archive must contain exactly one entry with the expected
// extension; zero or several entries is a configuration error, never a
// silent pick.
func extractArchive(path, wantExt, password, sevenZip string) ([]byte, string, error) {
	if password != "" {
		return extractEncrypted(path, wantExt, password, sevenZip)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot open archive %q: %v", dataset.ErrExtraction, path, err)
	}
	defer r.Close()

	var match *zip.File
	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// General purpose bit 0 marks an encrypted entry. Without a
		// configured password (or with one that expanded to empty) this
		// archive can never be read, so name the fix instead of failing
		// later with a parse error.
		if f.Flags&0x1 != 0 {
			return nil, "", fmt.Errorf("%w: archive %q is password protected but no password is configured; set input.password [%s]",
				dataset.ErrDecryption, path, ErrCodeDecryption)
		}
		if strings.EqualFold(filepath.Ext(f.Name), wantExt) {
			count++
			match = f
		}
	}
	if count != 1 {
		return nil, "", fmt.Errorf("%w: archive %q contains %d %s files, expected exactly 1 [%s]",
			dataset.ErrConfiguration, path, count, wantExt, ErrCodeArchiveEntries)
	}

	rc, err := match.Open()
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot read %q from %q: %v", dataset.ErrExtraction, match.Name, path, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot read %q from %q: %v", dataset.ErrExtraction, match.Name, path, err)
	}
	return content, match.Name, nil
}

// extractEncrypted shells out to 7z for AES-protected archives; the Go
// standard library only reads plain zips. A missing binary or a wrong
// password is a fatal decryption error.
func extractEncrypted(path, wantExt, password, sevenZip string) ([]byte, string, error) {
	if sevenZip == "" {
		sevenZip = "7z"
	}
	if _, err := exec.LookPath(sevenZip); err != nil {
		return nil, "", fmt.Errorf("%w: decryption tool %q not found; install 7-Zip or set loader.seven_zip [%s]",
			dataset.ErrDecryption, sevenZip, ErrCodeDecryption)
	}

	tmp, err := os.MkdirTemp("", "batimento-extract-")
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot create extraction dir: %v", dataset.ErrExtraction, err)
	}
	defer os.RemoveAll(tmp)

	cmd := exec.Command(sevenZip, "e", "-y", "-p"+password, "-o"+tmp, path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, "", fmt.Errorf("%w: cannot extract %q (wrong password?): %v: %s [%s]",
			dataset.ErrDecryption, path, err, strings.TrimSpace(stderr.String()), ErrCodeDecryption)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot list extracted files: %v", dataset.ErrExtraction, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), wantExt) {
			names = append(names, e.Name())
		}
	}
	if len(names) != 1 {
		return nil, "", fmt.Errorf("%w: archive %q contains %d %s files, expected exactly 1 [%s]",
			dataset.ErrConfiguration, path, len(names), wantExt, ErrCodeArchiveEntries)
	}

	content, err := os.ReadFile(filepath.Join(tmp, names[0]))
	if err != nil {
		return nil, "", fmt.Errorf("%w: cannot read extracted file: %v", dataset.ErrExtraction, err)
	}
	return content, names[0], nil
}
