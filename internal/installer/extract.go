package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// extract unpacks archive into destDir. Entries that already exist at
// the destination are overwritten.
func extract(archive, destDir string) error {
	switch {
	case strings.HasSuffix(archive, ".zip"):
		return extractZip(archive, destDir)
	case strings.HasSuffix(archive, ".tar.gz"), strings.HasSuffix(archive, ".tgz"):
		return extractTarGz(archive, destDir)
	}
	return fmt.Errorf("unsupported archive format: %s", filepath.Base(archive))
}

func extractZip(archive, destDir string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(archive), err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		dest, err := entryPath(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}

		rc, err := file.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", file.Name, err)
		}
		err = writeEntry(dest, rc, file.Mode())
		rc.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", file.Name, err)
		}
	}

	return nil
}

func extractTarGz(archive, destDir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(archive), err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(archive), err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(archive), err)
		}

		dest, err := entryPath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
				return err
			}
			if err := writeEntry(dest, tr, fs.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		case tar.TypeSymlink:
			if err := checkLinkTarget(destDir, dest, header.Linkname); err != nil {
				return err
			}
			_ = os.Remove(dest)
			if err := os.Symlink(header.Linkname, dest); err != nil {
				return fmt.Errorf("extract %s: %w", header.Name, err)
			}
		default:
			log.Debugf("skipping archive entry %s with type %d", header.Name, header.Typeflag)
		}
	}
}

// checkLinkTarget rejects symlink targets that resolve outside destDir.
// Later entries extracted through such a link would escape the install
// directory.
func checkLinkTarget(destDir, dest, linkname string) error {
	target := linkname
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(dest), linkname)
	}
	target = filepath.Clean(target)

	if target != filepath.Clean(destDir) && !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("symlink to %q escapes the install directory", linkname)
	}
	return nil
}

// entryPath resolves an archive entry name under destDir and rejects
// names that would escape it.
func entryPath(destDir, name string) (string, error) {
	dest := filepath.Join(destDir, name)
	if dest != filepath.Clean(destDir) && !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the install directory", name)
	}
	return dest, nil
}

func writeEntry(dest string, r io.Reader, mode fs.FileMode) error {
	perm := mode.Perm()
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
