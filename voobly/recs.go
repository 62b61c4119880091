/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DownloadRec downloads the recorded game at recPath (a MatchPlayer.RecURL),
// extracts it into destDir and returns the name of the extracted file.
// Requires a web login.
func (s *Session) DownloadRec(ctx context.Context, recPath string,
	destDir string) (string, error) {

	recPath = strings.TrimSpace(recPath)
	if recPath == "" {
		return "", validationErrorf("rec path must not be empty")
	}
	if destDir == "" {
		return "", validationErrorf("destination directory must not be empty")
	}
	if !strings.HasPrefix(recPath, "/") {
		recPath = "/" + recPath
	}

	ep := webEndpoint("rec", recPath)
	var names []string
	_, err := s.Request(ctx, ep, nil, WithDecoder(func(body []byte) error {
		var err error
		names, err = extractZip(ep, body, destDir)
		return err
	}))
	if err != nil {
		return "", err
	}
	// never more than one rec
	return names[0], nil
}

// extractZip writes every file of the archive in body under destDir and
// returns their names in archive order.
func extractZip(ep Endpoint, body []byte, destDir string) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, newError(KindBadResponse, ep, "rec download is not a zip archive",
			body, err)
	}

	var names []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(destDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, newError(KindBadResponse, ep,
				fmt.Sprintf("archive entry %q escapes destination", f.Name), nil, nil)
		}
		if err := writeZipFile(f, target); err != nil {
			return nil, err
		}
		names = append(names, f.Name)
	}
	if len(names) == 0 {
		return nil, newError(KindBadResponse, ep, "rec archive is empty", nil, nil)
	}
	return names, nil
}

func writeZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("voobly.rec: creating %v: %w", filepath.Dir(target), err)
	}
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("voobly.rec: opening %v: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("voobly.rec: creating %v: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("voobly.rec: writing %v: %w", target, err)
	}
	return dst.Close()
}

// DownloadGameList downloads the recorded games of the 1v1 matches among
// matches into destDir/playerName, renaming each to
// "[<date>]<p1>(<civ>) vs <p2>(<civ>)<ext>". An existing file of that name is
// replaced. It returns the new file names. Requires a web login.
func (s *Session) DownloadGameList(ctx context.Context, playerName string,
	matches []*Match, destDir string) ([]string, error) {

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, validationErrorf("player name must not be empty")
	}
	if destDir == "" {
		return nil, validationErrorf("destination directory must not be empty")
	}
	dir := filepath.Join(destDir, safeFileName(playerName))

	var out []string
	for _, m := range matches {
		if m == nil || len(m.Players) != 2 || m.Players[0].RecURL == "" {
			continue
		}
		name, err := s.DownloadRec(ctx, m.Players[0].RecURL, dir)
		if err != nil {
			return out, fmt.Errorf("downloading match %v: %w", m.ID, err)
		}

		newName := recFileName(name, m.Players[0], m.Players[1])
		if err := os.Rename(filepath.Join(dir, name),
			filepath.Join(dir, newName)); err != nil {
			return out, fmt.Errorf("voobly.rec: renaming %v: %w", name, err)
		}
		out = append(out, newName)
	}
	return out, nil
}

// recFileName derives a descriptive name from voobly's "rec.<date>.<ext>"
// file name and the two players.
func recFileName(original string, p1 MatchPlayer, p2 MatchPlayer) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	date := strings.TrimSuffix(strings.TrimPrefix(base, "rec."), ext)

	return safeFileName(fmt.Sprintf("[%v]%v(%v) vs %v(%v)%v", date, p1.Username,
		p1.Civ, p2.Username, p2.Civ, ext))
}

func safeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, s)
}
