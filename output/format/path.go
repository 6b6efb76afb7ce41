package format

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
)

// RelPath is a test path split for display, always with forward slashes.
type RelPath struct {
	Dir  string
	Base string
}

// RelativePath makes testPath relative to baseDir and splits it. Paths that
// cannot be made relative are split as given.
func RelativePath(baseDir, testPath string) RelPath {
	rel := testPath
	if baseDir != "" {
		if r, err := filepath.Rel(baseDir, testPath); err == nil {
			rel = r
		}
	}
	rel = toSlash(rel)
	return RelPath{Dir: path.Dir(rel), Base: path.Base(rel)}
}

// RelativeOrigin shortens a console call site ("path:line:col") the same way.
func RelativeOrigin(baseDir, origin string) string {
	if baseDir == "" || origin == "" {
		return toSlash(origin)
	}
	if r, err := filepath.Rel(baseDir, origin); err == nil {
		return toSlash(r)
	}
	return toSlash(origin)
}

func toSlash(p string) string {
	return strings.ReplaceAll(filepath.ToSlash(p), `\`, "/")
}

// Unbounded is the column count used when the terminal width is unknown.
const Unbounded = 0

// PathLayout is the outcome of fitting a RelPath into a column budget. Dir
// is rendered dim (it already carries its trailing slash), Base bold. Dir is
// empty when the directory was dropped entirely.
type PathLayout struct {
	Dir  string
	Base string
}

// LayoutPath fits p into columns-padding cells. columns == Unbounded never
// truncates.
//
// Four outcomes, in order:
//   - the whole path fits: unchanged
//   - the base fits with room to spare: the front of Dir is trimmed to the
//     last maxLength-4-len(Base) cells behind an ellipsis
//   - the base fits exactly with four cells left: Dir becomes "…/"
//   - otherwise Dir is dropped and only the trailing maxLength-4 cells of
//     Base are kept behind an ellipsis
func LayoutPath(p RelPath, columns, padding int) PathLayout {
	full := PathLayout{Dir: p.Dir + "/", Base: p.Base}
	if columns == Unbounded {
		return full
	}
	maxLength := columns - padding

	if runewidth.StringWidth(p.Dir+"/"+p.Base) <= maxLength {
		return full
	}

	baseLen := runewidth.StringWidth(p.Base)
	switch {
	case baseLen+4 < maxLength:
		dirLen := maxLength - 4 - baseLen
		return PathLayout{Dir: Ellipsis + tailCells(p.Dir, dirLen) + "/", Base: p.Base}
	case baseLen+4 == maxLength:
		return PathLayout{Dir: Ellipsis + "/", Base: p.Base}
	default:
		return PathLayout{Base: Ellipsis + tailCells(p.Base, maxLength-4)}
	}
}

// tailCells returns the longest suffix of s that fits in n cells.
func tailCells(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	width := 0
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if width+w > n {
			break
		}
		width += w
		i--
	}
	return string(runes[i:])
}

// Path renders testPath relative to baseDir, truncated for columns-padding.
func (s *Styles) Path(baseDir, testPath string, columns, padding int) string {
	l := LayoutPath(RelativePath(baseDir, testPath), columns, padding)
	if l.Dir == "" {
		return s.Bold.Render(l.Base)
	}
	return s.Dim.Render(l.Dir) + s.Bold.Render(l.Base)
}

// FullPath renders testPath without any width limit.
func (s *Styles) FullPath(baseDir, testPath string) string {
	return s.Path(baseDir, testPath, Unbounded, 0)
}
