package costumeclean

import (
	"io/fs"
	"path/filepath"
)

// FindFiles walks the source directory tree once and returns every regular
// file whose basename matches at least one of the glob patterns. A file
// matching several patterns appears exactly once. The result is materialized
// (re-iterable) and follows the lexical walk order, so repeated runs on an
// unchanged tree produce the same sequence.
//
// Pattern validity and source readability are the caller's concern
// (Config.Validate); malformed patterns simply never match here.
func FindFiles(source string, patterns []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		for _, pattern := range patterns {
			ok, err := filepath.Match(pattern, name)
			if err != nil {
				return err
			}
			if ok {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
