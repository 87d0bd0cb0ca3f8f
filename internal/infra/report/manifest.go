// internal/infra/report/manifest.go
package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	manifestMDName  = "resumen_archivos_generados.md"
	manifestCSVName = "resumen_archivos_generados.csv"
)

type artifact struct {
	RelPath string
	Size    int64
}

// listArtifacts walks the reports tree and returns every regular file except
// the manifest files themselves, ordered by path.
func (w *Writer) listArtifacts() ([]artifact, error) {
	var out []artifact
	err := filepath.WalkDir(w.params.ReportsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == manifestMDName || name == manifestCSVName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.params.ReportsDir, path)
		if err != nil {
			return err
		}
		out = append(out, artifact{RelPath: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk reports tree: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// writeManifest emits the generated-files listing. It runs last so a present
// manifest means the run completed.
func (w *Writer) writeManifest(in *Input) error {
	artifacts, err := w.listArtifacts()
	if err != nil {
		return err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# Archivos generados\n\n")
	fmt.Fprintf(&md, "Ejecución `%s` del %s\n\n", in.RunID, in.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&md, "| Archivo | Tamaño (bytes) |\n|---|---|\n")

	rows := [][]string{{"ARCHIVO", "TAMANO_BYTES"}}
	for _, a := range artifacts {
		fmt.Fprintf(&md, "| %s | %d |\n", a.RelPath, a.Size)
		rows = append(rows, []string{a.RelPath, fmt.Sprintf("%d", a.Size)})
	}
	fmt.Fprintf(&md, "\nTotal: %d archivos\n", len(artifacts))

	mdPath := filepath.Join(w.params.ReportsDir, manifestMDName)
	if err := os.WriteFile(mdPath, []byte(md.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	return writeCSVFile(filepath.Join(w.params.ReportsDir, manifestCSVName), rows)
}
