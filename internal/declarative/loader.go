package declarative

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"colident/internal/catalog"
)

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// LoadFile reads every table document in a YAML file and validates them.
// A file may hold several documents separated by "---".
func LoadFile(path string) ([]*TableDoc, error) {
	return LoadFileWithOptions(path, LoadOptions{})
}

// LoadFileWithOptions is LoadFile with caller-provided loading options.
func LoadFileWithOptions(path string, opts LoadOptions) ([]*TableDoc, error) {
	docs, err := loadYAMLFile(path, opts)
	if err != nil {
		return nil, err
	}
	if err := joinErrors(Validate(docs)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

// LoadDirectory reads all .yaml and .yml files in dir, in name order.
// Subdirectories are not walked.
func LoadDirectory(dir string) ([]*TableDoc, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("config directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("config directory: %s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var docs []*TableDoc
	for _, name := range names {
		loaded, err := loadYAMLFile(filepath.Join(dir, name), LoadOptions{})
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	if err := joinErrors(Validate(docs)); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return docs, nil
}

func loadYAMLFile(path string, opts LoadOptions) ([]*TableDoc, error) {
	data, err := os.ReadFile(path) //nolint:gosec // intentional: reading user-specified config files
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(!opts.AllowUnknownFields)

	var docs []*TableDoc
	for {
		var doc TableDoc
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := validateDocument(path, doc.APIVersion, doc.Kind, KindNameTable); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: no documents", path)
	}
	return docs, nil
}

// validateDocument checks the apiVersion and kind fields.
func validateDocument(path string, apiVersion, kind, expectedKind string) error {
	if apiVersion != SupportedAPIVersion {
		return fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, apiVersion, SupportedAPIVersion)
	}
	if kind != expectedKind {
		return fmt.Errorf("%s: unexpected kind %q (expected %q)", path, kind, expectedKind)
	}
	return nil
}

// TableDef converts the document into a catalog create request.
func (d *TableDoc) TableDef() catalog.TableDef {
	def := catalog.TableDef{
		DB:               d.Metadata.Database,
		Name:             d.Metadata.Name,
		MaterializedView: d.Spec.MaterializedView,
		PartitionBy:      append([]string(nil), d.Spec.PartitionBy...),
	}
	for _, c := range d.Spec.Columns {
		def.Columns = append(def.Columns, catalog.ColumnDef{Name: c.Name, Type: c.Type})
	}
	if dist := d.Spec.DistributedBy; dist != nil {
		def.DistributedBy = append([]string(nil), dist.Columns...)
		def.Buckets = dist.Buckets
	}
	return def
}
