package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hitwire/internal/rules"
)

// LoadMode controls how errors are handled during rule loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the rules loaded from a directory. Each YAML file
// maps entity types to their interactions documents; the reserved
// top-level key "monotonic" carries the retirement companion config.
type LoadResult struct {
	Rules     []rules.Rule
	Monotonic rules.MonotonicConfig
	FileCount int
	TypeCount int
}

// LoadError is an error that occurred while loading rule files.
type LoadError struct {
	Code    string
	Path    string
	Message string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRules loads every rule file under dir. In fail-fast mode the first
// error stops the walk; in collect-all mode every file is checked and
// all errors come back together.
func LoadRules(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rules directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing rules directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindRuleFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no rule files found in %s", dir)}}
	}

	result := &LoadResult{FileCount: len(files)}
	var errs []error

	for _, path := range files {
		fileErrs := loadRuleFile(path, result)
		errs = append(errs, fileErrs...)
		if len(errs) > 0 && mode == LoadModeFailFast {
			return result, errs
		}
	}

	if result.TypeCount == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no interaction documents found in rule files"})
	}
	return result, errs
}

// loadRuleFile decodes one YAML rule file into the accumulating result.
func loadRuleFile(path string, result *LoadResult) []error {
	data, err := os.ReadFile(path)
	if err != nil {
		return []error{&LoadError{Code: ErrCodeNotFound, Path: path, Message: err.Error()}}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []error{&LoadError{Code: ErrCodeBadYAML, Path: path, Message: err.Error()}}
	}

	var errs []error

	// Deterministic order so repeated loads report and register rules
	// identically.
	types := make([]string, 0, len(doc))
	for name := range doc {
		types = append(types, name)
	}
	sort.Strings(types)

	for _, name := range types {
		if name == "monotonic" {
			body, ok := doc[name].(map[string]any)
			if !ok {
				errs = append(errs, &LoadError{Code: ErrCodeBadRule, Path: path, Message: "monotonic section must be a mapping"})
				continue
			}
			cfg, err := rules.ParseMonotonicConfig(body)
			if err != nil {
				errs = append(errs, &LoadError{Code: ErrCodeBadRule, Path: path, Message: err.Error()})
				continue
			}
			if result.Monotonic == nil {
				result.Monotonic = cfg
			} else {
				for k, v := range cfg {
					result.Monotonic[k] = v
				}
			}
			continue
		}

		body, ok := doc[name].(map[string]any)
		if !ok {
			errs = append(errs, &LoadError{Code: ErrCodeBadRule, Path: path, Message: fmt.Sprintf("%s: interactions document must be a mapping, got %T", name, doc[name])})
			continue
		}

		if err := rules.ValidateStrict(body); err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadSchema, Path: path, Message: fmt.Sprintf("%s: %v", name, err)})
			continue
		}

		parsed, err := rules.ParseInteractions(name, body)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadRule, Path: path, Message: fmt.Sprintf("%s: %v", name, err)})
			continue
		}
		result.Rules = append(result.Rules, parsed...)
		result.TypeCount++
	}
	return errs
}

// FindRuleFiles walks the directory and returns all YAML file paths in
// lexical order.
func FindRuleFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}
