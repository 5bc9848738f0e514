package modelmanager

import (
	"log/slog"

	"github.com/concerto-project/concerto-go/cerror"
	"github.com/concerto-project/concerto-go/ctoparser"
	"github.com/concerto-project/concerto-go/metamodel"
	"github.com/concerto-project/concerto-go/modelfile"
)

func (m *ModelManager) parserOrDefault() Parser {
	if m.parser != nil {
		return m.parser
	}

	return ctoparser.Parser{}
}

// AddModelText parses text with the configured [Parser] and adds the
// resulting model. text must describe exactly one namespace.
func (m *ModelManager) AddModelText(name string, text []byte, opts AddOptions) error {
	ast, err := m.parserOrDefault().Parse(name, text)
	if err != nil {
		return err
	}

	if len(ast.Models) != 1 {
		return cerror.New(cerror.ErrIllegalModel, "expected exactly one namespace in %q, got %d", name, len(ast.Models))
	}

	mf, err := modelfile.New(ast.Models[0])
	if err != nil {
		return err
	}

	mf.Source = string(text)

	return m.installOne(mf, opts)
}

// AddModel installs a [modelfile.ModelFile] already built from a parsed
// AST. Rejects a duplicate namespace.
func (m *ModelManager) AddModel(model *metamodel.Model, opts AddOptions) error {
	mf, err := modelfile.New(model)
	if err != nil {
		return err
	}

	return m.installOne(mf, opts)
}

func (m *ModelManager) installOne(mf *modelfile.ModelFile, opts AddOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mf.Namespace == metamodel.RootNamespace {
		return cerror.New(cerror.ErrIllegalModel, "namespace %q is reserved", metamodel.RootNamespace)
	}

	if _, exists := m.files[mf.Namespace]; exists {
		return cerror.New(cerror.ErrIllegalModel, "namespace %q is already loaded", mf.Namespace)
	}

	working := cloneFiles(m.files)
	working[mf.Namespace] = mf

	if !opts.SkipValidation {
		if err := validateFiles(working, []*modelfile.ModelFile{mf}, m.logOrDefault()); err != nil {
			return err
		}
	}

	m.files = working

	return nil
}

// AddAllModels installs a batch of models atomically: either every model
// is installed and the whole resulting graph validates, or none are
// installed and the registry is left exactly as it was (spec testable
// property 7). Validation is deferred until every file in the batch is
// present, so files may reference each other regardless of order.
func (m *ModelManager) AddAllModels(models []*metamodel.Model, opts AddOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := cloneFiles(m.files)

	var fresh []*modelfile.ModelFile

	for _, model := range models {
		if model.Namespace == metamodel.RootNamespace {
			return cerror.New(cerror.ErrIllegalModel, "namespace %q is reserved", metamodel.RootNamespace)
		}

		if _, exists := working[model.Namespace]; exists {
			return cerror.New(cerror.ErrIllegalModel, "namespace %q is already loaded", model.Namespace)
		}

		mf, err := modelfile.New(model)
		if err != nil {
			return err
		}

		working[mf.Namespace] = mf
		fresh = append(fresh, mf)
	}

	if !opts.SkipValidation {
		if err := validateFiles(working, fresh, m.logOrDefault()); err != nil {
			return err
		}
	}

	m.files = working

	return nil
}

// Update replaces an existing namespace's model file wholesale. It fails
// with [cerror.ErrTypeNotFound] if namespace is not already loaded.
func (m *ModelManager) Update(model *metamodel.Model) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[model.Namespace]; !exists {
		return cerror.New(cerror.ErrTypeNotFound, "namespace %q is not loaded", model.Namespace)
	}

	mf, err := modelfile.New(model)
	if err != nil {
		return err
	}

	working := cloneFiles(m.files)
	working[mf.Namespace] = mf

	if err := validateFiles(working, []*modelfile.ModelFile{mf}, m.logOrDefault()); err != nil {
		return err
	}

	m.files = working

	return nil
}

func (m *ModelManager) logOrDefault() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}

	return slog.Default()
}
